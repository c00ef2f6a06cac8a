package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Username  string          `gorm:"uniqueIndex;not null" json:"username"`
	Hash      string          `gorm:"not null" json:"-"`
	Cash      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cash"`
	CreatedAt time.Time       `json:"created_at"`
}
