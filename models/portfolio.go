package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one user's share count in one symbol. Rows are kept even when
// the count drops to zero; display queries filter on shares > 0.
type Holding struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_user_symbol" json:"user_id"`
	Symbol string `gorm:"not null;uniqueIndex:idx_user_symbol" json:"symbol"`
	Shares int64  `gorm:"not null;default:0" json:"shares"`
}

func (Holding) TableName() string { return "portfolios" }

const (
	TypeBuy      = "buy"
	TypeSell     = "sell"
	TypeDeposit  = "deposit"
	TypeWithdraw = "withdraw"
)

// CashSymbol marks ledger entries that move cash without touching a holding.
const CashSymbol = "CASH"

// Transaction is one append-only ledger entry. Buys and deposits carry a
// positive total, sells and withdrawals a negative one.
type Transaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"index;not null" json:"user_id"`
	Type      string          `gorm:"not null" json:"type"`
	Symbol    string          `gorm:"not null" json:"symbol"`
	Shares    int64           `gorm:"not null" json:"shares"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Total     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Transaction) TableName() string { return "history" }
