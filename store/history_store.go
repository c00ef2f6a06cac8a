package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tradesim/models"
)

// HistoryStore appends to and reads the transaction ledger. There is no
// update or delete path on purpose.
type HistoryStore struct {
	db *gorm.DB
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Append(ctx context.Context, tx *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

func (s *HistoryStore) ForUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var entries []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return entries, nil
}

// NetFlow sums the signed totals of every ledger entry for the user. It is a
// derived cash-flow figure, not a balance.
func (s *HistoryStore) NetFlow(ctx context.Context, userID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Select("SUM(total)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum history: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
