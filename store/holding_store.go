package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradesim/errs"
	"tradesim/models"
)

// HoldingStore reads and mutates portfolio rows.
type HoldingStore struct {
	db *gorm.DB
}

func NewHoldingStore(db *gorm.DB) *HoldingStore {
	return &HoldingStore{db: db}
}

// Active returns the user's holdings with a non-zero share count. Zero-share
// rows stay in the table but never show up here.
func (s *HoldingStore) Active(ctx context.Context, userID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND shares > 0", userID).
		Order("symbol").
		Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holdings: %w", err)
	}
	return holdings, nil
}

func (s *HoldingStore) Get(ctx context.Context, userID uint, symbol string) (*models.Holding, error) {
	var holding models.Holding
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &holding, nil
}

// Add upserts shares owned of a symbol: a first purchase inserts the row,
// repeat purchases increment the existing one via the (user_id, symbol)
// conflict target.
func (s *HoldingStore) Add(ctx context.Context, userID uint, symbol string, shares int64) error {
	holding := models.Holding{UserID: userID, Symbol: symbol, Shares: shares}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "symbol"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"shares": gorm.Expr("shares + ?", shares)}),
	}).Create(&holding).Error
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return nil
}

// Remove decrements shares owned, failing with errs.ErrInsufficientShares
// when the position is missing or too small. The guard rides in the WHERE
// clause, so a concurrent sell cannot push the count below zero.
func (s *HoldingStore) Remove(ctx context.Context, userID uint, symbol string, shares int64) error {
	res := s.db.WithContext(ctx).Model(&models.Holding{}).
		Where("user_id = ? AND symbol = ? AND shares >= ?", userID, symbol, shares).
		Update("shares", gorm.Expr("shares - ?", shares))
	if res.Error != nil {
		return fmt.Errorf("failed to update holding: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrInsufficientShares
	}
	return nil
}
