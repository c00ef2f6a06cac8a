package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tradesim/database"
	"tradesim/errs"
	"tradesim/models"
)

// UserStore reads and mutates user rows. All cash mutations are guarded
// updates: the balance check and the write happen in one statement, so
// concurrent requests cannot drive cash negative.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user. Duplicate usernames surface as errs.ErrDuplicate
// straight from the unique constraint; there is no existence pre-check to
// race against.
func (s *UserStore) Create(ctx context.Context, username, hash string, cash decimal.Decimal) (*models.User, error) {
	user := models.User{
		Username: username,
		Hash:     hash,
		Cash:     cash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, errs.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DebitCash subtracts amount from the user's cash, failing with
// errs.ErrInsufficientFunds when the balance does not cover it.
func (s *UserStore) DebitCash(ctx context.Context, id uint, amount decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND cash >= ?", id, amount).
		Update("cash", gorm.Expr("cash - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to debit cash: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrInsufficientFunds
	}
	return nil
}

// CreditCash adds amount to the user's cash.
func (s *UserStore) CreditCash(ctx context.Context, id uint, amount decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("cash", gorm.Expr("cash + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to credit cash: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
