package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tradesim/errs"
	"tradesim/models"
	"tradesim/store"
)

// AuthService registers accounts and verifies credentials.
type AuthService struct {
	db           *gorm.DB
	startingCash decimal.Decimal
}

func NewAuthService(db *gorm.DB, startingCash decimal.Decimal) *AuthService {
	return &AuthService{db: db, startingCash: startingCash}
}

// Register creates an account seeded with the starting cash balance. A taken
// username comes back as errs.ErrDuplicate from the unique constraint on the
// insert itself, so two concurrent registrations cannot both slip through.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := store.NewUserStore(s.db).Create(ctx, username, string(hash), s.startingCash)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials. A missing user and a wrong password both
// map to errs.ErrInvalidCredentials; callers must not reveal which.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := store.NewUserStore(s.db).ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return nil, errs.ErrInvalidCredentials
	}
	return user, nil
}
