package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tradesim/errs"
	"tradesim/models"
	"tradesim/quote"
	"tradesim/store"
)

// TradingService implements every cash- or share-affecting operation. Each
// multi-step mutation runs in one database transaction: the balance change,
// the holding change and the ledger append land together or not at all.
type TradingService struct {
	db     *gorm.DB
	quotes quote.Service
}

func NewTradingService(db *gorm.DB, quotes quote.Service) *TradingService {
	return &TradingService{db: db, quotes: quotes}
}

// Account returns the user record backing the session.
func (s *TradingService) Account(ctx context.Context, userID uint) (*models.User, error) {
	return store.NewUserStore(s.db).ByID(ctx, userID)
}

// Holdings returns the user's non-empty positions.
func (s *TradingService) Holdings(ctx context.Context, userID uint) ([]models.Holding, error) {
	return store.NewHoldingStore(s.db).Active(ctx, userID)
}

// QuoteError reports a failed price lookup for a specific held symbol.
type QuoteError struct {
	Symbol string
	Err    error
}

func (e *QuoteError) Error() string { return fmt.Sprintf("price for symbol %s not found", e.Symbol) }
func (e *QuoteError) Unwrap() error { return e.Err }

// PortfolioRow is one held symbol priced at the live quote.
type PortfolioRow struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

// PortfolioView is the index page payload: cash, priced holdings and the
// grand total of cash plus market values.
type PortfolioView struct {
	Username   string          `json:"username"`
	Cash       decimal.Decimal `json:"cash"`
	Rows       []PortfolioRow  `json:"holdings"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Portfolio prices every active holding with a live lookup. One failed
// lookup fails the whole view; there is no partial render.
func (s *TradingService) Portfolio(ctx context.Context, userID uint) (*PortfolioView, error) {
	user, err := store.NewUserStore(s.db).ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := store.NewHoldingStore(s.db).Active(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &PortfolioView{
		Username:   user.Username,
		Cash:       user.Cash,
		Rows:       make([]PortfolioRow, 0, len(holdings)),
		GrandTotal: user.Cash,
	}
	for _, h := range holdings {
		q, err := s.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			return nil, &QuoteError{Symbol: h.Symbol, Err: err}
		}
		value := q.Price.Mul(decimal.NewFromInt(h.Shares))
		view.Rows = append(view.Rows, PortfolioRow{
			Symbol: h.Symbol,
			Name:   q.Name,
			Shares: h.Shares,
			Price:  q.Price,
			Value:  value,
		})
		view.GrandTotal = view.GrandTotal.Add(value)
	}
	return view, nil
}

// Buy purchases shares at the live price. Fails with errs.ErrUnknownSymbol
// or errs.ErrInsufficientFunds, leaving no state behind on either.
func (s *TradingService) Buy(ctx context.Context, userID uint, symbol string, shares int64) (*models.Transaction, error) {
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	total := q.Price.Mul(decimal.NewFromInt(shares))

	entry := &models.Transaction{
		UserID: userID,
		Type:   models.TypeBuy,
		Symbol: q.Symbol,
		Shares: shares,
		Price:  q.Price,
		Total:  total,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.NewUserStore(tx).DebitCash(ctx, userID, total); err != nil {
			return err
		}
		if err := store.NewHoldingStore(tx).Add(ctx, userID, q.Symbol, shares); err != nil {
			return err
		}
		return store.NewHistoryStore(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Sell disposes of shares at the live price. The position check runs again
// as a guard inside the transaction, so a concurrent sell of the same
// holding cannot overdraw it.
func (s *TradingService) Sell(ctx context.Context, userID uint, symbol string, shares int64) (*models.Transaction, error) {
	// Holdings are keyed by the quote service's normalized symbol.
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	holding, err := store.NewHoldingStore(s.db).Get(ctx, userID, symbol)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrInsufficientShares
		}
		return nil, err
	}
	if holding.Shares < shares {
		return nil, errs.ErrInsufficientShares
	}

	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	total := q.Price.Mul(decimal.NewFromInt(shares))

	entry := &models.Transaction{
		UserID: userID,
		Type:   models.TypeSell,
		Symbol: q.Symbol,
		Shares: shares,
		Price:  q.Price,
		Total:  total.Neg(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.NewHoldingStore(tx).Remove(ctx, userID, q.Symbol, shares); err != nil {
			return err
		}
		if err := store.NewUserStore(tx).CreditCash(ctx, userID, total); err != nil {
			return err
		}
		return store.NewHistoryStore(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Deposit credits cash and records a CASH ledger entry with the positive
// amount.
func (s *TradingService) Deposit(ctx context.Context, userID uint, amount int64) (*models.Transaction, error) {
	total := decimal.NewFromInt(amount)
	entry := &models.Transaction{
		UserID: userID,
		Type:   models.TypeDeposit,
		Symbol: models.CashSymbol,
		Total:  total,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.NewUserStore(tx).CreditCash(ctx, userID, total); err != nil {
			return err
		}
		return store.NewHistoryStore(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Withdraw debits cash, failing with errs.ErrInsufficientFunds when the
// balance does not cover the amount, and records the negative total.
func (s *TradingService) Withdraw(ctx context.Context, userID uint, amount int64) (*models.Transaction, error) {
	total := decimal.NewFromInt(amount)
	entry := &models.Transaction{
		UserID: userID,
		Type:   models.TypeWithdraw,
		Symbol: models.CashSymbol,
		Total:  total.Neg(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.NewUserStore(tx).DebitCash(ctx, userID, total); err != nil {
			return err
		}
		return store.NewHistoryStore(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// History returns the user's full ledger and the running sum of its totals.
func (s *TradingService) History(ctx context.Context, userID uint) ([]models.Transaction, decimal.Decimal, error) {
	history := store.NewHistoryStore(s.db)
	entries, err := history.ForUser(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	netFlow, err := history.NetFlow(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return entries, netFlow, nil
}
