package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradesim/database"
	"tradesim/errs"
	"tradesim/models"
	"tradesim/quote"
	"tradesim/service"
	"tradesim/store"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// stubQuotes serves fixed prices so trades are deterministic.
type stubQuotes struct {
	prices map[string]decimal.Decimal
}

func (s *stubQuotes) Lookup(_ context.Context, symbol string) (*quote.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	price, ok := s.prices[symbol]
	if !ok {
		return nil, errs.ErrUnknownSymbol
	}
	return &quote.Quote{Symbol: symbol, Name: symbol + " Inc.", Price: price}, nil
}

func newTrader(t *testing.T, prices map[string]decimal.Decimal) (*service.TradingService, *gorm.DB, *models.User) {
	t.Helper()
	db := newTestDB(t)
	user, err := store.NewUserStore(db).Create(context.Background(), "trader", "hash", decimal.NewFromInt(10000))
	require.NoError(t, err)
	return service.NewTradingService(db, &stubQuotes{prices: prices}), db, user
}

func cashOf(t *testing.T, db *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()
	user, err := store.NewUserStore(db).ByID(context.Background(), userID)
	require.NoError(t, err)
	return user.Cash
}

func TestTradingService_BuyThenSell(t *testing.T) {
	ctx := context.Background()
	prices := map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(50)}
	trading, db, user := newTrader(t, prices)

	entry, err := trading.Buy(ctx, user.ID, "AAPL", 10)
	require.NoError(t, err)
	assert.Equal(t, models.TypeBuy, entry.Type)
	assert.True(t, entry.Total.Equal(decimal.NewFromInt(500)))

	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(9500)))
	holding, err := store.NewHoldingStore(db).Get(ctx, user.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(10), holding.Shares)

	// Price moves before the sale.
	prices["AAPL"] = decimal.NewFromInt(60)

	entry, err = trading.Sell(ctx, user.ID, "AAPL", 4)
	require.NoError(t, err)
	assert.Equal(t, models.TypeSell, entry.Type)
	assert.True(t, entry.Total.Equal(decimal.NewFromInt(-240)), "sell total is %s", entry.Total)

	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(9740)))
	holding, err = store.NewHoldingStore(db).Get(ctx, user.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(6), holding.Shares)

	entries, netFlow, err := trading.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.TypeBuy, entries[0].Type)
	assert.Equal(t, models.TypeSell, entries[1].Type)
	assert.True(t, netFlow.Equal(decimal.NewFromInt(260)))
}

func TestTradingService_BuyAccumulatesHolding(t *testing.T) {
	ctx := context.Background()
	trading, db, user := newTrader(t, map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(10)})

	_, err := trading.Buy(ctx, user.ID, "AAPL", 3)
	require.NoError(t, err)
	_, err = trading.Buy(ctx, user.ID, "aapl", 2)
	require.NoError(t, err)

	holding, err := store.NewHoldingStore(db).Get(ctx, user.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(5), holding.Shares)
}

func TestTradingService_BuyInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	trading, db, user := newTrader(t, map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(5000)})

	_, err := trading.Buy(ctx, user.ID, "AAPL", 3)
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)

	// Nothing changed: cash, holdings and the ledger are untouched.
	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(10000)))
	_, err = store.NewHoldingStore(db).Get(ctx, user.ID, "AAPL")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	entries, _, err := trading.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTradingService_BuyUnknownSymbol(t *testing.T) {
	ctx := context.Background()
	trading, db, user := newTrader(t, map[string]decimal.Decimal{})

	_, err := trading.Buy(ctx, user.ID, "NOPE", 1)
	assert.ErrorIs(t, err, errs.ErrUnknownSymbol)
	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(10000)))
}

func TestTradingService_SellMoreThanHeld(t *testing.T) {
	ctx := context.Background()
	trading, db, user := newTrader(t, map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(50)})

	_, err := trading.Buy(ctx, user.ID, "AAPL", 5)
	require.NoError(t, err)

	_, err = trading.Sell(ctx, user.ID, "AAPL", 6)
	assert.ErrorIs(t, err, errs.ErrInsufficientShares)

	// Failed sale leaves cash and the holding as they were.
	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(9750)))
	holding, err := store.NewHoldingStore(db).Get(ctx, user.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(5), holding.Shares)
}

func TestTradingService_SellWithoutPosition(t *testing.T) {
	trading, _, user := newTrader(t, map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(50)})

	_, err := trading.Sell(context.Background(), user.ID, "AAPL", 1)
	assert.ErrorIs(t, err, errs.ErrInsufficientShares)
}

func TestTradingService_DepositWithdrawInverse(t *testing.T) {
	ctx := context.Background()
	trading, db, user := newTrader(t, nil)

	entry, err := trading.Deposit(ctx, user.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, models.CashSymbol, entry.Symbol)
	assert.Zero(t, entry.Shares)
	assert.True(t, entry.Total.Equal(decimal.NewFromInt(500)))
	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(10500)))

	entry, err = trading.Withdraw(ctx, user.ID, 500)
	require.NoError(t, err)
	assert.True(t, entry.Total.Equal(decimal.NewFromInt(-500)))
	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(10000)))

	entries, netFlow, err := trading.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.True(t, netFlow.IsZero())
}

func TestTradingService_WithdrawOverBalance(t *testing.T) {
	ctx := context.Background()
	trading, db, user := newTrader(t, nil)

	_, err := trading.Withdraw(ctx, user.ID, 10001)
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)

	assert.True(t, cashOf(t, db, user.ID).Equal(decimal.NewFromInt(10000)))
	entries, _, err := trading.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTradingService_Portfolio(t *testing.T) {
	ctx := context.Background()
	prices := map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(50),
		"NFLX": decimal.NewFromInt(200),
	}
	trading, _, user := newTrader(t, prices)

	_, err := trading.Buy(ctx, user.ID, "AAPL", 10)
	require.NoError(t, err)
	_, err = trading.Buy(ctx, user.ID, "NFLX", 2)
	require.NoError(t, err)

	view, err := trading.Portfolio(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "trader", view.Username)
	assert.True(t, view.Cash.Equal(decimal.NewFromInt(9100)))
	require.Len(t, view.Rows, 2)
	assert.True(t, view.Rows[0].Value.Equal(decimal.NewFromInt(500)))
	assert.True(t, view.Rows[1].Value.Equal(decimal.NewFromInt(400)))
	// cash + market values
	assert.True(t, view.GrandTotal.Equal(decimal.NewFromInt(10000)))
}

func TestTradingService_PortfolioQuoteFailure(t *testing.T) {
	ctx := context.Background()
	prices := map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(50)}
	trading, _, user := newTrader(t, prices)

	_, err := trading.Buy(ctx, user.ID, "AAPL", 1)
	require.NoError(t, err)

	// The symbol disappears from the quote service; the whole view fails.
	delete(prices, "AAPL")

	_, err = trading.Portfolio(ctx, user.ID)
	var qe *service.QuoteError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "AAPL", qe.Symbol)
	assert.ErrorIs(t, err, errs.ErrUnknownSymbol)
}
