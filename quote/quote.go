package quote

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a live price lookup result for one ticker.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Service resolves a ticker to a quote, or errs.ErrUnknownSymbol when the
// provider does not recognize it.
type Service interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}
