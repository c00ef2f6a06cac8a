package quote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradesim/errs"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fakeAlphaVantage(t *testing.T, prices map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("apikey"))

		switch r.URL.Query().Get("function") {
		case "GLOBAL_QUOTE":
			symbol := r.URL.Query().Get("symbol")
			price, ok := prices[symbol]
			if !ok {
				// Unknown symbols come back as an empty quote object.
				fmt.Fprint(w, `{"Global Quote": {}}`)
				return
			}
			fmt.Fprintf(w, `{"Global Quote": {"01. symbol": %q, "05. price": %q}}`, symbol, price)
		case "SYMBOL_SEARCH":
			keywords := r.URL.Query().Get("keywords")
			fmt.Fprintf(w, `{"bestMatches": [{"1. symbol": %q, "2. name": "%s Incorporated"}]}`, keywords, keywords)
		default:
			t.Errorf("unexpected function %q", r.URL.Query().Get("function"))
		}
	}))
}

func TestClientLookup(t *testing.T) {
	srv := fakeAlphaVantage(t, map[string]string{"AAPL": "150.2500"})
	defer srv.Close()

	c := NewClient("test-key", nil, testLogger())
	c.baseURL = srv.URL

	q, err := c.Lookup(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "AAPL Incorporated", q.Name)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("150.25")))
}

func TestClientLookupUnknownSymbol(t *testing.T) {
	srv := fakeAlphaVantage(t, nil)
	defer srv.Close()

	c := NewClient("test-key", nil, testLogger())
	c.baseURL = srv.URL

	_, err := c.Lookup(context.Background(), "NOPE")
	assert.ErrorIs(t, err, errs.ErrUnknownSymbol)
}

func TestClientLookupEmptySymbol(t *testing.T) {
	c := NewClient("test-key", nil, testLogger())

	_, err := c.Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, errs.ErrUnknownSymbol)
}

func TestClientLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("test-key", nil, testLogger())
	c.baseURL = srv.URL

	_, err := c.Lookup(context.Background(), "AAPL")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrUnknownSymbol)
}
