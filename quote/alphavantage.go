package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tradesim/errs"
)

const (
	defaultBaseURL  = "https://www.alphavantage.co"
	cacheExpiration = 5 * time.Minute
	lookupTimeout   = 5 * time.Second
)

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
}

type symbolSearchResponse struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
	} `json:"bestMatches"`
}

// Client looks up quotes from the Alpha Vantage API. Successful lookups are
// cached in Redis for a few minutes; cache errors are logged and ignored so
// a Redis hiccup never fails a request that the API could serve.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	rdb     *redis.Client
	log     *logrus.Logger
}

// NewClient builds a quote client. rdb may be nil to disable caching.
func NewClient(apiKey string, rdb *redis.Client, log *logrus.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: lookupTimeout},
		rdb:     rdb,
		log:     log,
	}
}

func (c *Client) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errs.ErrUnknownSymbol
	}

	if cached := c.fromCache(ctx, symbol); cached != nil {
		return cached, nil
	}

	var priceResp globalQuoteResponse
	if err := c.get(ctx, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	}, &priceResp); err != nil {
		return nil, err
	}
	if priceResp.GlobalQuote.Price == "" {
		return nil, errs.ErrUnknownSymbol
	}

	price, err := decimal.NewFromString(priceResp.GlobalQuote.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q: %w", priceResp.GlobalQuote.Price, err)
	}

	q := &Quote{Symbol: symbol, Name: c.lookupName(ctx, symbol), Price: price}
	c.toCache(ctx, q)
	return q, nil
}

// lookupName resolves the company name for display. A failed search is not a
// failed quote; the symbol itself stands in.
func (c *Client) lookupName(ctx context.Context, symbol string) string {
	var searchResp symbolSearchResponse
	err := c.get(ctx, url.Values{
		"function": {"SYMBOL_SEARCH"},
		"keywords": {symbol},
	}, &searchResp)
	if err != nil || len(searchResp.BestMatches) == 0 {
		if err != nil {
			c.log.WithError(err).WithField("symbol", symbol).Warn("symbol search failed")
		}
		return symbol
	}
	return searchResp.BestMatches[0].Name
}

func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("apikey", c.apiKey)
	addr := c.baseURL + "/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch quote data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote service returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse quote data: %w", err)
	}
	return nil
}

func (c *Client) fromCache(ctx context.Context, symbol string) *Quote {
	if c.rdb == nil {
		return nil
	}
	raw, err := c.rdb.Get(ctx, cacheKey(symbol)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Warn("quote cache read failed")
		}
		return nil
	}
	var q Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil
	}
	return &q
}

func (c *Client) toCache(ctx context.Context, q *Quote) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(q.Symbol), raw, cacheExpiration).Err(); err != nil {
		c.log.WithError(err).Warn("quote cache write failed")
	}
}

func cacheKey(symbol string) string {
	return "quote:" + symbol
}
