package feed

import (
	"context"
	"fmt"
	"strconv"

	"paper-trading-bot-go/internal/config"

	"go.uber.org/zap"
)

// PriceClient is a client for the external market data feed.
// It implements the PriceFeed interface.
type PriceClient struct {
	restClient
}

// ensure PriceClient implements the interface
var _ PriceFeed = (*PriceClient)(nil)

// NewPriceClient creates a new market data feed client.
func NewPriceClient(cfg *config.Feeds, logger *zap.Logger) *PriceClient {
	return &PriceClient{
		restClient: newRestClient(cfg.PriceURL, cfg.RateLimit, cfg.RateLimitBurst, logger),
	}
}

// tickerResponse represents the response for a single ticker quote.
type tickerResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// CurrentPrice fetches the latest quote for a symbol.
func (c *PriceClient) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetResult(&tickerResponse{})

	resp, err := c.doRequest(ctx, "GET", "/price", req)
	if err != nil {
		return 0, fmt.Errorf("failed to get price for %s: %w", symbol, err)
	}

	result := resp.Result().(*tickerResponse)
	if result.Price <= 0 {
		return 0, fmt.Errorf("feed returned non-positive price %f for %s", result.Price, symbol)
	}
	return result.Price, nil
}

// Candles fetches the daily OHLCV series for the trailing number of days.
func (c *PriceClient) Candles(ctx context.Context, symbol string, days int) ([]Candle, error) {
	var candles []Candle

	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetQueryParam("days", strconv.Itoa(days)).
		SetResult(&candles)

	resp, err := c.doRequest(ctx, "GET", "/candles", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get candles for %s: %w", symbol, err)
	}

	result := resp.Result().(*[]Candle)
	return *result, nil
}
