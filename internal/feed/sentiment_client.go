package feed

import (
	"context"
	"fmt"

	"paper-trading-bot-go/internal/config"

	"go.uber.org/zap"
)

// SentimentClient is a client for the external sentiment feed.
// It implements the SentimentFeed interface.
type SentimentClient struct {
	restClient
}

var _ SentimentFeed = (*SentimentClient)(nil)

// NewSentimentClient creates a new sentiment feed client.
func NewSentimentClient(cfg *config.Feeds, logger *zap.Logger) *SentimentClient {
	return &SentimentClient{
		restClient: newRestClient(cfg.SentimentURL, cfg.RateLimit, cfg.RateLimitBurst, logger),
	}
}

// Score fetches the sentiment reading for a symbol.
func (c *SentimentClient) Score(ctx context.Context, symbol string) (Sentiment, error) {
	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetResult(&Sentiment{})

	resp, err := c.doRequest(ctx, "GET", "/sentiment", req)
	if err != nil {
		return Sentiment{}, fmt.Errorf("failed to get sentiment for %s: %w", symbol, err)
	}

	result := resp.Result().(*Sentiment)
	if result.Confidence < 0 || result.Confidence > 1 {
		return Sentiment{}, fmt.Errorf("feed returned confidence %f out of range for %s", result.Confidence, symbol)
	}
	return *result, nil
}
