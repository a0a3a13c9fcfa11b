package feed

import (
	"context"
	"time"
)

// PriceFeed supplies market prices for the simulator. Implementations may
// fail or return stale data; callers decide how to react.
type PriceFeed interface {
	// CurrentPrice returns the latest quote for a symbol.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	// Candles returns the daily OHLCV series for the trailing number of days.
	Candles(ctx context.Context, symbol string, days int) ([]Candle, error)
}

// SentimentFeed supplies a sentiment reading per symbol.
type SentimentFeed interface {
	Score(ctx context.Context, symbol string) (Sentiment, error)
}

// Candle is a single OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Sentiment is one reading from the sentiment feed. Score is in [-1, 1],
// Confidence in [0, 1].
type Sentiment struct {
	Symbol     string  `json:"symbol"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}
