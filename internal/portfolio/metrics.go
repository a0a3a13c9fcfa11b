package portfolio

import (
	"context"

	"paper-trading-bot-go/internal/analytics"
)

// PerformanceMetrics computes the aggregate statistics over the current
// ledger. It reads committed rows without taking the write lock, so it can
// run concurrently with lifecycle operations and observes some consistent
// committed state.
func (s *Service) PerformanceMetrics(ctx context.Context) (analytics.Metrics, error) {
	trades, err := s.Trades(ctx, TradeFilter{})
	if err != nil {
		return analytics.Metrics{}, err
	}
	return analytics.ComputeMetrics(trades, s.initialBalance, s.Balance()), nil
}

// PortfolioHistory returns the equity curve over the trailing number of
// days, recomputed fresh from the ledger on every call.
func (s *Service) PortfolioHistory(ctx context.Context, days int) ([]analytics.HistoryPoint, error) {
	trades, err := s.Trades(ctx, TradeFilter{})
	if err != nil {
		return nil, err
	}
	return analytics.History(trades, s.initialBalance, days), nil
}
