package trader

import (
	"context"

	"paper-trading-bot-go/internal/config"
	"paper-trading-bot-go/internal/feed"
	"paper-trading-bot-go/internal/models"
	"paper-trading-bot-go/internal/portfolio"

	"go.uber.org/zap"
)

// StrategyContext provides the strategy with access to the core components.
type StrategyContext struct {
	Logger    *zap.Logger
	Cfg       *config.Config
	Portfolio *portfolio.Service
	Prices    feed.PriceFeed
	Sentiment feed.SentimentFeed
}

// Strategy defines the interface for a trading strategy.
type Strategy interface {
	// Name returns the unique name of the strategy.
	Name() string

	// Initialize gives the strategy a chance to perform setup tasks.
	Initialize(sc StrategyContext) error

	// Scout is the main logic of the strategy, called periodically by the
	// engine. It submits trades through the portfolio service and reports
	// what it did; individual trade failures go into the report instead of
	// aborting the run.
	Scout(ctx context.Context, sc StrategyContext) (*ExecutionReport, error)
}

// ExecutionReport summarizes one strategy run.
type ExecutionReport struct {
	TradesExecuted   int            `json:"trades_executed"`
	Trades           []models.Trade `json:"trades"`
	TotalCapitalUsed float64        `json:"total_capital_used"`
	Errors           []string       `json:"errors"`
}
