package trader

import (
	"context"
	"errors"
	"time"

	"paper-trading-bot-go/internal/portfolio"

	"go.uber.org/zap"
)

// Engine drives a strategy on a fixed interval and cross-checks the balance
// after every run.
type Engine struct {
	logger   *zap.Logger
	strategy Strategy
	sc       StrategyContext
}

// NewEngine creates a new trading engine.
func NewEngine(sc StrategyContext, strategy Strategy) *Engine {
	return &Engine{
		logger:   sc.Logger,
		strategy: strategy,
		sc:       sc,
	}
}

// Run starts the engine's main loop. It returns when ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Initializing trading engine...")
	if err := e.strategy.Initialize(e.sc); err != nil {
		e.logger.Fatal("Failed to initialize strategy", zap.Error(err))
	}
	e.logger.Info("Engine initialized successfully.")

	interval := time.Duration(e.sc.Cfg.Strategy.TickInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Starting strategy loop", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping trading engine...")
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick performs one strategy run followed by a balance reconciliation.
func (e *Engine) tick(ctx context.Context) {
	report, err := e.strategy.Scout(ctx, e.sc)
	if err != nil {
		e.logger.Error("Strategy run failed", zap.Error(err))
	}
	if report != nil {
		e.logger.Info("Strategy run complete",
			zap.Int("trades_executed", report.TradesExecuted),
			zap.Float64("total_capital_used", report.TotalCapitalUsed),
			zap.Int("errors", len(report.Errors)),
		)
		for _, msg := range report.Errors {
			e.logger.Warn("Strategy candidate failed", zap.String("error", msg))
		}
	}

	// A reconciliation mismatch means the balance invariant is already
	// broken; that is fatal, not recoverable.
	if err := e.sc.Portfolio.Reconcile(ctx); err != nil {
		var mismatch *portfolio.ReconciliationError
		if errors.As(err, &mismatch) {
			e.logger.Fatal("Balance reconciliation failed", zap.Error(err))
		}
		e.logger.Error("Could not reconcile balance", zap.Error(err))
	}
}
