package trader

import (
	"context"
	"fmt"
	"math"

	"paper-trading-bot-go/internal/models"
	"paper-trading-bot-go/internal/portfolio"

	"go.uber.org/zap"
)

const (
	// maxConsecutiveFeedErrors aborts a run early when both feeds keep
	// failing, rather than burning the whole symbol list on a dead feed.
	maxConsecutiveFeedErrors = 3
	// maxSpotDeviation is the stale-quote guard: a spot price this far from
	// the latest daily close is treated as a bad tick and skipped.
	maxSpotDeviation = 0.5
)

// SentimentStrategy sizes BUY orders from sentiment scores. Candidates below
// the score or confidence thresholds are discarded; position size scales
// with confidence under a cash-reserve cap and a per-run trade limit.
type SentimentStrategy struct{}

func (s *SentimentStrategy) Name() string {
	return "Sentiment"
}

func (s *SentimentStrategy) Initialize(sc StrategyContext) error {
	cfg := sc.Cfg.Strategy
	if len(cfg.Symbols) == 0 {
		sc.Logger.Warn("No symbols configured. SentimentStrategy will not be able to trade.")
	}
	if cfg.MaxPositionSize <= 0 || cfg.MaxPositionSize > 1 {
		return fmt.Errorf("max_position_size %f out of range (0, 1]", cfg.MaxPositionSize)
	}
	if cfg.MinCashReserve < 0 || cfg.MinCashReserve >= 1 {
		return fmt.Errorf("min_cash_reserve %f out of range [0, 1)", cfg.MinCashReserve)
	}
	sc.Logger.Info("SentimentStrategy initialized",
		zap.Strings("symbols", cfg.Symbols),
		zap.Float64("sentiment_threshold", cfg.SentimentThreshold),
		zap.Float64("min_confidence", cfg.MinConfidence),
	)
	return nil
}

// Scout evaluates every tracked symbol. Feed lookups run without the
// account lock; only the OpenTrade call takes it, briefly.
func (s *SentimentStrategy) Scout(ctx context.Context, sc StrategyContext) (*ExecutionReport, error) {
	cfg := sc.Cfg.Strategy
	l := sc.Logger.With(zap.String("strategy", s.Name()))
	report := &ExecutionReport{}

	// Both the sizing base and the reserve cap use the balance as of the
	// start of the run; the running committed total enforces the cap.
	balance := sc.Portfolio.Balance()
	spendable := balance * (1 - cfg.MinCashReserve)
	var committed float64
	feedFailures := 0

	for _, symbol := range cfg.Symbols {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		sentiment, err := sc.Sentiment.Score(ctx, symbol)
		if err != nil {
			feedFailures++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: sentiment feed: %v", symbol, err))
			if feedFailures >= maxConsecutiveFeedErrors {
				return report, fmt.Errorf("aborting run after %d consecutive feed failures: %w", feedFailures, err)
			}
			continue
		}
		feedFailures = 0

		if sentiment.Score < cfg.SentimentThreshold || sentiment.Confidence < cfg.MinConfidence {
			l.Debug("Candidate below thresholds",
				zap.String("symbol", symbol),
				zap.Float64("score", sentiment.Score),
				zap.Float64("confidence", sentiment.Confidence),
			)
			continue
		}

		price, err := sc.Prices.CurrentPrice(ctx, symbol)
		if err != nil {
			feedFailures++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: price feed: %v", symbol, err))
			if feedFailures >= maxConsecutiveFeedErrors {
				return report, fmt.Errorf("aborting run after %d consecutive feed failures: %w", feedFailures, err)
			}
			continue
		}
		feedFailures = 0

		if stale := s.staleQuote(ctx, sc, symbol, price); stale {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: spot price %.2f deviates from last close, skipping stale quote", symbol, price))
			continue
		}

		if report.TradesExecuted >= cfg.MaxTradesPerRun {
			l.Debug("Per-run trade limit reached, skipping candidate", zap.String("symbol", symbol))
			continue
		}

		maxPositionValue := balance * cfg.MaxPositionSize
		adjustedValue := maxPositionValue * sentiment.Confidence
		quantity := int64(math.Floor(adjustedValue / price))
		if quantity < 1 {
			quantity = 1
		}
		cost := float64(quantity) * price

		if committed+cost > spendable {
			l.Debug("Cash reserve limit would be exceeded, skipping candidate",
				zap.String("symbol", symbol),
				zap.Float64("committed", committed),
				zap.Float64("cost", cost),
				zap.Float64("spendable", spendable),
			)
			continue
		}

		score := sentiment.Score
		trade, err := sc.Portfolio.OpenTrade(ctx, portfolio.OpenTradeRequest{
			Symbol:         symbol,
			Type:           models.TradeTypeBuy,
			Quantity:       quantity,
			Strategy:       models.StrategySentiment,
			SentimentScore: &score,
		})
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", symbol, err))
			continue
		}

		report.Trades = append(report.Trades, *trade)
		report.TradesExecuted++
		report.TotalCapitalUsed += trade.TotalValue
		committed += trade.TotalValue
		l.Info("Sentiment trade executed",
			zap.Uint("trade_id", trade.ID),
			zap.String("symbol", symbol),
			zap.Int64("quantity", quantity),
			zap.Float64("score", score),
			zap.Float64("confidence", sentiment.Confidence),
		)
	}

	return report, nil
}

// staleQuote compares the spot price to the latest daily close. The check is
// best-effort: when the candle history is unavailable the quote is accepted.
func (s *SentimentStrategy) staleQuote(ctx context.Context, sc StrategyContext, symbol string, spot float64) bool {
	candles, err := sc.Prices.Candles(ctx, symbol, 2)
	if err != nil || len(candles) == 0 {
		return false
	}
	lastClose := candles[len(candles)-1].Close
	if lastClose <= 0 {
		return false
	}
	return math.Abs(spot-lastClose)/lastClose > maxSpotDeviation
}
