// Package analytics computes performance statistics and the equity curve
// from a ledger snapshot. Everything here is a pure function: results are
// recomputed fresh from the trades passed in, never cached.
package analytics

import (
	"math"
	"sort"
	"time"

	"paper-trading-bot-go/internal/models"
)

// Metrics aggregates realized performance over the closed trades of a
// ledger snapshot. Rate and average fields are 0 when their underlying set
// is empty.
type Metrics struct {
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	WinRate         float64 `json:"win_rate"`
	AverageProfit   float64 `json:"average_profit"`
	AverageLoss     float64 `json:"average_loss"`
	TotalProfitLoss float64 `json:"total_profit_loss"`
	TotalReturn     float64 `json:"total_return"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
	InitialBalance  float64 `json:"initial_balance"`
	CurrentBalance  float64 `json:"current_balance"`
}

// HistoryPoint is one entry of the equity curve: the portfolio value
// immediately after a ledger event.
type HistoryPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ComputeMetrics derives the aggregate statistics from a ledger snapshot.
// Trades must be in insertion order; closed trades are replayed by close
// time with insertion order as the tie-break, keeping the drawdown and
// Sharpe computations deterministic under equal timestamps.
func ComputeMetrics(trades []models.Trade, initialBalance, currentBalance float64) Metrics {
	m := Metrics{
		InitialBalance: initialBalance,
		CurrentBalance: currentBalance,
	}

	closed := closedByCloseTime(trades)
	m.TotalTrades = len(closed)
	if m.TotalTrades == 0 {
		return m
	}

	var profitSum, lossSum float64
	for _, t := range closed {
		pnl := *t.ProfitLoss
		m.TotalProfitLoss += pnl
		switch {
		case pnl > 0:
			m.WinningTrades++
			profitSum += pnl
		case pnl < 0:
			m.LosingTrades++
			lossSum += pnl
		}
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	if m.WinningTrades > 0 {
		m.AverageProfit = profitSum / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = lossSum / float64(m.LosingTrades)
	}
	// Realized P&L only: capital locked in open positions must not distort
	// the performance signal.
	m.TotalReturn = m.TotalProfitLoss / initialBalance * 100
	m.MaxDrawdown = maxDrawdown(closed, initialBalance)
	m.SharpeRatio = sharpeRatio(closed, initialBalance)
	return m
}

// History produces the equity curve over the trailing window: one point per
// ledger event (open debit/credit, close settlement), each carrying the
// cash balance immediately after the event. Events before the window still
// contribute to the running value; same-date events are not deduplicated.
func History(trades []models.Trade, initialBalance float64, days int) []HistoryPoint {
	type event struct {
		at    time.Time
		delta float64
	}

	events := make([]event, 0, 2*len(trades))
	for i := range trades {
		t := &trades[i]
		events = append(events, event{at: t.OpenedAt, delta: t.BalanceEffect()})
		if t.IsClosed() && t.ClosedAt != nil && t.ProfitLoss != nil {
			// Settlement reverses the open-time effect and applies P&L.
			events = append(events, event{at: *t.ClosedAt, delta: -t.BalanceEffect() + *t.ProfitLoss})
		}
	}
	// Stable sort keeps insertion order for equal timestamps.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].at.Before(events[j].at)
	})

	cutoff := time.Now().AddDate(0, 0, -days)
	value := initialBalance
	points := make([]HistoryPoint, 0, len(events))
	for _, ev := range events {
		value += ev.delta
		if !ev.at.Before(cutoff) {
			points = append(points, HistoryPoint{Date: ev.at, Value: value})
		}
	}
	return points
}

// closedByCloseTime extracts the closed trades ordered chronologically by
// close time, falling back to the input (insertion) order on ties.
func closedByCloseTime(trades []models.Trade) []models.Trade {
	closed := make([]models.Trade, 0, len(trades))
	for i := range trades {
		if trades[i].IsClosed() && trades[i].ClosedAt != nil && trades[i].ProfitLoss != nil {
			closed = append(closed, trades[i])
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].ClosedAt.Before(*closed[j].ClosedAt)
	})
	return closed
}

// maxDrawdown replays closed trades chronologically, tracking the running
// cumulative return and its peak. The result is a percentage, always >= 0.
func maxDrawdown(closed []models.Trade, initialBalance float64) float64 {
	var running, peak, maxDD float64
	for _, t := range closed {
		running += *t.ProfitLoss / initialBalance
		if running > peak {
			peak = running
		}
		if dd := peak - running; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100
}

// sharpeRatio treats each closed trade's return fraction as one sample:
// mean over population standard deviation. Fewer than two samples, or zero
// volatility, yields 0.
func sharpeRatio(closed []models.Trade, initialBalance float64) float64 {
	if len(closed) < 2 {
		return 0
	}

	returns := make([]float64, len(closed))
	var sum float64
	for i, t := range closed {
		returns[i] = *t.ProfitLoss / initialBalance
		sum += returns[i]
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0
	}
	return mean / stddev
}
