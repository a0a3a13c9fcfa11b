package portfolio

import (
	"context"
	"fmt"
	"math"

	"paper-trading-bot-go/internal/models"
)

// balanceTolerance absorbs float64 rounding between the incremental balance
// and a full replay. Anything larger is a real divergence.
const balanceTolerance = 1e-6

// RecomputeBalance replays the ledger from the initial balance: every OPEN
// BUY locks its total value, every OPEN SELL credits its proceeds, every
// CLOSED trade contributes its realized P&L. This is the authoritative
// derivation; the cached balance is only an optimization over it.
func RecomputeBalance(initial float64, trades []models.Trade) float64 {
	balance := initial
	for i := range trades {
		t := &trades[i]
		if t.IsClosed() {
			if t.ProfitLoss != nil {
				balance += *t.ProfitLoss
			}
			continue
		}
		balance += t.BalanceEffect()
	}
	return balance
}

// Reconcile cross-checks the cached balance against a full ledger replay.
// A mismatch means an incremental update was wrong somewhere; it is
// returned as a ReconciliationError and must not be papered over.
func (s *Service) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var trades []models.Trade
	if err := s.db.WithContext(ctx).Order("id").Find(&trades).Error; err != nil {
		return fmt.Errorf("failed to load ledger for reconciliation: %w", err)
	}

	recomputed := RecomputeBalance(s.initialBalance, trades)
	if math.Abs(recomputed-s.balance) > balanceTolerance {
		return &ReconciliationError{Cached: s.balance, Recomputed: recomputed}
	}
	return nil
}
