package portfolio

import (
	"errors"
	"fmt"
)

var (
	// ErrTradeNotFound is returned when the trade id does not exist in the ledger.
	ErrTradeNotFound = errors.New("trade not found")
	// ErrTradeAlreadyClosed is returned when closing a trade that is already CLOSED.
	ErrTradeAlreadyClosed = errors.New("trade already closed")
	// ErrCannotDeleteClosedTrade is returned when deleting a CLOSED trade.
	// Realized history is immutable.
	ErrCannotDeleteClosedTrade = errors.New("cannot delete a closed trade")
)

// ValidationError reports malformed input at the operation boundary. It is
// also the class unexpected internal failures are wrapped into, with the
// original cause attached.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid trade: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid trade: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InsufficientBalanceError is returned when a BUY exceeds the available cash.
type InsufficientBalanceError struct {
	Available float64
	Required  float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %.2f, required %.2f", e.Available, e.Required)
}

// PriceUnavailableError is returned when the price feed fails for a symbol.
type PriceUnavailableError struct {
	Symbol string
	Err    error
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("price unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *PriceUnavailableError) Unwrap() error { return e.Err }

// ReconciliationError reports that the incrementally maintained balance has
// diverged from the value replayed from the ledger. This means the core
// invariant has already been violated; it must be surfaced, never silently
// corrected.
type ReconciliationError struct {
	Cached     float64
	Recomputed float64
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("balance reconciliation mismatch: cached %.8f, recomputed %.8f", e.Cached, e.Recomputed)
}
