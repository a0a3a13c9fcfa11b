package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"

	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"

	StrategyManual    = "MANUAL"
	StrategySentiment = "SENTIMENT"
)

// Trade represents one simulated position in the ledger.
//
// A SELL opens a short position: proceeds are credited to the cash balance
// on creation, symmetric to the BUY debit. The close fields are all nil
// while the trade is OPEN and are set together when it closes. A CLOSED
// trade is immutable.
type Trade struct {
	gorm.Model
	Symbol         string     `json:"symbol" gorm:"index;not null"`
	Type           string     `json:"type" gorm:"not null"` // "BUY" or "SELL"
	Quantity       int64      `json:"quantity" gorm:"not null"`
	EntryPrice     float64    `json:"entry_price" gorm:"not null"`
	TotalValue     float64    `json:"total_value" gorm:"not null"` // Quantity * EntryPrice, fixed at creation
	Strategy       string     `json:"strategy"`
	SentimentScore *float64   `json:"sentiment_score,omitempty"`
	OpenedAt       time.Time  `json:"opened_at"`
	Status         string     `json:"status" gorm:"index;not null"`
	ClosePrice     *float64   `json:"close_price,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	ProfitLoss     *float64   `json:"profit_loss,omitempty"`
}

// IsClosed reports whether the trade has been settled.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

// BalanceEffect returns the signed cash delta the trade applied to the
// balance when it was opened: a debit for a BUY, a credit for a SELL.
func (t *Trade) BalanceEffect() float64 {
	if t.Type == TradeTypeBuy {
		return -t.TotalValue
	}
	return t.TotalValue
}
