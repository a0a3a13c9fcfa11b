package portfolio

import (
	"context"
	"testing"
	"time"

	"paper-trading-bot-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRecomputeBalance(t *testing.T) {
	pnl := 250.0
	now := time.Now()
	closePrice := 125.0
	trades := []models.Trade{
		{Symbol: "AAPL", Type: models.TradeTypeBuy, Quantity: 10, EntryPrice: 150, TotalValue: 1500, Status: models.StatusOpen},
		{Symbol: "TSLA", Type: models.TradeTypeSell, Quantity: 5, EntryPrice: 200, TotalValue: 1000, Status: models.StatusOpen},
		{Symbol: "MSFT", Type: models.TradeTypeBuy, Quantity: 10, EntryPrice: 100, TotalValue: 1000, Status: models.StatusClosed,
			ClosePrice: &closePrice, ClosedAt: &now, ProfitLoss: &pnl},
	}

	// initial - open BUY total + open SELL total + closed P&L
	got := RecomputeBalance(10000, trades)
	assert.InDelta(t, 10000-1500+1000+250, got, 1e-9)
}

func TestRecomputeBalance_EmptyLedger(t *testing.T) {
	assert.InDelta(t, 10000.0, RecomputeBalance(10000, nil), 1e-9)
}

// Balance conservation: after every step of a create/close/delete sequence,
// the cached balance must match a full replay of the ledger.
func TestBalanceConservation_AcrossLifecycle(t *testing.T) {
	svc, _, mockFeed := setupTest(t, 10000)
	mockFeed.On("CurrentPrice", mock.Anything, mock.Anything).Return(100.0, nil)

	ctx := context.Background()
	assert.NoError(t, svc.Reconcile(ctx))

	buy, err := svc.OpenTrade(ctx, OpenTradeRequest{Symbol: "AAPL", Type: models.TradeTypeBuy, Quantity: 10})
	assert.NoError(t, err)
	assert.NoError(t, svc.Reconcile(ctx))

	sell, err := svc.OpenTrade(ctx, OpenTradeRequest{Symbol: "TSLA", Type: models.TradeTypeSell, Quantity: 3})
	assert.NoError(t, err)
	assert.NoError(t, svc.Reconcile(ctx))

	closePrice := 90.0
	_, err = svc.CloseTrade(ctx, buy.ID, &closePrice)
	assert.NoError(t, err)
	assert.NoError(t, svc.Reconcile(ctx))

	assert.NoError(t, svc.DeleteTrade(ctx, sell.ID))
	assert.NoError(t, svc.Reconcile(ctx))
}

func TestReconcile_DetectsDrift(t *testing.T) {
	svc, db, mockFeed := setupTest(t, 10000)
	mockFeed.On("CurrentPrice", mock.Anything, "AAPL").Return(150.0, nil)

	trade, err := svc.OpenTrade(context.Background(), OpenTradeRequest{Symbol: "AAPL", Type: models.TradeTypeBuy, Quantity: 10})
	assert.NoError(t, err)

	// Tamper with the ledger behind the service's back: the cached balance
	// no longer matches a replay, which must surface as a mismatch.
	assert.NoError(t, db.Model(&models.Trade{}).Where("id = ?", trade.ID).Update("total_value", 9999.0).Error)

	err = svc.Reconcile(context.Background())
	var mismatch *ReconciliationError
	assert.ErrorAs(t, err, &mismatch)
	assert.InDelta(t, 8500.0, mismatch.Cached, 1e-9)
	assert.InDelta(t, 10000.0-9999.0, mismatch.Recomputed, 1e-9)
}
