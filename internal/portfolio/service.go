package portfolio

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"paper-trading-bot-go/internal/feed"
	"paper-trading-bot-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z]{1,10}$`)

// Service is the trade lifecycle manager for one simulated account. It owns
// the cash balance: every balance-mutating operation (open, close, delete)
// runs under the account mutex so that two concurrent opens can never both
// pass the balance check against a stale value. Feed lookups happen before
// the mutex is taken. Read-only queries do not take the mutex.
type Service struct {
	logger         *zap.Logger
	db             *gorm.DB
	prices         feed.PriceFeed
	initialBalance float64

	mu      sync.Mutex
	balance float64
}

// NewService creates a lifecycle manager, replaying the persisted ledger to
// derive the starting balance. Cached balance state is never trusted across
// restarts; history is the only source of truth.
func NewService(db *gorm.DB, prices feed.PriceFeed, initialBalance float64, logger *zap.Logger) (*Service, error) {
	var trades []models.Trade
	if err := db.Order("id").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to load trade history: %w", err)
	}

	s := &Service{
		logger:         logger,
		db:             db,
		prices:         prices,
		initialBalance: initialBalance,
		balance:        RecomputeBalance(initialBalance, trades),
	}
	logger.Info("Portfolio initialized from ledger",
		zap.Int("trades", len(trades)),
		zap.Float64("initial_balance", initialBalance),
		zap.Float64("current_balance", s.balance),
	)
	return s, nil
}

// OpenTradeRequest carries the caller-supplied fields for a new trade.
type OpenTradeRequest struct {
	Symbol         string
	Type           string
	Quantity       int64
	Strategy       string
	SentimentScore *float64
}

func (r *OpenTradeRequest) validate() error {
	if !symbolPattern.MatchString(r.Symbol) {
		return &ValidationError{Field: "symbol", Reason: "must be 1-10 alphabetic characters"}
	}
	if r.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	if r.Type != models.TradeTypeBuy && r.Type != models.TradeTypeSell {
		return &ValidationError{Field: "type", Reason: `must be "BUY" or "SELL"`}
	}
	return nil
}

// OpenTrade validates the request, prices it against the market data feed
// and persists a new OPEN trade, debiting (BUY) or crediting (SELL short)
// the balance as one atomic unit. A BUY that exceeds the available cash
// fails with InsufficientBalanceError and leaves no state behind.
func (s *Service) OpenTrade(ctx context.Context, req OpenTradeRequest) (*models.Trade, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	symbol := strings.ToUpper(req.Symbol)
	if req.Strategy == "" {
		req.Strategy = models.StrategyManual
	}

	price, err := s.prices.CurrentPrice(ctx, symbol)
	if err != nil {
		return nil, &PriceUnavailableError{Symbol: symbol, Err: err}
	}

	trade := &models.Trade{
		Symbol:         symbol,
		Type:           req.Type,
		Quantity:       req.Quantity,
		EntryPrice:     price,
		TotalValue:     float64(req.Quantity) * price,
		Strategy:       req.Strategy,
		SentimentScore: req.SentimentScore,
		OpenedAt:       time.Now(),
		Status:         models.StatusOpen,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if trade.Type == models.TradeTypeBuy && trade.TotalValue > s.balance {
		return nil, &InsufficientBalanceError{Available: s.balance, Required: trade.TotalValue}
	}

	if err := s.db.WithContext(ctx).Create(trade).Error; err != nil {
		return nil, s.internalError("failed to persist trade", err)
	}
	s.balance += trade.BalanceEffect()

	s.logger.Info("Trade opened",
		zap.Uint("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.String("type", trade.Type),
		zap.Int64("quantity", trade.Quantity),
		zap.Float64("entry_price", trade.EntryPrice),
		zap.Float64("balance", s.balance),
	)
	return trade, nil
}

// CloseTrade settles an OPEN trade at the given price, or at the current
// feed price when closePrice is nil. Status, close price, close time and
// P&L are written together; capital plus realized P&L returns to the
// balance so the ledger-derived formula holds exactly afterwards.
func (s *Service) CloseTrade(ctx context.Context, id uint, closePrice *float64) (*models.Trade, error) {
	if closePrice != nil && *closePrice <= 0 {
		return nil, &ValidationError{Field: "close_price", Reason: "must be a positive decimal"}
	}

	var price float64
	if closePrice != nil {
		price = *closePrice
	} else {
		// Resolve the symbol and fetch the quote before taking the account
		// lock; the status is re-checked under the lock.
		trade, err := s.findTrade(ctx, id)
		if err != nil {
			return nil, err
		}
		if trade.IsClosed() {
			return nil, ErrTradeAlreadyClosed
		}
		price, err = s.prices.CurrentPrice(ctx, trade.Symbol)
		if err != nil {
			return nil, &PriceUnavailableError{Symbol: trade.Symbol, Err: err}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trade, err := s.findTrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if trade.IsClosed() {
		return nil, ErrTradeAlreadyClosed
	}

	pnl := profitLoss(trade, price)
	now := time.Now()
	trade.Status = models.StatusClosed
	trade.ClosePrice = &price
	trade.ClosedAt = &now
	trade.ProfitLoss = &pnl

	if err := s.db.WithContext(ctx).Save(trade).Error; err != nil {
		return nil, s.internalError("failed to persist trade close", err)
	}
	// Reverse the open-time effect and apply realized P&L: a BUY returns its
	// locked capital plus P&L, a SELL short gives back its credited proceeds.
	s.balance += -trade.BalanceEffect() + pnl

	s.logger.Info("Trade closed",
		zap.Uint("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.Float64("close_price", price),
		zap.Float64("profit_loss", pnl),
		zap.Float64("balance", s.balance),
	)
	return trade, nil
}

// DeleteTrade removes an OPEN trade and reverses the balance effect it had
// on creation. CLOSED trades are realized history and can never be deleted.
func (s *Service) DeleteTrade(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trade, err := s.findTrade(ctx, id)
	if err != nil {
		return err
	}
	if trade.IsClosed() {
		return ErrCannotDeleteClosedTrade
	}

	if err := s.db.WithContext(ctx).Delete(trade).Error; err != nil {
		return s.internalError("failed to delete trade", err)
	}
	s.balance -= trade.BalanceEffect()

	s.logger.Info("Trade deleted",
		zap.Uint("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.Float64("balance", s.balance),
	)
	return nil
}

// Balance returns the current cash balance.
func (s *Service) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// InitialBalance returns the account's fixed starting balance.
func (s *Service) InitialBalance() float64 {
	return s.initialBalance
}

// TradeFilter narrows ledger queries. Zero values match everything.
type TradeFilter struct {
	Status string
	Symbol string
}

// Trades returns ledger rows matching the filter in insertion order, which
// doubles as the stable tie-break for chronological analytics.
func (s *Service) Trades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	q := s.db.WithContext(ctx).Order("id")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Symbol != "" {
		q = q.Where("symbol = ?", strings.ToUpper(filter.Symbol))
	}
	var trades []models.Trade
	if err := q.Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	return trades, nil
}

func (s *Service) findTrade(ctx context.Context, id uint) (*models.Trade, error) {
	var trade models.Trade
	if err := s.db.WithContext(ctx).First(&trade, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, s.internalError("failed to look up trade", err)
	}
	return &trade, nil
}

func (s *Service) internalError(msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	return &ValidationError{Reason: msg, Err: err}
}

// profitLoss applies the realized P&L formula: a BUY profits when price
// rises, a SELL short profits when it falls.
func profitLoss(t *models.Trade, closePrice float64) float64 {
	if t.Type == models.TradeTypeBuy {
		return (closePrice - t.EntryPrice) * float64(t.Quantity)
	}
	return (t.EntryPrice - closePrice) * float64(t.Quantity)
}
