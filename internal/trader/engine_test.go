package trader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubStrategy records invocations without trading.
type stubStrategy struct {
	initialized int
	scouts      int
}

func (s *stubStrategy) Name() string { return "Stub" }

func (s *stubStrategy) Initialize(StrategyContext) error {
	s.initialized++
	return nil
}

func (s *stubStrategy) Scout(context.Context, StrategyContext) (*ExecutionReport, error) {
	s.scouts++
	return &ExecutionReport{}, nil
}

func TestEngine_TickScoutsAndReconciles(t *testing.T) {
	sc, _, _ := setupScoutTest(t, defaultStrategyConfig("AAPL"), 10000)
	strategy := &stubStrategy{}
	engine := NewEngine(sc, strategy)

	engine.tick(context.Background())
	engine.tick(context.Background())

	assert.Equal(t, 2, strategy.scouts)
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	cfg := defaultStrategyConfig("AAPL")
	cfg.Strategy.TickInterval = 3600 // never fires during the test
	sc, _, _ := setupScoutTest(t, cfg, 10000)
	strategy := &stubStrategy{}
	engine := NewEngine(sc, strategy)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop on context cancellation")
	}
	assert.Equal(t, 1, strategy.initialized)
	assert.Equal(t, 0, strategy.scouts)
}
