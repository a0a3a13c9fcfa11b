package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a test server and a restClient configured to use it.
func setupTestServer(handler http.Handler) (restClient, *httptest.Server) {
	server := httptest.NewServer(handler)

	rc := restClient{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),                 // Use a no-op logger for tests
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return rc, server
}

func TestCurrentPrice(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/price", r.URL.Path)
			assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"symbol": "AAPL", "price": 150.25}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()
		client := &PriceClient{restClient: rc}

		price, err := client.CurrentPrice(context.Background(), "AAPL")

		assert.NoError(t, err)
		assert.Equal(t, 150.25, price)
	})

	t.Run("NonPositivePrice", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"symbol": "AAPL", "price": 0}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()
		client := &PriceClient{restClient: rc}

		_, err := client.CurrentPrice(context.Background(), "AAPL")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "non-positive price")
	})

	t.Run("FeedError", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "unknown symbol"}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()
		client := &PriceClient{restClient: rc}

		_, err := client.CurrentPrice(context.Background(), "NOPE")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get price")
	})
}

func TestCandles(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/candles", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2", r.URL.Query().Get("days"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[
			{"time": "2026-08-26T00:00:00Z", "open": 148, "high": 151, "low": 147, "close": 150, "volume": 1000},
			{"time": "2026-08-27T00:00:00Z", "open": 150, "high": 153, "low": 149, "close": 152, "volume": 1200}
		]`))
	})

	rc, server := setupTestServer(handler)
	defer server.Close()
	client := &PriceClient{restClient: rc}

	candles, err := client.Candles(context.Background(), "AAPL", 2)

	assert.NoError(t, err)
	assert.Len(t, candles, 2)
	assert.Equal(t, 152.0, candles[1].Close)
}

func TestSentimentScore(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/sentiment", r.URL.Path)
			assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"symbol": "AAPL", "score": 0.72, "confidence": 0.9}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()
		client := &SentimentClient{restClient: rc}

		s, err := client.Score(context.Background(), "AAPL")

		assert.NoError(t, err)
		assert.Equal(t, 0.72, s.Score)
		assert.Equal(t, 0.9, s.Confidence)
	})

	t.Run("ConfidenceOutOfRange", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"symbol": "AAPL", "score": 0.72, "confidence": 1.8}`))
		})

		rc, server := setupTestServer(handler)
		defer server.Close()
		client := &SentimentClient{restClient: rc}

		_, err := client.Score(context.Background(), "AAPL")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})
}
