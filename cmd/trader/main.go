package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"paper-trading-bot-go/internal/config"
	"paper-trading-bot-go/internal/database"
	"paper-trading-bot-go/internal/feed"
	"paper-trading-bot-go/internal/logger"
	"paper-trading-bot-go/internal/portfolio"
	"paper-trading-bot-go/internal/trader"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Initialize feed clients
	prices := feed.NewPriceClient(&cfg.Feeds, log.Named("price-feed"))
	sentiment := feed.NewSentimentClient(&cfg.Feeds, log.Named("sentiment-feed"))

	// Initialize the portfolio service; the balance is replayed from the
	// persisted ledger, never trusted from cached state.
	account, err := portfolio.NewService(db, prices, cfg.Portfolio.InitialBalance, log.Named("portfolio"))
	if err != nil {
		log.Fatal("Failed to initialize portfolio", zap.Error(err))
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Initialize and run the trading engine
	sc := trader.StrategyContext{
		Logger:    log.Named("trader"),
		Cfg:       &cfg,
		Portfolio: account,
		Prices:    prices,
		Sentiment: sentiment,
	}
	engine := trader.NewEngine(sc, &trader.SentimentStrategy{})
	engine.Run(ctx)

	log.Info("Bot has been shut down.")
}
