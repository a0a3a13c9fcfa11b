package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Feeds     Feeds     `mapstructure:"feeds"`
	Portfolio Portfolio `mapstructure:"portfolio"`
	Strategy  Strategy  `mapstructure:"strategy"`
	Logger    Logger    `mapstructure:"logger"`
	Database  Database  `mapstructure:"database"`
}

// Feeds holds the configuration for the external price and sentiment feeds.
type Feeds struct {
	PriceURL       string  `mapstructure:"price_url"`
	SentimentURL   string  `mapstructure:"sentiment_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Portfolio holds the configuration for the simulated account.
type Portfolio struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Strategy holds the configuration for the sentiment trading strategy.
// All fractions are expressed in [0, 1].
type Strategy struct {
	Symbols            []string `mapstructure:"symbols"`
	SentimentThreshold float64  `mapstructure:"sentiment_threshold"`
	MinConfidence      float64  `mapstructure:"min_confidence"`
	MaxPositionSize    float64  `mapstructure:"max_position_size"`
	MinCashReserve     float64  `mapstructure:"min_cash_reserve"`
	MaxTradesPerRun    int      `mapstructure:"max_trades_per_run"`
	TickInterval       int      `mapstructure:"tick_interval"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("feeds.rate_limit", 20)      // requests per second
	viper.SetDefault("feeds.rate_limit_burst", 5) // burst size
	viper.SetDefault("portfolio.initial_balance", 10000)
	viper.SetDefault("strategy.sentiment_threshold", 0.3)
	viper.SetDefault("strategy.min_confidence", 0.6)
	viper.SetDefault("strategy.max_position_size", 0.1)
	viper.SetDefault("strategy.min_cash_reserve", 0.2)
	viper.SetDefault("strategy.max_trades_per_run", 5)
	viper.SetDefault("strategy.tick_interval", 300)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
