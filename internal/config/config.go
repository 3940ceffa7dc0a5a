// Package config provides configuration for the exchange bot.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the bot configuration, loaded from environment variables.
type Config struct {
	// Telegram
	TelegramToken string

	// Persistence
	DatabasePath string
	HistoryFile  string

	// Price source
	BinanceBaseURL string
	PriceTimeout   time.Duration
	PriceRetries   int

	// Read-only HTTP API
	HTTPPort int

	// Logging
	LogLevel string
}

// Symbols maps an operation code to the Binance ticker symbol. Both
// directions of a pair resolve to the same symbol; the direction only
// decides whether the rate multiplies or divides.
var Symbols = map[string]string{
	"BTC-USDT": "BTCUSDT", "USDT-BTC": "BTCUSDT",
	"ETH-USDT": "ETHUSDT", "USDT-ETH": "ETHUSDT",
	"BNB-USDT": "BNBUSDT", "USDT-BNB": "BNBUSDT",
	"XRP-USDT": "XRPUSDT", "USDT-XRP": "XRPUSDT",
	"TRX-USDT": "TRXUSDT", "USDT-TRX": "TRXUSDT",
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		DatabasePath:   getEnv("DATABASE_PATH", "exchanges.db"),
		HistoryFile:    getEnv("HISTORY_FILE", "transactions.csv"),
		BinanceBaseURL: getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
		PriceTimeout:   time.Duration(getEnvInt("PRICE_TIMEOUT_MS", 5000)) * time.Millisecond,
		PriceRetries:   getEnvInt("PRICE_RETRIES", 3),
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
