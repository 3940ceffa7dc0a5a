package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mvoloshin/exchange-bot/internal/adapter/binance"
	"github.com/mvoloshin/exchange-bot/internal/config"
	"github.com/mvoloshin/exchange-bot/internal/repository"
	"github.com/mvoloshin/exchange-bot/internal/service"
	v1 "github.com/mvoloshin/exchange-bot/internal/transport/http/v1"
	"github.com/mvoloshin/exchange-bot/internal/transport/telegram"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	store, err := repository.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open transaction store", zap.Error(err))
	}
	defer store.Close()

	recorder := service.NewRecorder(store, repository.NewCSVLog(cfg.HistoryFile), logger)
	sessions := service.NewSessionStore()
	prices := binance.NewClient(cfg.BinanceBaseURL, cfg.PriceTimeout, cfg.PriceRetries, logger)
	conv := service.NewConversation(prices, recorder, sessions, config.Symbols, logger)

	bot, err := telegram.NewBot(cfg.TelegramToken, conv, logger)
	if err != nil {
		logger.Fatal("failed to initialize telegram bot", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	v1.NewHandler(recorder).RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("bot started",
		zap.String("bot", bot.Username()),
		zap.String("database", cfg.DatabasePath),
		zap.String("export", cfg.HistoryFile),
		zap.Int("http_port", cfg.HTTPPort))

	bot.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	logger.Info("stopped")
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
