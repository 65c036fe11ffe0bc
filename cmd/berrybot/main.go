package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"berrybot/internal/bot"
	"berrybot/internal/config"
	"berrybot/internal/logger"
	"berrybot/internal/storage"
	"berrybot/pkg/redis"
)

// ENTRY POINT

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogSink)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		zapLogger.Fatal("Failed to load produce catalog", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		zapLogger.Fatal("Failed to create data directory", zap.Error(err))
	}

	orders := storage.NewOrderStore(filepath.Join(cfg.DataDir, "orders.json"), zapLogger)
	users := storage.NewUserStore(filepath.Join(cfg.DataDir, "users.json"), zapLogger)

	var sessions bot.SessionStore
	if cfg.RedisAddr != "" {
		redisClient := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisClient.Close()
		sessions = bot.NewRedisSessionStore(redisClient, cfg.SessionTTL)
		zapLogger.Info("Using Redis session storage", zap.String("addr", cfg.RedisAddr))
	} else {
		sessions = bot.NewMemorySessionStore()
		zapLogger.Info("REDIS_ADDR not set, using in-memory session storage")
	}

	tgBot, err := bot.New(cfg, catalog, sessions, orders, users, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create bot", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := tgBot.Start(ctx); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}

	zapLogger.Info("Bot shutdown gracefully")
}
