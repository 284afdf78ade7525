package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"brochure-bot/internal/bot"
	"brochure-bot/internal/config"
	"brochure-bot/internal/storage"
	"brochure-bot/pkg/api"
	"brochure-bot/pkg/logger"
	"brochure-bot/pkg/redis"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ENTRY POINT

func main() {
	// Инициализация логгера
	zapLogger, err := logger.New()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load config", zap.Error(err))
	}

	// Инициализация Redis клиента
	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	defer redisClient.Close()

	// Инициализация PostgreSQL хранилища
	pgStorage, err := storage.NewPostgresStorage(context.Background(), cfg.Database, redisClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
	}
	defer pgStorage.Close()

	// Применение миграций
	if err := storage.RunMigrations(context.Background(), pgStorage.DB(), zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Инициализация CRM клиента
	crmClient := api.NewClient(cfg.CRM.BaseURL, cfg.CRM.APIKey, zapLogger)

	// Создание бота
	tgBot, err := bot.New(
		cfg.TelegramToken,
		crmClient,
		redisClient,
		pgStorage,
		zapLogger,
		cfg,
	)
	if err != nil {
		zapLogger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Обработка сигналов завершения
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	// Запуск бота
	if err := tgBot.Start(ctx); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}

	zapLogger.Info("Bot shutdown gracefully")
}
