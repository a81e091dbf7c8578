package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/natindo/Fiesta/internal/bot"
	"github.com/natindo/Fiesta/internal/config"
	"github.com/natindo/Fiesta/internal/logger"
	"github.com/natindo/Fiesta/internal/services"
	"github.com/natindo/Fiesta/internal/store"
)

func main() {
	// 1. Читаем конфиг из окружения
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Не удалось прочитать конфигурацию", "error", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.LogLevel)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("Некорректная таймзона", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Выбираем хранилище: Postgres при заданном DATABASE_URL, иначе заглушка
	var st store.EventStore
	if cfg.DatabaseURL != "" {
		pool, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("Не удалось подключиться к PostgreSQL", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		st = store.NewPostgresStore(pool, loc)
	} else {
		log.Info("DATABASE_URL не задан, используем хранилище-заглушку")
		st = store.NewMemoryStore(cfg.StoreDelay, loc)
	}

	// 3. Создаём инстанс бота
	api, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		log.Error("Ошибка при создании бота", "error", err)
		os.Exit(1)
	}
	log.Info("Бот инициализирован", "username", api.Self.UserName)

	// 4. Запускаем фоновое обновление кэша списка мероприятий
	cache := services.NewRefresher(st, cfg.RefreshInterval, log)
	go cache.Run(ctx)

	// 5. Запускаем основной цикл обработки
	if err := bot.New(api, st, cache, loc, log).Run(ctx); err != nil {
		log.Error("Ошибка запуска бота", "error", err)
		os.Exit(1)
	}
}
