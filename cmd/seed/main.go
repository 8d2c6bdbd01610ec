package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"gorm.io/gorm/logger"

	"sakubijak/internal/auth"
	"sakubijak/internal/cache"
	"sakubijak/internal/config"
	"sakubijak/internal/db"
	"sakubijak/internal/events"
	"sakubijak/internal/log"
	"sakubijak/internal/repository"
	"sakubijak/internal/seed"
	"sakubijak/internal/service"
)

func main() {
	source := flag.String("source", "", "seed document: file path or http(s) URL; built-in demo data when empty")
	flag.Parse()

	cfg := config.Load()
	seedLogger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentSeed,
	})
	log.SetDefault(seedLogger)
	seedLogger.Info("starting seed script")

	if err := run(cfg, seedLogger, *source); err != nil {
		if errors.Is(err, seed.ErrAlreadySeeded) {
			seedLogger.Info("seed user already exists, nothing to do")
			return
		}
		seedLogger.Error("seed failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, seedLogger *log.Logger, source string) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DSN, db.Options{LogLevel: logger.Warn})
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB, cfg.DBDriver, cfg.DSN); err != nil {
		return err
	}
	seedLogger.Info("database migrations completed")

	data, err := seed.Load(source)
	if err != nil {
		return err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		// Seeding issues no tokens; the codec only needs a key to exist.
		secret = "seed"
	}
	codec, err := auth.NewTokenCodec(secret, cfg.JWTAlgorithm)
	if err != nil {
		return err
	}

	store := repository.NewStore(gormDB)
	publisher := events.Noop{}
	logger := seedLogger.Logger
	seeder := &seed.Seeder{
		Auth: service.NewAuthService(store, codec, auth.NewTokenStore(cache.New("", "", 0, logger)),
			service.TokenTTLs{Access: cfg.TokenTTL, Refresh: cfg.RefreshTTL}, publisher, logger),
		Categories:   service.NewCategoryService(store, publisher, logger),
		Transactions: service.NewTransactionService(store, publisher, logger),
		Logger:       logger,
		Now:          time.Now,
	}

	result, err := seeder.Run(context.Background(), data)
	if err != nil {
		return err
	}

	seedLogger.Info("seed completed successfully",
		log.FieldUserID, result.UserID,
		"email", data.User.Email,
		"categories", result.Categories,
		"transactions", result.Transactions,
	)
	return nil
}
