package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm/logger"

	"sakubijak/docs"
	"sakubijak/internal/auth"
	"sakubijak/internal/cache"
	"sakubijak/internal/config"
	"sakubijak/internal/db"
	"sakubijak/internal/events"
	"sakubijak/internal/handler"
	"sakubijak/internal/log"
	"sakubijak/internal/report"
	"sakubijak/internal/repository"
	"sakubijak/internal/router"
	"sakubijak/internal/service"
)

// @title SakuBijak API
// @version 1.0
// @description Personal finance API: categories, transactions and a monthly dashboard behind JWT authentication.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	appLogger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
	})
	log.SetDefault(appLogger)

	if err := cfg.Validate(); err != nil {
		appLogger.Error("invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("server stopped", log.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *log.Logger) error {
	storageLogger := appLogger.WithComponent(log.ComponentStorage)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DSN, db.Options{LogLevel: logger.Warn})
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	if cfg.ResetDB {
		storageLogger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.DropAll(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB, cfg.DBDriver, cfg.DSN); err != nil {
		return err
	}
	storageLogger.Info("schema up to date", log.FieldOperation, log.OpMigrate, "driver", cfg.DBDriver)

	cacheLogger := appLogger.WithComponent(log.ComponentCache)
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cacheLogger.Logger)
	defer cacheClient.Close()
	if cacheClient.Enabled() {
		if err := cacheClient.Ping(context.Background()); err != nil {
			cacheLogger.Warn("redis unreachable, continuing without it", log.FieldError, err)
		}
	} else {
		cacheLogger.Info("redis not configured, refresh tokens and revocation are disabled")
	}

	eventsLogger := appLogger.WithComponent(log.ComponentEvents)
	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, eventsLogger.Logger)
		if err != nil {
			eventsLogger.Warn("event broker unreachable, events are dropped", log.FieldError, err)
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
			eventsLogger.Info("publishing events", "exchange", cfg.AMQPExchange)
		}
	}

	// Auth components
	codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return err
	}
	tokenStore := auth.NewTokenStore(cacheClient)
	authLogger := appLogger.WithComponent(log.ComponentAuth)
	authenticator := auth.NewAuthenticator(codec, tokenStore, authLogger.Logger)

	// Services
	store := repository.NewStore(gormDB)
	ttl := service.TokenTTLs{Access: cfg.TokenTTL, Refresh: cfg.RefreshTTL}
	authService := service.NewAuthService(store, codec, tokenStore, ttl, publisher, authLogger.Logger)
	userService := service.NewUserService(store, cacheClient, tokenStore, publisher, authLogger.Logger)
	categoryService := service.NewCategoryService(store, publisher, appLogger.WithComponent(log.ComponentCategory).Logger)
	transactionService := service.NewTransactionService(store, publisher, appLogger.WithComponent(log.ComponentTransaction).Logger)
	dashboardService := service.NewDashboardService(store, report.NewChartRenderer(), appLogger.WithComponent(log.ComponentDashboard).Logger)

	e := echo.New()
	router.Register(e, cfg, appLogger, authenticator, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Users:        handler.NewUserHandler(userService),
		Categories:   handler.NewCategoryHandler(categoryService),
		Transactions: handler.NewTransactionHandler(transactionService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	appLogger.Info("swagger documentation available", "url", swaggerURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		appLogger.Info("server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}
