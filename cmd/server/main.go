package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/tv-ad-booking/internal/config"
	"github.com/iliyamo/tv-ad-booking/internal/database"
	"github.com/iliyamo/tv-ad-booking/internal/handler"
	"github.com/iliyamo/tv-ad-booking/internal/logging"
	"github.com/iliyamo/tv-ad-booking/internal/middleware"
	"github.com/iliyamo/tv-ad-booking/internal/model"
	"github.com/iliyamo/tv-ad-booking/internal/obs"
	"github.com/iliyamo/tv-ad-booking/internal/queue"
	"github.com/iliyamo/tv-ad-booking/internal/repository"
	"github.com/iliyamo/tv-ad-booking/internal/router"
	"github.com/iliyamo/tv-ad-booking/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := obs.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Env)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, database.MySQL); err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		id, err := users.EnsureUser(ctx, repository.NewUser{
			Email: cfg.AdminEmail, Password: cfg.AdminPassword, Name: "Administrator", Role: model.RoleAdmin,
		}, cfg.BcryptCost, time.Now())
		if err != nil {
			return err
		}
		logger.Info("bootstrap admin ready", "user_id", id)
	}

	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		return err
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		return err
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		return err
	}
	rdb := config.NewRedisClient(redisCfg)
	if rdb == nil {
		logger.Warn("redis unreachable, cache and rate limit disabled", "addr", redisCfg.Addr)
	} else {
		defer rdb.Close()
	}

	brokerCfg, err := config.LoadBrokerConfig()
	if err != nil {
		return err
	}
	var events service.EventPublisher = service.NopPublisher{}
	if brokerCfg.URL != "" {
		pub, err := service.NewAMQPPublisher(brokerCfg.URL, brokerCfg.Queue)
		if err != nil {
			logger.Warn("event publisher disabled", "error", err)
		} else {
			defer pub.Close()
			events = pub
		}
		if brokerCfg.Consume {
			audit := &queue.AuditConsumer{URL: brokerCfg.URL, Queue: brokerCfg.Queue, Dir: brokerCfg.AuditLogDir, Logger: logger}
			go func() {
				if err := audit.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("audit consumer stopped", "error", err)
				}
			}()
		}
	}

	channelRepo := repository.NewChannelRepo(db)
	inventory := service.NewInventory(repository.NewSlotRepo(db), channelRepo, nil, nil, logger)
	fanout := service.NewFanout(repository.NewNotificationRepo(db), nil, nil, logger)
	catalog := service.NewCatalog(channelRepo, repository.NewAdRepo(db), nil, nil, logger)
	ledger := service.NewLedger(service.LedgerDeps{
		Slots:         inventory,
		Bookings:      repository.NewBookingRepo(db),
		Notifier:      fanout,
		Events:        events,
		AdminFallback: cfg.AdminNotifyUserID,
		Logger:        logger,
	})

	purger := middleware.NewCachePurger(rdb, cacheCfg.Prefix)
	slotH := handler.NewSlotHandler(inventory, purger)
	bookingH := handler.NewBookingHandler(ledger, catalog, purger)
	catalogH := handler.NewCatalogHandler(catalog)
	authH := handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db))

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, slotH, catalogH, middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterNotifications(e, handler.NewNotificationHandler(fanout), cfg.JWTSecret)
	router.RegisterAdvertiser(e, bookingH, catalogH, cfg.JWTSecret)
	router.RegisterAdmin(e, slotH, bookingH, catalogH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
