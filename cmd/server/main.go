package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"                        // request ids
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // recover and request id middleware

	"github.com/iliyamo/marketplace-api/internal/config"     // environment config
	"github.com/iliyamo/marketplace-api/internal/database"   // MySQL connection and schema
	"github.com/iliyamo/marketplace-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/marketplace-api/internal/logging"    // structured logger
	"github.com/iliyamo/marketplace-api/internal/middleware" // cache, rate limit and access log
	"github.com/iliyamo/marketplace-api/internal/payment"    // Stripe gateway
	"github.com/iliyamo/marketplace-api/internal/queue"      // domain events
	"github.com/iliyamo/marketplace-api/internal/repository" // data access
	"github.com/iliyamo/marketplace-api/internal/router"     // route registration
	"github.com/iliyamo/marketplace-api/internal/service"    // business rules
	"github.com/iliyamo/marketplace-api/internal/timeouts"   // server timeouts
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		logging.New(os.Stderr, "", "info").Error("load config", "err", err)
		return err
	}
	logger := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Error("connect database", "err", err)
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Error("apply schema", "err", err)
		return err
	}

	// Redis backs the response cache and the auth rate limiter.  Without it
	// both middlewares pass requests through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; caching and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		logger.Error("load cache config", "err", err)
		return err
	}
	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Error("load rate limit config", "err", err)
		return err
	}

	var pub queue.Publisher = queue.NoopPublisher{}
	if cfg.Broker.Enabled {
		pub = queue.NewAMQPPublisher(cfg.Broker.URL, logger)
		audit := &queue.AuditConsumer{URL: cfg.Broker.URL, LogPath: cfg.Broker.AuditLogPath, Logger: logger}
		go func() {
			if err := audit.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("audit consumer stopped", "err", err)
			}
		}()
	}
	if cfg.Payment.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set; payments will fail")
	}
	gateway := payment.NewStripeGateway(cfg.Payment.StripeSecretKey)

	users, tokens := repository.NewUserRepo(db), repository.NewTokenRepo(db)
	products, orders := repository.NewProductRepo(db), repository.NewOrderRepo(db)

	authH := handler.NewAuthHandler(service.NewAuthService(cfg, users, tokens, pub, logger))
	productH := handler.NewProductHandler(service.NewProductService(products, pub, logger))
	orderH := handler.NewOrderHandler(service.NewOrderService(orders, products, logger))
	paymentH := handler.NewPaymentHandler(service.NewPaymentService(gateway, orders, pub, logger, cfg.Payment.ReturnURL))
	revenueH := handler.NewRevenueHandler(service.NewRevenueService(repository.NewRevenueRepo(db), logger))

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logger))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, cfg.JWTSecret, middleware.NewTokenBucket(rlCfg, rdb, logger))
	router.RegisterProducts(e, productH, cfg.JWTSecret)
	router.RegisterOrders(e, orderH, paymentH, cfg.JWTSecret)
	router.RegisterRevenue(e, revenueH, cfg.JWTSecret,
		middleware.NewRedisCache(cacheCfg.WithKeyStrategy("user_route_query"), rdb, logger),
		middleware.NewRedisCache(cacheCfg, rdb, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port, // Address string with port
		Handler:           e,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", "err", err)
		return err
	}
	return nil
}
