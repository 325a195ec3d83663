package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	creditapp "github.com/afyapos/backend/internal/application/credit"
	inventoryapp "github.com/afyapos/backend/internal/application/inventory"
	payapp "github.com/afyapos/backend/internal/application/payment"
	salesapp "github.com/afyapos/backend/internal/application/sales"
	"github.com/afyapos/backend/internal/domain/payment"
	"github.com/afyapos/backend/internal/domain/sales"
	"github.com/afyapos/backend/internal/infrastructure/auth"
	"github.com/afyapos/backend/internal/infrastructure/cache"
	"github.com/afyapos/backend/internal/infrastructure/config"
	"github.com/afyapos/backend/internal/infrastructure/event"
	"github.com/afyapos/backend/internal/infrastructure/logger"
	mpesagw "github.com/afyapos/backend/internal/infrastructure/payment"
	"github.com/afyapos/backend/internal/infrastructure/persistence"
	"github.com/afyapos/backend/internal/infrastructure/scheduler"
	"github.com/afyapos/backend/internal/infrastructure/telemetry"
	"github.com/afyapos/backend/internal/interfaces/http/handler"
	"github.com/afyapos/backend/internal/interfaces/http/middleware"
	"github.com/afyapos/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting AfyaPOS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry: traces, metrics and the log bridge share the collector
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logs provider", zap.Error(err))
	}
	defer func() {
		if err := logsProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logs provider", zap.Error(err))
		}
	}()
	log = telemetry.BridgeZapLogger(log, logsProvider, cfg.Telemetry.ServiceName)

	var posMetrics *telemetry.PosMetrics
	if meterProvider.IsEnabled() {
		posMetrics, err = telemetry.NewPosMetrics(meterProvider.Meter("afyapos"), log)
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Transaction scopes, one per aggregate family
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	salesScope := persistence.NewGormSalesTransactionScope(db.DB)
	creditScope := persistence.NewGormCreditTransactionScope(db.DB)
	paymentScope := persistence.NewGormPaymentTransactionScope(db.DB)

	// M-Pesa gateway and callback dedup store. A nil gateway leaves STK
	// push rejected with MPESA_NOT_CONFIGURED; callbacks and queries
	// still work.
	var gateway payment.Gateway
	if cfg.Mpesa.ConsumerKey != "" {
		adapter, err := mpesagw.NewDarajaAdapter(&mpesagw.DarajaConfig{
			Env:            cfg.Mpesa.Env,
			ConsumerKey:    cfg.Mpesa.ConsumerKey,
			ConsumerSecret: cfg.Mpesa.ConsumerSecret,
			ShortCode:      cfg.Mpesa.ShortCode,
			Passkey:        cfg.Mpesa.Passkey,
			CallbackURL:    cfg.Mpesa.CallbackURL,
			Timeout:        cfg.Mpesa.RequestTimeout,
		})
		if err != nil {
			log.Fatal("Invalid M-Pesa configuration", zap.Error(err))
		}
		gateway = adapter
		log.Info("M-Pesa gateway configured", zap.String("env", cfg.Mpesa.Env))
	} else {
		log.Warn("M-Pesa gateway not configured, STK push disabled")
	}

	var dedup payapp.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Mpesa.CallbackRetention)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory callback dedup", zap.Error(err))
		dedup = cache.NewInMemoryIdempotencyStore(cfg.Mpesa.CallbackRetention)
	} else {
		defer func() {
			_ = redisStore.Close()
		}()
		dedup = redisStore
		log.Info("Redis callback dedup store connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Application services
	ledgerService := inventoryapp.NewLedgerService(inventoryScope)
	ledgerService.SetProductRepository(persistence.NewGormProductRepository(db.DB))

	taxSettings := sales.TaxSettings{
		Rate:      decimal.NewFromFloat(cfg.Tax.Rate),
		Inclusive: cfg.Tax.Inclusive,
	}
	saleService := salesapp.NewSaleService(salesScope, ledgerService, taxSettings)

	commissionPolicy, err := sales.NewPercentOfProfitPolicy(decimal.NewFromFloat(cfg.Tax.CommissionRate))
	if err != nil {
		log.Fatal("Invalid commission rate", zap.Error(err))
	}
	commissionService := salesapp.NewCommissionService(salesScope, commissionPolicy)

	returnService := salesapp.NewReturnService(salesScope, ledgerService)
	editService := salesapp.NewEditService(salesScope, ledgerService)
	creditService := creditapp.NewCreditService(creditScope)

	mpesaService := payapp.NewMpesaService(paymentScope, gateway, dedup)

	// Domain event bus with a logging subscriber
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLoggingHandler(log.Named("events")))
	ledgerService.SetEventPublisher(eventBus)
	saleService.SetEventPublisher(eventBus)
	returnService.SetEventPublisher(eventBus)
	editService.SetEventPublisher(eventBus)
	creditService.SetEventPublisher(eventBus)
	mpesaService.SetEventPublisher(eventBus)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Overdue credit sweep scheduler
	if cfg.Scheduler.Enabled {
		cronHour, cronMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.OverdueCronSchedule)
		if err != nil {
			log.Fatal("Invalid overdue cron schedule", zap.Error(err))
		}
		overdueScheduler := scheduler.NewOverdueCronScheduler(scheduler.OverdueCronSchedulerConfig{
			Enabled:    true,
			CronHour:   cronHour,
			CronMinute: cronMinute,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, creditService, log)
		if err := overdueScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start overdue scheduler", zap.Error(err))
		}
		defer func() {
			if err := overdueScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping overdue scheduler", zap.Error(err))
			}
		}()
		log.Info("Overdue credit scheduler started",
			zap.Int("hour", cronHour),
			zap.Int("minute", cronMinute),
		)
	}

	// HTTP handlers
	inventoryHandler := handler.NewInventoryHandler(ledgerService)
	inventoryHandler.SetMetrics(posMetrics)
	saleHandler := handler.NewSaleHandler(saleService, commissionService)
	saleHandler.SetMetrics(posMetrics)
	returnHandler := handler.NewReturnHandler(returnService)
	editHandler := handler.NewEditHandler(editService)
	editHandler.SetMetrics(posMetrics)
	creditHandler := handler.NewCreditHandler(creditService)
	mpesaHandler := handler.NewMpesaHandler(mpesaService)
	mpesaHandler.SetMetrics(posMetrics)
	systemHandler := handler.NewSystemHandler(db.DB, version)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Probes sit at the engine root, outside API versioning and JWT auth
	systemHandler.RegisterRoutes(engine.Group(""))

	// Gateway callback is registered before JWT so it stays public; the
	// middleware also skips its path by prefix
	mpesaHandler.RegisterCallbackRoutes(engine.Group("/api/v1"))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	engine.Use(middleware.TracingAttributeInjector())

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(inventoryHandler).
		Register(saleHandler).
		Register(returnHandler).
		Register(editHandler).
		Register(creditHandler).
		Register(mpesaHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
