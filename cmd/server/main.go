package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/application/audit"
	billingapp "github.com/invoicehub/backend/internal/application/billing"
	catalogapp "github.com/invoicehub/backend/internal/application/catalog"
	companyapp "github.com/invoicehub/backend/internal/application/company"
	financeapp "github.com/invoicehub/backend/internal/application/finance"
	identityapp "github.com/invoicehub/backend/internal/application/identity"
	partnerapp "github.com/invoicehub/backend/internal/application/partner"
	reportapp "github.com/invoicehub/backend/internal/application/report"
	timesheetapp "github.com/invoicehub/backend/internal/application/timesheet"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
	"github.com/invoicehub/backend/internal/infrastructure/cache"
	"github.com/invoicehub/backend/internal/infrastructure/config"
	"github.com/invoicehub/backend/internal/infrastructure/event"
	"github.com/invoicehub/backend/internal/infrastructure/logger"
	"github.com/invoicehub/backend/internal/infrastructure/mail"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
	"github.com/invoicehub/backend/internal/infrastructure/printing"
	"github.com/invoicehub/backend/internal/infrastructure/scheduler"
	"github.com/invoicehub/backend/internal/infrastructure/storage"
	"github.com/invoicehub/backend/internal/infrastructure/telemetry"
	"github.com/invoicehub/backend/internal/interfaces/http/handler"
	"github.com/invoicehub/backend/internal/interfaces/http/middleware"
	"github.com/invoicehub/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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

	log.Info("Starting InvoiceHub backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	// Initialize database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithOptions(&cfg.Database, persistence.Options{
		Logger:  gormLog,
		Tracing: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	templateRepo := persistence.NewGormRecurringTemplateRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	timeEntryRepo := persistence.NewGormTimeEntryRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)
	sequencer := persistence.NewGormNumberSequencer(db.DB)
	txRunner := persistence.NewGormTxRunner(db.DB)

	// Initialize supporting infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)

	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eventBus.Stop(stopCtx)
	}()

	// Audit trail consumes every domain event, deduplicated across
	// redeliveries through the idempotency store.
	idempotencyStore := cache.NewIdempotencyStore(&cfg.Redis, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Warn("Idempotency store close failed", zap.Error(err))
		}
	}()
	eventBus.Subscribe(event.NewIdempotentHandler(audit.NewTrailHandler(log), idempotencyStore, log))

	var mailer mail.Mailer
	if cfg.Mail.Enabled {
		mailer, err = mail.NewResendMailer(&cfg.Mail, log)
		if err != nil {
			log.Fatal("Failed to initialize mailer", zap.Error(err))
		}
		log.Info("Outbound mail enabled", zap.String("from", cfg.Mail.FromAddress))
	} else {
		mailer = mail.NewStubMailer()
		log.Info("Outbound mail disabled, using stub mailer")
	}

	var objectStorage financeapp.ObjectStorage
	if cfg.Storage.Enabled {
		objectStorage, err = storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		log.Info("Object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Info("Object storage disabled, using stub storage")
	}

	templateEngine, err := printing.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to initialize template engine", zap.Error(err))
	}

	var pdfRenderer printing.PDFRenderer
	if cfg.PDF.Enabled {
		pdfRenderer, err = printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.PDF.RenderTimeout,
			ChromePath:     cfg.PDF.ChromePath,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		log.Info("PDF rendering enabled")
	} else {
		pdfRenderer = printing.NewDisabledRenderer()
		log.Info("PDF rendering disabled")
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Warn("PDF renderer close failed", zap.Error(err))
		}
	}()

	// Initialize application services
	authService := identityapp.NewAuthService(userRepo, tenantRepo, companyRepo, jwtService, txRunner, log)
	customerService := partnerapp.NewCustomerService(customerRepo)
	customerImportService := partnerapp.NewCustomerImportService(customerRepo, customerService)
	productService := catalogapp.NewProductService(productRepo)
	companyService := companyapp.NewCompanyService(companyRepo)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, customerRepo, companyRepo, sequencer, txRunner)
	paymentService := billingapp.NewPaymentService(paymentRepo, invoiceRepo, customerRepo, sequencer, txRunner)
	quoteService := billingapp.NewQuoteService(quoteRepo, invoiceRepo, customerRepo, companyRepo, sequencer, txRunner)
	pdfService := billingapp.NewPDFService(invoiceRepo, quoteRepo, companyRepo, customerRepo, templateEngine, pdfRenderer)
	sendService := billingapp.NewSendService(invoiceRepo, customerRepo, companyRepo, pdfService, mailer, log)
	portalService := billingapp.NewPortalService(invoiceRepo, log)
	recurringService := billingapp.NewRecurringService(templateRepo, invoiceRepo, customerRepo, companyRepo, sequencer, txRunner, log)
	expenseService := financeapp.NewExpenseService(expenseRepo, customerRepo, sequencer, txRunner, objectStorage)
	timeEntryService := timesheetapp.NewTimeEntryService(timeEntryRepo, customerRepo)
	dashboardService := reportapp.NewDashboardService(dashboardRepo, invoiceRepo, expenseRepo, timeEntryRepo)

	customerService.SetEventBus(eventBus)
	invoiceService.SetEventBus(eventBus)
	paymentService.SetEventBus(eventBus)
	quoteService.SetEventBus(eventBus)
	recurringService.SetDispatcher(sendService)

	if cfg.Scheduler.Enabled {
		recurringScheduler := scheduler.NewRecurringScheduler(scheduler.RecurringSchedulerConfig{
			DailyHour:     cfg.Scheduler.DailyHour,
			DailyMinute:   cfg.Scheduler.DailyMinute,
			CheckInterval: cfg.Scheduler.CheckInterval,
		}, tenantRepo, recurringService, log)
		if err := recurringScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start recurring scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := recurringScheduler.Stop(stopCtx); err != nil {
				log.Warn("Recurring scheduler stop failed", zap.Error(err))
			}
		}()
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	customerHandler := handler.NewCustomerHandler(customerService, customerImportService)
	productHandler := handler.NewProductHandler(productService)
	companyHandler := handler.NewCompanyHandler(companyService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, paymentService, sendService, pdfService, portalService)
	quoteHandler := handler.NewQuoteHandler(quoteService, pdfService)
	recurringHandler := handler.NewRecurringHandler(recurringService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	timeEntryHandler := handler.NewTimeEntryHandler(timeEntryService)
	portalHandler := handler.NewPortalHandler(portalService)
	reportHandler := handler.NewReportHandler(dashboardService)
	systemHandler := handler.NewSystemHandler()

	// Set gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	maxBody := cfg.HTTP.MaxBodySize
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}
	engine.Use(middleware.BodyLimit(maxBody))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Health endpoints outside the API version prefix
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/ready", readyHandler(db))

	// Register API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(authHandler).
		Register(customerHandler).
		Register(productHandler).
		Register(companyHandler).
		Register(invoiceHandler).
		Register(quoteHandler).
		Register(recurringHandler).
		Register(paymentHandler).
		Register(expenseHandler).
		Register(timeEntryHandler).
		Register(portalHandler).
		Register(reportHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// readyHandler reports whether the service can reach its database
func readyHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
