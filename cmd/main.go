package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-deposit-approval/internal/handlers"
	"github.com/sbilibin2017/gw-deposit-approval/internal/jwt"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/middlewares"
	"github.com/sbilibin2017/gw-deposit-approval/internal/receipts"
	"github.com/sbilibin2017/gw-deposit-approval/internal/repositories"
	"github.com/sbilibin2017/gw-deposit-approval/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-deposit-approval API
// @version 1.0.0
// @description Microservice for admin approval of funding requests with referral commissions
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// config holds all application settings.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	CacheTTL      time.Duration

	KafkaBrokers string
	KafkaTopic   string

	JWTSecretKey string
	JWTExp       time.Duration

	ReceiptDir string
}

// parseConfig loads environment variables from a file and returns the
// application, database, Redis, Kafka, logging, and JWT configuration.
func parseConfig(path string) (*config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getEnvInt := func(key string, defaultValue int) (int, error) {
		val := getEnv(key, strconv.Itoa(defaultValue))
		return strconv.Atoi(val)
	}

	cfg := &config{
		AppHost:       getEnv("APP_HOST", "localhost"),
		AppPort:       getEnv("APP_PORT", "8080"),
		LogLevel:      getEnv("APP_LOG_LEVEL", "info"),
		PGHost:        getEnv("POSTGRES_HOST", "localhost"),
		PGUser:        getEnv("POSTGRES_USER", "user"),
		PGPassword:    getEnv("POSTGRES_PASSWORD", "password"),
		PGDB:          getEnv("POSTGRES_DB", "database"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:  getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "wallet-transactions"),
		JWTSecretKey:  getEnv("JWT_SECRET_KEY", "my_super_secret_key"),
		ReceiptDir:    getEnv("RECEIPT_DIR", "/var/lib/gw-deposit-approval/receipts"),
	}

	var err error
	if cfg.PGPort, err = getEnvInt("POSTGRES_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.PGMaxOpenConns, err = getEnvInt("POSTGRES_MAX_OPEN_CONNS", 16); err != nil {
		return nil, err
	}
	if cfg.PGMaxIdleConns, err = getEnvInt("POSTGRES_MAX_IDLE_CONNS", 8); err != nil {
		return nil, err
	}
	if cfg.RedisPort, err = getEnvInt("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cacheTTLSecond, err := getEnvInt("CACHE_TTL_SECOND", 60)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(cacheTTLSecond) * time.Second

	jwtExpSecond, err := getEnvInt("JWT_EXP_SECOND", 3600)
	if err != nil {
		return nil, err
	}
	cfg.JWTExp = time.Duration(jwtExpSecond) * time.Second

	return cfg, nil
}

// run initializes the logger, database, Redis, Kafka writer, and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg *config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	logger.Log.Infof("Connecting to PostgreSQL at %s:%d", cfg.PGHost, cfg.PGPort)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Fatal("PostgreSQL connection error:", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Fatal("PostgreSQL ping failed:", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Fatal("Redis connection error:", err)
	}
	defer rdb.Close()

	// Kafka writer for transaction events, optional
	var kafkaWriter *kafka.Writer
	if cfg.KafkaBrokers != "" {
		kafkaWriter = &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer kafkaWriter.Close()
	}

	// Initialize JWT service
	jwtService := jwt.New(cfg.JWTSecretKey, cfg.JWTExp)

	// Initialize repositories
	txGetter := middlewares.GetTxFromContext
	depositReadRepo := repositories.NewDepositReadRepository(db, txGetter)
	depositWriteRepo := repositories.NewDepositWriteRepository(db, txGetter)
	walletRepo := repositories.NewWalletRepository(db, txGetter)
	txnWriteRepo := repositories.NewTransactionWriteRepository(db, txGetter)
	txnReadRepo := repositories.NewTransactionReadRepository(db)
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	statsRepo := repositories.NewStatsRepository(db)

	// Initialize services
	cache := services.NewWalletCache(rdb, cfg.CacheTTL)
	events := services.NewEventService(nil)
	if kafkaWriter != nil {
		events = services.NewEventService(kafkaWriter)
	}
	receiptStore := receipts.New(cfg.ReceiptDir)

	ledgerService := services.NewLedgerService(db, walletRepo, txnWriteRepo, txnReadRepo, events, cache)
	commissionService := services.NewCommissionService(userReadRepo)
	approvalService := services.NewApprovalService(
		db, depositReadRepo, depositWriteRepo, ledgerService,
		commissionService, receiptStore, events, cache,
	)
	depositService := services.NewDepositService(depositWriteRepo, depositReadRepo)
	walletService := services.NewWalletService(walletRepo, txnReadRepo, cache)
	statsService := services.NewStatsService(statsRepo, walletRepo, txnReadRepo, cache)
	authService := services.NewAuthService(userReadRepo, userWriteRepo, walletRepo, jwtService)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	submitDepositHandler := handlers.NewSubmitDepositHandler(depositService, jwtService)
	balanceHandler := handlers.NewGetBalanceHandler(walletService, jwtService)
	historyHandler := handlers.NewHistoryHandler(walletService, jwtService)
	approveHandler := handlers.NewApproveHandler(approvalService)
	rejectHandler := handlers.NewRejectHandler(approvalService)
	pendingHandler := handlers.NewPendingDepositsHandler(depositService)
	adjustmentHandler := handlers.NewAdjustmentHandler(ledgerService)
	statsHandler := handlers.NewStatsHandler(statsService)
	reconcileHandler := handlers.NewReconcileHandler(statsService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	// Public routes
	r.Post("/register", registerHandler)
	r.Post("/login", loginHandler)

	// Authenticated user routes
	r.Group(func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(jwtService))
		r.Post("/deposits", submitDepositHandler)
		r.Get("/balance", balanceHandler)
		r.Get("/transactions", historyHandler)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middlewares.AdminMiddleware(jwtService))
		r.Get("/admin/deposits", pendingHandler)
		r.Post("/admin/deposits/{depositID}/approve", approveHandler)
		r.Post("/admin/deposits/{depositID}/reject", rejectHandler)
		r.Post("/admin/wallets/{userID}/adjustment", adjustmentHandler)
		r.Get("/admin/wallets/{userID}/reconcile", reconcileHandler)
		r.Get("/admin/stats", statsHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
