package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cache"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cartrepo"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cartstore"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/events"
	h "github.com/FullStackParihar/navodya-backend-sub000/internal/http"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/order"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/payment"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/pricing"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/repository"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/telemetry"
)

type Config struct {
	HTTPPort        string
	JWTSecret       string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	KafkaBrokers    string
	GatewayBaseURL  string
	GatewayAPIKey   string
	Currency        string
	Postgres        repository.Credentials
	Pricing         pricing.Config
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "storefront"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
		GatewayBaseURL: getEnv("PAYMENT_GATEWAY_URL", ""),
		GatewayAPIKey:  getEnv("PAYMENT_GATEWAY_API_KEY", ""),
		Currency:       getEnv("CURRENCY", "inr"),
		Postgres: repository.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnvInt("POSTGRES_PORT", 5432),
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "storefront"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		Pricing: pricing.Config{
			FreeShippingThreshold: int64(getEnvInt("FREE_SHIPPING_THRESHOLD", 1000)),
			ShippingFee:           int64(getEnvInt("SHIPPING_FEE", 99)),
			TaxRateBps:            getEnvInt("TAX_RATE_BPS", 1800),
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	telemetry.InitLogger()
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, "storefront")
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}

	// Durable carts for authenticated users.
	mongoDB, err := cartrepo.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	cartRepo := cartrepo.NewMongoRepository(mongoDB)
	if err := cartRepo.CreateIndexes(ctx); err != nil {
		log.Fatalf("failed to create cart indexes: %v", err)
	}

	// Snapshot cache for guest carts.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	snapshots := cache.NewRedisCache(redisClient)

	carts := cartstore.NewManager(cartRepo, snapshots)

	// Orders, payment transactions and coupons share one Postgres pool.
	repo, err := repository.NewRepository(&cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer repo.Close()
	if err := repo.RunMigrations(&cfg.Postgres); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()

	// Without gateway credentials every checkout runs in degraded mode: the
	// pipeline still produces orders, it just never charges anyone.
	var gateway payment.Gateway
	if cfg.GatewayBaseURL != "" && cfg.GatewayAPIKey != "" {
		gateway = payment.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewayAPIKey)
	} else {
		log.Println("payment gateway not configured, running degraded")
	}

	resolver := pricing.NewResolver(repo)
	orchestrator := payment.NewOrchestrator(carts, resolver, repo, gateway, cfg.Pricing, cfg.Currency)
	finalizer := order.NewFinalizer(repo, repo, carts, publisher)

	router := h.NewRouter(
		[]byte(cfg.JWTSecret),
		h.NewCartHandler(carts),
		h.NewCheckoutHandler(orchestrator, finalizer, repo),
		h.NewOrdersHandler(repo, finalizer),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	if shutdownTracer != nil {
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}

	log.Println("server exited")
}
