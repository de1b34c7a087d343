package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	storefrontserver "github.com/Apurer/go-gin-storefront/go"
	paymentsclient "github.com/Apurer/go-gin-storefront/internal/clients/http/payments"

	cartmemory "github.com/Apurer/go-gin-storefront/internal/domains/cart/adapters/memory"
	cartpostgres "github.com/Apurer/go-gin-storefront/internal/domains/cart/adapters/persistence/postgres"
	cartapp "github.com/Apurer/go-gin-storefront/internal/domains/cart/application"
	cartports "github.com/Apurer/go-gin-storefront/internal/domains/cart/ports"
	catalogmemory "github.com/Apurer/go-gin-storefront/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-gin-storefront/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-gin-storefront/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
	identitymemory "github.com/Apurer/go-gin-storefront/internal/domains/identity/adapters/memory"
	identitypostgres "github.com/Apurer/go-gin-storefront/internal/domains/identity/adapters/persistence/postgres"
	identityapp "github.com/Apurer/go-gin-storefront/internal/domains/identity/application"
	identityports "github.com/Apurer/go-gin-storefront/internal/domains/identity/ports"
	paymentsgateway "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/external/payments"
	ordersmemory "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/memorydb"
	"github.com/Apurer/go-gin-storefront/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-storefront/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-storefront/internal/platform/postgres"
)

const serviceName = "storefront-api"

// Stores groups the outbound persistence adapters of every bounded context.
type Stores struct {
	Catalog catalogports.Repository
	Cart    cartports.Repository
	Orders  ordersports.Repository
	// Idempotency replays checkouts retried with the same Idempotency-Key.
	Idempotency ordersports.IdempotencyStore
	Sessions    identityports.SessionStore
}

// Run boots the storefront HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer platformobservability.Shutdown(instruments, shutdown)
	logger := instruments.Logger

	stores, cleanupStores, err := BuildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupStores()

	if cfg.AuthStaticTokens != "" {
		seeded, err := identityapp.SeedStaticTokens(ctx, stores.Sessions, cfg.AuthStaticTokens)
		if err != nil {
			return fmt.Errorf("failed to seed AUTH_STATIC_TOKENS: %w", err)
		}
		logger.Info("static sessions seeded", slog.Int("count", seeded))
	}

	orderOpts := []ordersapp.Option{ordersapp.WithIdempotencyStore(stores.Idempotency)}
	if gateway, err := BuildPaymentGateway(cfg); err != nil {
		return err
	} else if gateway != nil {
		orderOpts = append(orderOpts, ordersapp.WithPaymentGateway(gateway))
		logger.Info("payment gateway configured", slog.String("baseURL", cfg.PaymentsBaseURL))
	} else {
		logger.Warn("PAYMENTS_BASE_URL not set, ONLINE checkouts will be rejected")
	}
	if temporalClient, err := ConnectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running ONLINE checkout inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderOpts = append(orderOpts, ordersapp.WithOnlineCheckout(ordersworkflows.NewTemporalOrderWorkflows(temporalClient)))
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	orderService := ordersobs.New(
		ordersapp.NewService(stores.Orders, orderOpts...),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	handlers := storefrontserver.ApiHandleFunctions{
		OrdersAPI:     storefrontserver.NewOrdersAPI(orderService),
		CartAPI:       storefrontserver.NewCartAPI(cartapp.NewService(stores.Cart)),
		CatalogAPI:    storefrontserver.NewCatalogAPI(catalogapp.NewService(stores.Catalog)),
		Authenticator: identityapp.NewService(stores.Sessions),
	}

	engine := gin.Default()
	engine.Use(otelgin.Middleware(serviceName))
	router := storefrontserver.NewRouterWithGinEngine(engine, handlers)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("storefront API listening", slog.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("storefront API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), platformobservability.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down storefront API")
		return srv.Shutdown(shutdownCtx)
	}
}

// BuildStores wires PostgreSQL adapters when POSTGRES_DSN is reachable and falls back to memory.
func BuildStores(ctx context.Context, cfg Config, logger *slog.Logger) (*Stores, func(), error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return memoryStores(), func() {}, nil
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return memoryStores(), func() {}, nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return memoryStores(), func() {}, nil
	}
	cleanup := func() { _ = sqlDB.Close() }
	if cfg.RunMigrations {
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("database schema migrated")
	}
	logger.Info("repositories configured with postgres")
	return postgresStores(db, cfg), cleanup, nil
}

func memoryStores() *Stores {
	db := memorydb.New()
	return &Stores{
		Catalog:     catalogmemory.NewRepository(db),
		Cart:        cartmemory.NewRepository(db),
		Orders:      ordersmemory.NewRepository(db),
		Idempotency: ordersmemory.NewIdempotencyStore(),
		Sessions:    identitymemory.NewSessionStore(),
	}
}

func postgresStores(db *gorm.DB, cfg Config) *Stores {
	return &Stores{
		Catalog:     catalogpostgres.NewRepository(db),
		Cart:        cartpostgres.NewRepository(db),
		Orders:      orderspostgres.NewRepository(db),
		Idempotency: orderspostgres.NewIdempotencyStore(db),
		Sessions:    identitypostgres.NewSessionStore(db, cfg.SessionTTL),
	}
}

// BuildPaymentGateway returns nil when no payment provider is configured.
func BuildPaymentGateway(cfg Config) (ordersports.PaymentGateway, error) {
	if cfg.PaymentsBaseURL == "" {
		return nil, nil
	}
	var opts []paymentsclient.Option
	if cfg.PaymentsAPIKey != "" {
		opts = append(opts, paymentsclient.WithAPIKey(cfg.PaymentsAPIKey))
	}
	c, err := paymentsclient.NewClient(cfg.PaymentsBaseURL, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure payments client: %w", err)
	}
	return paymentsgateway.NewGateway(c, cfg.PaymentsCurrency), nil
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
