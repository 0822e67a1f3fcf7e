package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fooddelivery/api"
	apicart "fooddelivery/api/cart"
	"fooddelivery/api/health"
	apiorder "fooddelivery/api/order"
	apipayment "fooddelivery/api/payment"
	cartapp "fooddelivery/application/cart"
	orderapp "fooddelivery/application/order"
	"fooddelivery/config"
	"fooddelivery/domain/address"
	"fooddelivery/domain/cart"
	"fooddelivery/domain/catalog"
	"fooddelivery/domain/order"
	"fooddelivery/domain/payment"
	"fooddelivery/domain/shared"
	"fooddelivery/infrastructure/cache"
	"fooddelivery/infrastructure/messaging"
	paymentgw "fooddelivery/infrastructure/payment"
	"fooddelivery/infrastructure/persistence/fixtures"
	"fooddelivery/infrastructure/persistence/mocks"
	"fooddelivery/infrastructure/persistence/mysql"
	"fooddelivery/infrastructure/persistence/mysql/po"
	"fooddelivery/infrastructure/persistence/retry"
	"fooddelivery/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppBuilder builds an App with customizable components
type AppBuilder struct {
	cfg          *config.Config
	middlewares  []api.MiddlewareRegister
	customRoutes []api.Route
	gateway      payment.Gateway
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{
		cfg:          cfg,
		middlewares:  []api.MiddlewareRegister{},
		customRoutes: []api.Route{},
	}
}

// WithMiddleware adds a middleware to the app
func (b *AppBuilder) WithMiddleware(m api.MiddlewareRegister) *AppBuilder {
	b.middlewares = append(b.middlewares, m)
	return b
}

// WithRoute adds a custom route
func (b *AppBuilder) WithRoute(method, path string, handler gin.HandlerFunc) *AppBuilder {
	b.customRoutes = append(b.customRoutes, api.Route{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
	return b
}

// WithGateway replaces the configured payment provider. The retry decorator
// is still applied.
func (b *AppBuilder) WithGateway(g payment.Gateway) *AppBuilder {
	b.gateway = g
	return b
}

// persistence is the storage side of the app, either in memory or on gorm.
type persistence struct {
	db        *gorm.DB
	cartRepo  cart.Repository
	orderRepo order.Repository
	catalog   catalog.Repository
	addresses address.Repository
	uow       shared.UnitOfWorkFactory
}

// coordination holds the cart lock and the webhook deduplicator.
type coordination struct {
	locker orderapp.Locker
	dedup  orderapp.Deduplicator
}

// Build creates the App instance. The logger must be initialized.
func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env))

	app := &App{config: b.cfg}
	checks := map[string]health.Checker{}
	gauges := map[string]health.Gauge{}

	// in-memory mode forwards events directly; gorm mode relays them from
	// the outbox, in-process only when the worker is enabled
	var publisher BrokerPublisher
	if b.cfg.Database.Type == "mock" || b.cfg.Worker.Enabled {
		p, err := NewBrokerPublisher(b.cfg)
		if err != nil {
			return nil, err
		}
		publisher = p
		app.closers = append(app.closers, publisher.Close)
	}

	store, err := b.initPersistence(ctx, publisher)
	if err != nil {
		app.close()
		return nil, err
	}
	if store.db != nil {
		db := store.db
		checks["database"] = func(ctx context.Context) error { return mysql.Ping(ctx, db) }
		outbox := mysql.NewOutboxRepository(db)
		gauges["outbox_pending"] = func(ctx context.Context) (int64, error) {
			return outbox.CountByStatus(ctx, po.EventStatusPending)
		}
		gauges["outbox_failed"] = func(ctx context.Context) (int64, error) {
			return outbox.CountByStatus(ctx, po.EventStatusFailed)
		}
		app.closers = append(app.closers, func() error { return closeDB(db) })
		if publisher != nil {
			worker, err := mysql.NewOutboxRelay(outbox, publisher, RelayOptions(b.cfg))
			if err != nil {
				app.close()
				return nil, fmt.Errorf("failed to create outbox relay: %w", err)
			}
			app.worker = worker
		}
	}

	coord, err := b.initCoordination(ctx, app, checks)
	if err != nil {
		app.close()
		return nil, err
	}

	gateway, err := b.initGateway()
	if err != nil {
		app.close()
		return nil, err
	}

	cartService := cartapp.NewApplicationService(store.cartRepo, store.catalog, store.uow, coord.locker)
	orderService := orderapp.NewApplicationService(orderapp.Dependencies{
		OrderRepo:   store.orderRepo,
		CartRepo:    store.cartRepo,
		Catalog:     store.catalog,
		DomainSvc:   order.NewDomainService(store.catalog, store.addresses),
		Gateway:     gateway,
		UoWFactory:  store.uow,
		Locker:      coord.locker,
		Deduplicate: coord.dedup,
	}, orderapp.Options{
		CheckoutTimeout: checkoutTimeout(&b.cfg.Payment),
	})

	if b.cfg.Database.Type == "mock" || b.cfg.Database.SeedCatalog {
		for _, userID := range fixtures.Customers() {
			if _, err := cartService.ProvisionCart(ctx, userID); err != nil {
				app.close()
				return nil, fmt.Errorf("failed to provision demo cart for user %d: %w", userID, err)
			}
		}
	}

	cartController := apicart.NewController(cartService)
	orderController := apiorder.NewController(orderService)
	controllers := api.Controllers{
		Public: []api.ControllerRegister{
			health.NewController(b.cfg, checks, gauges),
			apipayment.NewController(orderService, paymentgw.NewWebhookVerifier(b.cfg.Payment.WebhookSecret)),
		},
		Authenticated: []api.ControllerRegister{cartController, orderController},
		Admin:         []api.AdminRegister{cartController, orderController},
	}

	router := api.NewRouter(b.cfg, controllers, b.middlewares, b.customRoutes)
	router.SetupRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}
	return app, nil
}

func (b *AppBuilder) initPersistence(ctx context.Context, publisher messaging.Publisher) (*persistence, error) {
	if b.cfg.Database.Type == "mock" {
		logger.Info("Using in-memory persistence layer")
		bus := shared.NewEventBus()
		if err := messaging.NewEventForwarder(publisher).Subscribe(bus, NotificationEvents...); err != nil {
			return nil, err
		}
		return &persistence{
			cartRepo:  mocks.NewMockCartRepository(),
			orderRepo: mocks.NewMockOrderRepository(),
			catalog:   mocks.NewMockCatalogRepository(),
			addresses: mocks.NewMockAddressRepository(),
			uow:       mocks.NewMockUnitOfWorkFactory(bus),
		}, nil
	}

	logger.Info("Using GORM persistence layer", zap.String("driver", b.cfg.Database.Type))
	db, err := NewMySQLConfig(b.cfg).Connect()
	if err != nil {
		return nil, err
	}

	if err := prepareDatabase(ctx, b.cfg, db); err != nil {
		_ = closeDB(db)
		return nil, err
	}

	return &persistence{
		db:        db,
		cartRepo:  mysql.NewCartRepository(db),
		orderRepo: mysql.NewOrderRepository(db),
		catalog:   mysql.NewCatalogRepository(db),
		addresses: mysql.NewAddressRepository(db),
		uow:       mysql.NewUnitOfWorkFactory(db, retry.FromAppConfig(b.cfg)),
	}, nil
}

func prepareDatabase(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mysql.Ping(pingCtx, db); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := mysql.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}
	if cfg.Database.SeedCatalog {
		if err := mysql.SeedCatalog(ctx, db); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}
	return nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *AppBuilder) initCoordination(ctx context.Context, app *App, checks map[string]health.Checker) (*coordination, error) {
	if !b.cfg.Redis.Enabled {
		logger.Info("Using in-process cart locks and webhook deduplication")
		return &coordination{
			locker: cache.NewMemoryLocker(),
			dedup:  cache.NewMemoryDeduplicator(b.cfg.Redis.DedupTTL),
		}, nil
	}

	rdb, err := cache.NewClient(ctx, b.cfg.Redis.Addr, b.cfg.Redis.Password, b.cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, rdb.Close)
	checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	logger.Info("Using Redis cart locks and webhook deduplication", zap.String("addr", b.cfg.Redis.Addr))

	return &coordination{
		locker: cache.NewRedisLocker(rdb, b.cfg.Redis.LockTTL),
		dedup:  cache.NewRedisDeduplicator(rdb, b.cfg.Redis.DedupTTL),
	}, nil
}

func (b *AppBuilder) initGateway() (payment.Gateway, error) {
	pc := b.cfg.Payment
	gateway := b.gateway
	if gateway == nil {
		switch pc.Provider {
		case "http":
			g, err := paymentgw.NewHTTPGateway(paymentgw.HTTPConfig{
				BaseURL:    pc.BaseURL,
				APIKey:     pc.APIKey,
				SuccessURL: pc.SuccessURL,
				CancelURL:  pc.CancelURL,
				Currency:   pc.Currency,
				Timeout:    pc.Timeout,
			})
			if err != nil {
				return nil, err
			}
			gateway = g
		default:
			gateway = paymentgw.NewSandboxGateway(pc.BaseURL)
		}
	}
	logger.Info("Payment gateway ready",
		zap.String("provider", pc.Provider),
		zap.Int("max_attempts", pc.MaxAttempts))
	return paymentgw.NewRetryingGateway(gateway, pc.MaxAttempts, pc.InitialBackoff, pc.MaxBackoff), nil
}

// checkoutTimeout covers every attempt plus the backoff between them.
func checkoutTimeout(pc *config.PaymentConfig) time.Duration {
	attempts := pc.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(attempts)*pc.Timeout + time.Duration(attempts-1)*pc.MaxBackoff
}
