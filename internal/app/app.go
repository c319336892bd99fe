// Package app wires the kart server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-pricing/internal/domain/product"
	"github.com/xenking/kart-pricing/internal/handler"
	"github.com/xenking/kart-pricing/internal/sale"
	"github.com/xenking/kart-pricing/internal/session"
	"github.com/xenking/kart-pricing/internal/storage/postgres"
	"github.com/xenking/kart-pricing/internal/storage/seedfile"
	"github.com/xenking/kart-pricing/pkg/health"
	"github.com/xenking/kart-pricing/pkg/httpmiddleware"
)

// Run loads the catalog, starts the session, the sale simulator and the HTTP
// server, and shuts them down when ctx is cancelled.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("catalog.source", cfg.Catalog.Source),
	)

	healthSvc := health.New()

	products, closeCatalog, err := loadCatalog(ctx, cfg.Catalog, healthSvc)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	defer closeCatalog()
	lg.Info("Catalog loaded", zap.Int("products", len(products)))

	sess, err := session.New(products, session.Options{
		MeterProvider: m.MeterProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create session")
	}
	lg.Info("Session started", zap.String("session_id", sess.ID()))

	healthSvc.AddReadinessCheck("catalog", time.Second, health.MinCountCheck("catalog", 1, func() int {
		return len(sess.Snapshot().Products)
	}))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc", time.Second, health.GCMaxPauseCheck(time.Second))

	limiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(sess).Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", httpmiddleware.HeaderRequestID},
				ExposeHeaders:    []string{httpmiddleware.HeaderRequestID},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			limiter.Middleware(),
			httpmiddleware.Instrument("kart-api", routeFinder, m.MeterProvider(), m.TracerProvider()),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	g, ctx := errgroup.WithContext(ctx)

	healthSvc.Start(ctx, 10*time.Second)
	g.Go(func() error {
		limiter.Run(ctx)
		return nil
	})
	if cfg.Sale.Enabled {
		sim := sale.New(sess, sale.Options{
			Config: saleConfig(cfg.Sale),
			OnSale: announce(lg),
		})
		g.Go(func() error {
			return sim.Run(ctx)
		})
	}
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		defer healthSvc.Stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	healthSvc.SetReady(true)

	return g.Wait()
}

// loadCatalog reads the starting products from the configured source. The
// postgres source keeps its pool open for a readiness check until the
// returned close func is called.
func loadCatalog(ctx context.Context, cfg CatalogConfig, h *health.Health) (_ []product.Product, closeFn func(), err error) {
	closeFn = func() {}

	var repo product.Repository
	switch cfg.Source {
	case SourceFile:
		repo = seedfile.NewRepository(cfg.Path)
	case SourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, closeFn, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, closeFn, errors.Wrap(err, "run migrations")
		}
		h.AddReadinessCheck("postgres", 5*time.Second, pool.Ping)
		repo = postgres.NewCatalogRepository(pool)
		closeFn = pool.Close
	default:
		repo = product.NewStaticRepository(product.DefaultCatalog())
	}

	products, err := repo.List(ctx)
	if err == nil && len(products) == 0 {
		err = errors.Errorf("%s catalog is empty", cfg.Source)
	}
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return products, closeFn, nil
}

func saleConfig(c SaleConfig) sale.Config {
	return sale.Config{
		LightningRate:     decimal.NewFromFloat(c.LightningRate),
		LightningDuration: c.LightningDuration,
		LightningMaxDelay: c.LightningMaxDelay,
		LightningInterval: c.LightningInterval,
		SuggestRate:       decimal.NewFromFloat(c.SuggestRate),
		SuggestDelay:      c.SuggestDelay,
		SuggestInterval:   c.SuggestInterval,
	}
}

// announce logs sale events the way the storefront would pop them up.
func announce(lg *zap.Logger) func(sale.Event) {
	return func(e sale.Event) {
		lg.Info(e.Message(),
			zap.Stringer("kind", e.Kind),
			zap.String("product_id", e.Product.ID),
			zap.String("price", e.Product.Price.String()),
			zap.Int64("percent", e.Percent),
		)
	}
}
