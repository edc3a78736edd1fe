// Package app wires configuration, storage, synchronisation and the HTTP
// router into one runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sppg-kitchen-api-server/config"
	"sppg-kitchen-api-server/internal/advisor"
	"sppg-kitchen-api-server/internal/api/handlers"
	"sppg-kitchen-api-server/internal/api/routes"
	"sppg-kitchen-api-server/internal/auth"
	"sppg-kitchen-api-server/internal/clock"
	"sppg-kitchen-api-server/internal/database"
	"sppg-kitchen-api-server/internal/distribution"
	"sppg-kitchen-api-server/internal/metrics"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/remotesync"
	"sppg-kitchen-api-server/internal/s3"
	"sppg-kitchen-api-server/internal/socket"
	"sppg-kitchen-api-server/internal/store"
	"sppg-kitchen-api-server/internal/store/local"
)

const shutdownTimeout = 15 * time.Second

// App owns every long-lived component of the server.
type App struct {
	Config  config.Config
	Log     *zap.Logger
	Clock   clock.Clock
	Metrics *metrics.Metrics
	Issuer  *auth.Issuer

	Local  *local.Store
	Remote remotesync.RowStore
	Syncer *remotesync.Syncer
	Hub    *socket.Hub
	Seed   database.Seed

	Photos       handlers.PhotoStore
	Advisor      *advisor.Advisor
	CancelPolicy distribution.CancelPolicy

	Stock         *store.Repository[models.StockItem]
	Transactions  *store.Repository[models.Transaction]
	MenuPlans     *store.Repository[models.MenuPlan]
	Procurements  *store.Repository[models.Procurement]
	Distributions *store.Repository[models.Distribution]
	Users         *store.Repository[models.User]
	Volunteers    *store.Repository[models.Volunteer]
	Serials       *store.Repository[models.SerialCounter]

	closeRemote func(context.Context) error
}

// New opens the configured remote store and builds the application. Nothing
// is loaded yet; call Load and then Bootstrap.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	remote, closeRemote, err := openRemote(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := build(ctx, cfg, remote, log)
	if err != nil {
		_ = closeRemote(ctx)
		return nil, err
	}
	a.closeRemote = closeRemote
	return a, nil
}

func openRemote(ctx context.Context, cfg config.Config) (remotesync.RowStore, func(context.Context) error, error) {
	switch cfg.Remote.Driver {
	case "mongo":
		m, err := database.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	case "postgres":
		p, err := database.OpenPostgres(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	return remotesync.Noop{}, func(context.Context) error { return nil }, nil
}

func build(ctx context.Context, cfg config.Config, remote remotesync.RowStore, log *zap.Logger) (*App, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("app: jwt.secret is required")
	}
	policy, err := distribution.ParseCancelPolicy(cfg.Distribution.CancelPolicy)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	seed, err := database.LoadSeed(cfg.Seed.File)
	if err != nil {
		return nil, err
	}
	photos, err := newPhotoStore(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	adv, err := newAdvisor(ctx, cfg.Gemini, log)
	if err != nil {
		return nil, err
	}

	localStore, err := local.Open(ctx, cfg.Local.Path, log.Named("local"))
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	a := &App{
		Config:       cfg,
		Log:          log,
		Clock:        clock.New(clock.LoadLocation(cfg.Distribution.Timezone)),
		Metrics:      m,
		Issuer:       auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.Expiration),
		Local:        localStore,
		Remote:       remote,
		Hub:          socket.NewHub(log),
		Seed:         seed,
		Photos:       photos,
		Advisor:      adv,
		CancelPolicy: policy,
		closeRemote:  func(context.Context) error { return nil },
	}
	a.Syncer = remotesync.New(remote, remotesync.Options{
		QueueSize: cfg.Sync.QueueSize,
		Interval:  cfg.Sync.Interval,
		Timeout:   cfg.Sync.Timeout,
	}, m, log)

	observers := []store.Observer{localStore.Mirror(), a.Syncer, a.Hub}
	a.Stock = store.NewRepository[models.StockItem](models.CollectionStock, observers...)
	a.Transactions = store.NewRepository[models.Transaction](models.CollectionTransactions, observers...)
	a.MenuPlans = store.NewRepository[models.MenuPlan](models.CollectionMenuPlans, observers...)
	a.Procurements = store.NewRepository[models.Procurement](models.CollectionProcurements, observers...)
	a.Distributions = store.NewRepository[models.Distribution](models.CollectionDistributions, observers...)
	a.Users = store.NewRepository[models.User](models.CollectionUsers, observers...)
	a.Volunteers = store.NewRepository[models.Volunteer](models.CollectionVolunteers, observers...)
	a.Serials = store.NewRepository[models.SerialCounter](models.CollectionSerials, observers...)
	return a, nil
}

func newPhotoStore(ctx context.Context, cfg config.S3Config) (handlers.PhotoStore, error) {
	if cfg.Bucket == "" {
		return s3.InlineStore{}, nil
	}
	u, err := s3.NewUploader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func newAdvisor(ctx context.Context, cfg config.GeminiConfig, log *zap.Logger) (*advisor.Advisor, error) {
	var gen advisor.Generator
	if cfg.APIKey != "" {
		g, err := advisor.NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		gen = g
	}
	return advisor.New(gen, log), nil
}

// collection binds one repository to the local and remote stores.
type collection struct {
	name       string
	fromLocal  func(context.Context) (int, error)
	fromRemote func(context.Context) (int, error)
	push       func(context.Context) (int, error)
}

func bind[T store.Entity](a *App, repo *store.Repository[T]) collection {
	return collection{
		name:       repo.Name(),
		fromLocal:  func(ctx context.Context) (int, error) { return local.Load(ctx, a.Local, repo) },
		fromRemote: func(ctx context.Context) (int, error) { return remotesync.Load(ctx, a.Remote, repo) },
		push:       func(ctx context.Context) (int, error) { return remotesync.Push(ctx, a.Remote, repo) },
	}
}

func (a *App) collections() []collection {
	return []collection{
		bind(a, a.Stock),
		bind(a, a.Transactions),
		bind(a, a.MenuPlans),
		bind(a, a.Procurements),
		bind(a, a.Distributions),
		bind(a, a.Users),
		bind(a, a.Volunteers),
		bind(a, a.Serials),
	}
}

// Load restores every collection from the local snapshot, then refreshes
// from the remote store. A local failure is fatal; a remote one is not.
func (a *App) Load(ctx context.Context) error {
	if err := a.LoadLocal(ctx); err != nil {
		return err
	}
	a.LoadRemote(ctx)
	return nil
}

func (a *App) LoadLocal(ctx context.Context) error {
	for _, c := range a.collections() {
		n, err := c.fromLocal(ctx)
		if err != nil {
			return err
		}
		a.Log.Debug("local snapshot loaded", zap.String("collection", c.name), zap.Int("records", n))
	}
	return nil
}

// LoadRemote replaces each collection with the remote copy, in parallel.
// Failures are logged and the server keeps running on local data.
func (a *App) LoadRemote(ctx context.Context) {
	if _, ok := a.Remote.(remotesync.Noop); ok {
		return
	}
	var g errgroup.Group
	for _, c := range a.collections() {
		g.Go(func() error {
			n, err := c.fromRemote(ctx)
			if err != nil {
				return err
			}
			a.Log.Info("remote collection loaded", zap.String("collection", c.name), zap.Int("records", n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.Log.Warn("remote load incomplete, continuing with local data",
			zap.String("remote", a.Remote.Name()), zap.Error(err))
	}
}

// Bootstrap seeds the master administrator and the initial inventory when
// they are missing.
func (a *App) Bootstrap(ctx context.Context) error {
	log := a.Log.Named("seed")
	if err := database.SeedMasterAdmin(ctx, a.Users, a.Seed, a.Config.Seed.AdminPassword, log); err != nil {
		return err
	}
	return database.SeedStock(ctx, a.Stock, a.Seed, a.Clock.Now(), handlers.NewID, log)
}

// PushAll writes every local record to the remote store directly.
func (a *App) PushAll(ctx context.Context) (int, error) {
	total := 0
	for _, c := range a.collections() {
		n, err := c.push(ctx)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Router builds the HTTP handler over the application's repositories.
func (a *App) Router() http.Handler {
	return routes.SetupRouter(routes.Dependencies{
		Config:         a.Config,
		Log:            a.Log,
		Metrics:        a.Metrics,
		Issuer:         a.Issuer,
		Clock:          a.Clock,
		NewID:          handlers.NewID,
		Stock:          a.Stock,
		Transactions:   a.Transactions,
		MenuPlans:      a.MenuPlans,
		Procurements:   a.Procurements,
		Distributions:  a.Distributions,
		Users:          a.Users,
		Volunteers:     a.Volunteers,
		SerialCounters: a.Serials,
		Destinations:   a.Seed.Destinations,
		CancelPolicy:   a.CancelPolicy,
		Photos:         a.Photos,
		Advisor:        a.Advisor,
		Syncer:         a.Syncer,
		Hub:            a.Hub,
	})
}

// Serve runs the HTTP server, the sync loop and the websocket feed until
// ctx is cancelled, then shuts the server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Syncer.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.Hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.Log.Info("starting API server", zap.String("addr", srv.Addr), zap.String("remote", a.Remote.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		a.Log.Info("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the local database and the remote connection.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Local.Close(), a.closeRemote(ctx))
}
