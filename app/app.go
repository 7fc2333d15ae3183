package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/brokerage/core/apiclient"
	"github.com/dmitrymomot/brokerage/core/cookie"
	"github.com/dmitrymomot/brokerage/core/healthcheck"
	"github.com/dmitrymomot/brokerage/core/logger"
	"github.com/dmitrymomot/brokerage/core/server"
	"github.com/dmitrymomot/brokerage/core/session"
	mongodb "github.com/dmitrymomot/brokerage/integration/database/mongo"
	redisdb "github.com/dmitrymomot/brokerage/integration/database/redis"
	"github.com/dmitrymomot/brokerage/listing"
	"github.com/dmitrymomot/brokerage/middleware"
	"github.com/dmitrymomot/brokerage/pkg/broadcast"
	"github.com/dmitrymomot/brokerage/users"
)

// App wires the session store, the API client and the HTTP surface of the
// site. It owns the broadcast channel shared by all session stores and
// closes it on shutdown.
type App struct {
	cfg    Config
	logger *slog.Logger

	rdb      redis.UniversalClient
	ownRedis bool
	mongo    *mongo.Client
	users    users.Repository

	jar      cookie.Jar
	bc       broadcast.Broadcaster[session.Envelope]
	store    *session.Store
	api      *apiclient.Client
	listings *listing.Service

	server  *server.Server
	handler http.Handler
	checks  []healthcheck.Check

	closeOnce sync.Once
	closeErr  error
}

// New builds the application. Redis and MongoDB are connected when their
// URLs are configured; otherwise the app runs on in-memory jars and
// channels and without the users route.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = newLogger(cfg)
	}

	if err := a.connect(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	if a.rdb != nil {
		a.jar = cookie.NewRedisJar(a.rdb, cfg.Cookie.RedisPrefix)
		a.bc = broadcast.NewRedisBroadcaster[session.Envelope](a.rdb, cfg.Session.Channel,
			broadcast.WithLogger(a.logger))
		a.checks = append(a.checks, redisdb.Healthcheck(a.rdb))
	} else {
		a.jar = cookie.NewMemoryJar()
		a.bc = broadcast.NewMemoryBroadcaster[session.Envelope](broadcast.DefaultBufferSize)
	}

	store, err := a.newStore(a.jar)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = store
	a.store.Subscribe(session.KeyAccess, func(n session.Notification) {
		a.logger.Debug("session changed",
			logger.Component("app"),
			logger.Event(n.Origin.String()),
			slog.Bool("reset", n.Conditions.Reset),
		)
	})

	if cfg.API.BaseURL == "" {
		a.logger.Warn("API_URL is not set, backend calls will fail", logger.Component("app"))
	}
	a.api = a.newClient(a.store)
	a.listings = listing.New(a.api, listing.WithLogger(a.logger))

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(a.logger))
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.server = srv
	a.handler = a.routes()

	return a, nil
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{logger.WithContextExtractors(middleware.RequestIDExtractor)}
	switch cfg.Env {
	case EnvProduction:
		opts = append(opts, logger.WithProduction(cfg.AppName))
	case EnvStaging:
		opts = append(opts, logger.WithStaging(cfg.AppName))
	default:
		opts = append(opts, logger.WithDevelopment(cfg.AppName))
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	}
	return logger.New(opts...)
}

func (a *App) connect(ctx context.Context) error {
	if a.rdb == nil && a.cfg.Redis.ConnectionURL != "" {
		rdb, err := redisdb.Connect(ctx, a.cfg.Redis)
		if err != nil {
			return errors.Join(ErrConnectRedis, err)
		}
		a.rdb = rdb
		a.ownRedis = true
	}

	if a.users == nil && a.cfg.Mongo.ConnectionURL != "" {
		client, err := mongodb.New(ctx, a.cfg.Mongo)
		if err != nil {
			return errors.Join(ErrConnectMongo, err)
		}
		a.mongo = client
		a.users = users.NewMongoRepository(client.Database(a.cfg.Mongo.Database))
		a.checks = append(a.checks, mongodb.Healthcheck(client))
	}
	return nil
}

func (a *App) newStore(jar cookie.Jar) (*session.Store, error) {
	return session.New(jar, a.cfg.Session,
		session.WithBroadcaster(a.bc),
		session.WithLogger(a.logger),
		session.WithCookieOptions(cookie.DefaultOptions(a.cfg.Cookie)...),
	)
}

func (a *App) newClient(tokens apiclient.TokenStore) *apiclient.Client {
	return apiclient.New(a.cfg.API.BaseURL, tokens,
		apiclient.WithTimeout(a.cfg.API.Timeout),
		apiclient.WithMaxRetries(a.cfg.API.MaxRetries),
		apiclient.WithLogger(a.logger),
	)
}

// Handler returns the HTTP handler of the app.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Store returns the server-side session store.
func (a *App) Store() *session.Store {
	return a.store
}

// Listings returns the listing service bound to the server-side store.
func (a *App) Listings() *listing.Service {
	return a.listings
}

// Run serves HTTP until ctx is cancelled, then releases every resource.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run(ctx, a.handler))

	err := g.Wait()
	return errors.Join(err, a.Close())
}

// Close stops the session store, closes the broadcast channel and
// disconnects owned database clients. Later calls return the first result.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error
		if a.store != nil {
			if err := a.store.Close(); err != nil && !errors.Is(err, session.ErrClosed) {
				errs = append(errs, err)
			}
		}
		if a.bc != nil {
			if err := a.bc.Close(); err != nil && !errors.Is(err, broadcast.ErrBroadcasterClosed) {
				errs = append(errs, err)
			}
		}
		if a.rdb != nil && a.ownRedis {
			errs = append(errs, a.rdb.Close())
		}
		if a.mongo != nil {
			errs = append(errs, a.mongo.Disconnect(context.Background()))
		}
		a.closeErr = errors.Join(errs...)
		a.logger.Info("app closed", logger.Component("app"))
	})
	return a.closeErr
}
