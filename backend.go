package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/feedsync"
	"github.com/Cardjinho/Instagram-v0/infra/auth"
	"github.com/Cardjinho/Instagram-v0/infra/config"
	"github.com/Cardjinho/Instagram-v0/infra/kafka"
	"github.com/Cardjinho/Instagram-v0/infra/logging"
	"github.com/Cardjinho/Instagram-v0/infra/memstore"
	"github.com/Cardjinho/Instagram-v0/infra/minio"
	"github.com/Cardjinho/Instagram-v0/infra/postgres"
	"github.com/Cardjinho/Instagram-v0/infra/redisx"
	"github.com/Cardjinho/Instagram-v0/infra/seed"
	"github.com/Cardjinho/Instagram-v0/infra/supabase"
	"github.com/Cardjinho/Instagram-v0/infra/telemetry"
)

const demoSeed = 42

// session is everything a command needs once the backend is chosen.
type session struct {
	cfg      config.Config
	log      *zap.Logger
	tokens   *auth.FileTokenProvider
	store    app.DataStore
	objects  app.ObjectStore
	identity app.IdentityProvider
	pool     *pgxpool.Pool
	client   *supabase.Client
	events   *kafka.Publisher
	registry *prometheus.Registry
	closers  []func(context.Context) error
}

// staticIdentity signs in a fixed actor. It backs the in-memory demo.
type staticIdentity struct{ actor domain.Actor }

func (s staticIdentity) CurrentActor(context.Context) (domain.Actor, error) { return s.actor, nil }

func (s staticIdentity) SignOut(context.Context) error { return nil }

// openSession loads config and connects the configured backend and the
// optional cache, event stream and telemetry.
func openSession(ctx context.Context, opts *rootOptions) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}

	log, err := logging.New(cfg.Logging.File, cfg.Logging.Level, opts.verbose)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, tokens: auth.NewFileTokenProvider(cfg.TokenPath)}
	s.closers = append(s.closers, func(context.Context) error {
		_ = log.Sync()
		return nil
	})

	if err := s.openBackend(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.openExtras(ctx); err != nil {
		s.Close()
		return nil, err
	}
	log.Info("session opened", zap.String("backend", cfg.Backend), zap.String("config", cfg.Path))
	return s, nil
}

func (s *session) openBackend(ctx context.Context) error {
	cfg := s.cfg
	switch cfg.Backend {
	case config.BackendSupabase:
		s.client = supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, s.tokens)
		s.store = supabase.NewStore(s.client)
		s.objects = supabase.NewStorage(s.client, cfg.Supabase.Bucket)
		s.identity = supabase.NewIdentity(s.client, s.tokens.Clear)

	case config.BackendPostgres:
		pool, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		s.pool = pool
		s.closers = append(s.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		s.store = postgres.NewStore(pool)
		s.identity = auth.NewClaimsIdentity(s.tokens, cfg.Postgres.JWTSecret)

	case config.BackendMemory:
		store := memstore.New(nil)
		ds := seed.Generate(seed.Options{Seed: demoSeed})
		store.Load(ds)
		s.store = store
		p := ds.Profiles[0]
		s.identity = staticIdentity{actor: domain.Actor{ID: p.ID, Handle: p.Username, FullName: p.FullName}}

	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if cfg.Storage.Endpoint != "" && cfg.Backend != config.BackendSupabase {
		st, err := minio.New(minio.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			return err
		}
		s.objects = st
	}
	return nil
}

func (s *session) openExtras(ctx context.Context) error {
	cfg := s.cfg
	if cfg.Redis.Addr != "" {
		rdb, err := redisx.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// The cache is optional; run uncached rather than fail.
			s.log.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			s.store = redisx.NewCachedStore(s.store, rdb, cfg.Redis.CacheTTL(), s.log)
			s.closers = append(s.closers, func(context.Context) error { return rdb.Close() })
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		s.events = pub
		s.closers = append(s.closers, func(context.Context) error { return pub.Close() })
	}

	v := currentBuild().Version
	shutdown, err := telemetry.InitTracing(ctx, cfg.Telemetry.OTLPEndpoint, v)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, shutdown)

	if cfg.Telemetry.MetricsAddr != "" {
		s.registry = telemetry.NewRegistry()
		stop, err := telemetry.ServeMetrics(cfg.Telemetry.MetricsAddr, s.registry, s.log)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, stop)
	}
	return nil
}

// login makes sure a session token exists for backends that need one.
func (s *session) login(ctx context.Context, prompt auth.Prompt) error {
	if s.cfg.Backend != config.BackendSupabase {
		return nil
	}
	return auth.EnsureLogin(ctx, s.cfg.Supabase.URL, s.cfg.Supabase.AnonKey, s.cfg.TokenPath, prompt)
}

// synchronizer resolves the signed-in actor, provisions their profile and
// returns a synchronizer for them.
func (s *session) synchronizer(ctx context.Context) (*feedsync.Synchronizer, domain.Profile, error) {
	actor, err := s.identity.CurrentActor(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.Profile{}, fmt.Errorf("%w (run `instaterm login`)", err)
		}
		return nil, domain.Profile{}, err
	}
	profile, err := feedsync.EnsureProfile(ctx, s.store, actor)
	if err != nil {
		return nil, domain.Profile{}, err
	}

	opts := []feedsync.Option{feedsync.WithLogger(s.log)}
	if s.objects != nil {
		opts = append(opts, feedsync.WithObjectStore(s.objects))
	}
	if s.events != nil {
		opts = append(opts, feedsync.WithEvents(s.events))
	}
	if s.registry != nil {
		opts = append(opts, feedsync.WithMetrics(feedsync.NewMetrics(s.registry)))
	}
	sync := feedsync.New(s.store, actor, opts...)
	// Closers run in reverse, so queued events drain before the publisher closes.
	s.closers = append(s.closers, sync.Flush)
	return sync, profile, nil
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && s.log != nil {
			s.log.Warn("shutdown", zap.Error(err))
		}
	}
}
