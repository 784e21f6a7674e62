package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/simplebot"
	"github.com/aretw0/simplebot/internal/config"
	"github.com/aretw0/simplebot/pkg/adapters/file"
	loamadapter "github.com/aretw0/simplebot/pkg/adapters/loam"
	"github.com/aretw0/simplebot/pkg/adapters/memory"
	"github.com/aretw0/simplebot/pkg/adapters/outbox"
	redisadapter "github.com/aretw0/simplebot/pkg/adapters/redis"
	"github.com/aretw0/simplebot/pkg/adapters/sqlite"
	"github.com/aretw0/simplebot/pkg/dialog"
	"github.com/aretw0/simplebot/pkg/observability"
	"github.com/aretw0/simplebot/pkg/persistence/middleware"
	"github.com/aretw0/simplebot/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Services is everything a command needs, built from the configuration.
type Services struct {
	Bot      *simplebot.Bot
	Store    ports.StateStore
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []io.Closer
}

// Close releases backend connections.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

// Storage is an opened state backend.
type Storage struct {
	Store   ports.StateStore
	Locker  ports.DistributedLocker
	closers []io.Closer
}

// Close releases the backend connection.
func (s *Storage) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// OpenStorage opens the configured state store, wrapped with encryption when a key is set.
// Redis also provides the cross-replica turn lock.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	st := &Storage{}

	switch cfg.Storage.Driver {
	case config.DriverMemory, "":
		st.Store = memory.NewStore()
	case config.DriverFile:
		st.Store = file.New(cfg.Storage.Path)
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		st.Store = db
		st.closers = append(st.closers, db)
	case config.DriverRedis:
		rc := cfg.Storage.Redis
		store := redisadapter.New(rc.Addr, rc.Password, rc.DB,
			redisadapter.WithPrefix(rc.Prefix),
			redisadapter.WithTTL(rc.TTL),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", rc.Addr, err)
		}
		st.Store = store
		st.Locker = redisadapter.NewLocker(store.Client(), store.Prefix()+"lock:")
		st.closers = append(st.closers, store)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	key, err := cfg.EncryptionKey()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if key != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		st.Store = middleware.Chain(st.Store, mw)
	}

	return st, nil
}

// BuildOption tweaks Build, mostly for tests.
type BuildOption func(*buildOptions)

type buildOptions struct {
	sender ports.EmailSender
}

// WithSender replaces the logging email sender.
func WithSender(sender ports.EmailSender) BuildOption {
	return func(o *buildOptions) {
		o.sender = sender
	}
}

// Build wires the bot and its collaborators from the configuration.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...BuildOption) (*Services, error) {
	bo := &buildOptions{}
	for _, opt := range opts {
		opt(bo)
	}
	if bo.sender == nil {
		bo.sender = outbox.NewLogSender(logger)
	}

	policy, err := dialog.ParsePolicy(cfg.Dialog.EmailPolicy)
	if err != nil {
		return nil, err
	}

	storage, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc := &Services{
		Store:    storage.Store,
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
		closers:  []io.Closer{storage},
	}

	hooks := observability.LogHooks(logger)
	if cfg.Metrics.Enabled {
		svc.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		hooks = hooks.Merge(observability.NewMetrics(svc.Registry).Hooks())
	}

	botOpts := []simplebot.Option{
		simplebot.WithStore(storage.Store),
		simplebot.WithEmailSender(bo.sender),
		simplebot.WithEmailPolicy(policy, cfg.Dialog.MinLength),
		simplebot.WithEmailSubject(cfg.Email.Subject),
		simplebot.WithGreeting(cfg.Dialog.Greeting),
		simplebot.WithLifecycleHooks(hooks),
		simplebot.WithLogger(logger),
	}
	if storage.Locker != nil {
		botOpts = append(botOpts, simplebot.WithLocker(storage.Locker))
	}

	if cfg.Content.Dir != "" {
		assets, err := loamadapter.Open(cfg.Content.Dir)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("open content repository: %w", err)
		}
		botOpts = append(botOpts,
			simplebot.WithAssets(assets),
			simplebot.WithWelcomeCard(cfg.Dialog.WelcomeCard),
			simplebot.WithEmailTemplate(cfg.Content.EmailTemplate),
		)
	}

	b, err := simplebot.New(botOpts...)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	svc.Bot = b

	logger.Debug("Bot wired",
		"storage", cfg.Storage.Driver,
		"encrypted", cfg.Storage.EncryptionKey != "",
		"policy", policy,
		"content_dir", cfg.Content.Dir,
	)
	return svc, nil
}
