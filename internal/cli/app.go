// Package cli wires configuration into a running triage application: the
// engine, session storage, doctor directory, metrics and the interactive chat.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/triage"
	"github.com/aretw0/triage/internal/config"
	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/metrics"
	"github.com/aretw0/triage/pkg/adapters/file"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/adapters/redis"
	"github.com/aretw0/triage/pkg/adapters/supabase"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/persistence/middleware"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/aretw0/triage/pkg/reference"
	"github.com/aretw0/triage/pkg/session"
)

// App holds every component built from a Config.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Engine    *triage.Engine
	Sessions  *session.Manager
	Directory ports.DoctorDirectory
	Fallback  []domain.Doctor

	closers []func() error
}

// NewApp builds the application. Redis and Supabase are used only when
// their addresses are configured; otherwise sessions live in memory and
// doctor listings come from the built-in roster.
func NewApp(cfg config.Config) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   logging.New(logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format)),
		Metrics:  metrics.New(),
		Fallback: reference.Doctors(),
	}

	eng, err := NewEngine(cfg, app.Logger, app.Metrics.Hooks().Merge(debugHooks(app.Logger)))
	if err != nil {
		return nil, err
	}
	app.Engine = eng

	store, sessionOpts, err := app.sessionStore()
	if err != nil {
		return nil, err
	}
	if store, err = sealStore(store, cfg.Encryption); err != nil {
		return nil, err
	}
	sessionOpts = append(sessionOpts, session.WithLogger(app.Logger))
	app.Sessions = session.NewManager(eng.Stateless(), eng.Classifier(), store, sessionOpts...)

	if cfg.Supabase.URL != "" {
		client := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key,
			supabase.WithTimeout(10*time.Second),
			supabase.WithRetry(2, 500*time.Millisecond),
		)
		app.Directory = supabase.NewDirectory(client)
		app.Logger.Info("doctor directory enabled", "url", cfg.Supabase.URL)
	}
	return app, nil
}

// NewEngine builds the triage engine described by cfg.
func NewEngine(cfg config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*triage.Engine, error) {
	opts := []triage.Option{
		triage.WithLogger(logger),
		triage.WithLifecycleHooks(hooks),
	}

	entry := cfg.EntryNode
	if entry == "" && isDir(cfg.Tree) {
		entry = determineEntryPoint(cfg.Tree)
	}
	if entry != "" {
		opts = append(opts, triage.WithEntryNode(entry))
	}

	if cfg.Rules != "" {
		doc, err := file.Load(cfg.Rules)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		opts = append(opts, triage.WithRuleLoader(doc))
		if doc.Messages.Fallback != "" {
			opts = append(opts, triage.WithFallbackMessage(doc.Messages.Fallback))
		}
	}

	eng, err := triage.New(cfg.Tree, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}

func (a *App) sessionStore() (ports.StateStore, []session.Option, error) {
	rc := a.Config.Redis
	if rc.Addr == "" {
		return memory.NewStore(), nil, nil
	}

	store := redis.New(rc.Addr, rc.Password, rc.DB,
		redis.WithPrefix(rc.Prefix),
		redis.WithTTL(rc.TTL),
	)
	a.closers = append(a.closers, store.Client().Close)
	locker := redis.NewLocker(store.Client(), lockPrefix(rc.Prefix))

	a.Logger.Info("redis session store enabled", "addr", rc.Addr, "prefix", rc.Prefix, "ttl", rc.TTL)
	return store, []session.Option{session.WithLocker(locker)}, nil
}

// sealStore encrypts snapshots at rest when a key is configured.
func sealStore(store ports.StateStore, cfg config.EncryptionConfig) (ports.StateStore, error) {
	if cfg.Key == "" {
		return store, nil
	}
	active, err := middleware.ParseKey(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, raw := range cfg.FallbackKeys {
		k, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid fallback key %d: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, k)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return middleware.Chain(store, mw), nil
}

// Close releases external connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// determineEntryPoint picks the start node of a node-per-file repository:
// start, then main, then index, then a file named after the directory.
func determineEntryPoint(dir string) string {
	candidates := []string{domain.DefaultStartNode, "main", "index"}
	if abs, err := filepath.Abs(dir); err == nil {
		candidates = append(candidates, strings.ToLower(filepath.Base(abs)))
	}
	for _, id := range candidates {
		for _, ext := range []string{".md", ".yaml", ".yml", ".json"} {
			if _, err := os.Stat(filepath.Join(dir, id+ext)); err == nil {
				return id
			}
		}
	}
	return domain.DefaultStartNode
}

// lockPrefix keeps lock keys out of the session keyspace:
// "triage:session:" becomes "triage:lock:".
func lockPrefix(sessionPrefix string) string {
	return strings.TrimSuffix(sessionPrefix, "session:") + "lock:"
}
