package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/and161185/exmail-sync/internal/config"
	"github.com/and161185/exmail-sync/internal/exmail"
	"github.com/and161185/exmail-sync/internal/limiter"
	"github.com/and161185/exmail-sync/internal/migrate"
	"github.com/and161185/exmail-sync/internal/repository/postgres"
	"github.com/and161185/exmail-sync/internal/token"
)

// app holds what the subcommands share. The database and the API clients are
// opened on first use so that commands only touch what they need.
type app struct {
	cfg *config.Config
	log *zap.Logger

	transport *exmail.Transport
	db        *postgres.DB
}

func newLogger(c config.LoggingConfig) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	if c.File != "" {
		zc.OutputPaths = append(zc.OutputPaths, c.File)
		zc.ErrorOutputPaths = append(zc.ErrorOutputPaths, c.File)
	}
	return zc.Build()
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	t, err := exmail.NewTransport(exmail.Options{
		BaseURL:         cfg.Exmail.BaseURL,
		Timeout:         cfg.Exmail.Timeout,
		Limiter:         limiter.NewRate(cfg.Exmail.RateLimit, cfg.Exmail.Burst),
		BreakerFailures: cfg.Exmail.BreakerFailures,
		BreakerTimeout:  cfg.Exmail.BreakerTimeout,
	}, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, transport: t}, nil
}

// client builds an API client authenticated with one application's credential.
func (a *app) client(name string, ac config.AppCredential) (*exmail.Client, error) {
	store := token.NewFileStore(ac.StateFile)
	cred, err := token.LoadOrSeed(store, token.Credential{CorpID: ac.CorpID, CorpSecret: ac.CorpSecret})
	if err != nil {
		return nil, fmt.Errorf("%s credential: %w", name, err)
	}
	if cred.CorpID == "" || cred.CorpSecret == "" {
		return nil, fmt.Errorf("%s credential: corp id and secret are required (config or %s)", name, ac.StateFile)
	}
	m := token.NewManager(cred, exmail.NewAuthenticator(a.transport), store,
		a.cfg.Exmail.TokenThreshold, a.log.With(zap.String("app", name)))
	return exmail.NewClient(a.transport, m), nil
}

func (a *app) contactClient() (*exmail.Client, error) { return a.client("contact", a.cfg.Exmail.Contact) }

func (a *app) logClient() (*exmail.Client, error) { return a.client("log", a.cfg.Exmail.Log) }

// database migrates the schema and opens the pool once per process.
func (a *app) database(ctx context.Context) (*postgres.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if err := migrate.Up(ctx, a.cfg.Database.DSN, a.log); err != nil {
		return nil, err
	}
	db, err := postgres.New(ctx, a.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// lastDays returns the window [today-days, today] in the local calendar.
func lastDays(now time.Time, days int) (from, to time.Time) {
	y, m, d := now.Date()
	to = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return to.AddDate(0, 0, -days), to
}
