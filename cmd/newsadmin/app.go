package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/and161185/newsadmin/internal/config"
	"github.com/and161185/newsadmin/internal/crypto/sealbox"
	"github.com/and161185/newsadmin/internal/errs"
	"github.com/and161185/newsadmin/internal/gateway"
	"github.com/and161185/newsadmin/internal/guard"
	"github.com/and161185/newsadmin/internal/limiter"
	"github.com/and161185/newsadmin/internal/logging"
	"github.com/and161185/newsadmin/internal/metrics"
	"github.com/and161185/newsadmin/internal/repository/rest"
	"github.com/and161185/newsadmin/internal/service"
	"github.com/and161185/newsadmin/internal/state"
	"github.com/and161185/newsadmin/internal/tokenstore"
)

// options are the persistent flags.
type options struct {
	configFile string
	apiURL     string
	yes        bool
}

// app owns the wired console for the lifetime of one process.
type app struct {
	opts options
	in   *lineReader
	out  io.Writer
	errw io.Writer

	cfg      *config.Config
	log      *zap.Logger
	tokens   tokenstore.Store
	store    *state.Store
	coord    *service.Coordinator
	guard    *guard.Guard
	registry *prometheus.Registry

	// started is set once setup succeeded; the shell reuses the wiring.
	started     bool
	interactive bool
}

// setup loads configuration and wires the store, gateway and coordinator.
func (a *app) setup(ctx context.Context) error {
	if a.started {
		return nil
	}
	cfg, err := config.Load(a.opts.configFile)
	if err != nil {
		return err
	}
	if a.opts.apiURL != "" {
		cfg.API.URL = a.opts.apiURL
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}

	var box *sealbox.Box
	if cfg.Tokens.Passphrase != "" {
		if box, err = sealbox.New(cfg.Tokens.Passphrase); err != nil {
			return fmt.Errorf("token passphrase: %w", err)
		}
	}
	path := cfg.Tokens.Path
	if path == "" {
		path = tokenstore.DefaultPath()
	}
	tokens := tokenstore.NewFile(path, box)

	reg := prometheus.NewRegistry()
	m := metrics.NewGateway(reg)
	gw := gateway.New(tokens,
		gateway.WithLogger(log),
		gateway.WithTimeout(cfg.API.Timeout),
		gateway.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
		gateway.WithMetrics(m),
	)

	store := state.New(log)
	a.cfg, a.log, a.tokens, a.store, a.registry = cfg, log, tokens, store, reg
	a.guard = guard.New(tokens)
	a.coord = service.New(service.Deps{
		Store:                 store,
		Tokens:                tokens,
		Auth:                  rest.NewAuth(gw, cfg.API.URL),
		Authors:               rest.NewAuthors(gw, cfg.API.URL),
		Categories:            rest.NewCategories(gw, cfg.API.URL),
		Dashboard:             rest.NewDashboard(gw, cfg.API.URL),
		Limiter:               limiter.NewMemory(cfg.Login.Window, cfg.Login.MaxFailures, cfg.Login.BlockFor),
		Confirmer:             a.confirmer(),
		Notifier:              a.notifier(),
		Logger:                log,
		Metrics:               m,
		UnauthorizedThreshold: cfg.Session.UnauthorizedThreshold,
	})
	a.started = true

	if err := a.coord.Auth.CheckSession(ctx); err != nil && !errors.Is(err, errs.ErrNoToken) && !errors.Is(err, errs.ErrSessionExpired) {
		log.Warn("session check", zap.Error(err))
	}
	return nil
}

// close stops in-flight effects and the store.
func (a *app) close() {
	if !a.started {
		return
	}
	a.coord.Close()
	a.store.Close()
	_ = a.log.Sync()
	a.started = false
}

// enter applies the route guard to the admin path a command works on.
func (a *app) enter(route string) error {
	d := a.guard.Evaluate(route)
	if d.Allow {
		return nil
	}
	return fmt.Errorf("%s requires a session: run login (redirect to %s)", d.From, d.Redirect)
}
