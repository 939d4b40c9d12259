package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/control"
	"tableflip.dev/lowerthird/pkg/logging"
	"tableflip.dev/lowerthird/pkg/store"
)

// env is what every command needs: config, logger, catalog and the shared
// active state.
type env struct {
	Config      store.Config
	Logger      *logging.Logger
	Persistence store.Persistence
	State       activestate.Store
	App         *app.Service
	Control     *control.Controller
}

// loadEnv reads the config and opens the stores. The default catalog is
// installed on first use.
func loadEnv(ctx context.Context) (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel(), cfg.LogFile())
	if err != nil {
		return nil, err
	}
	p, err := store.Load(cfg)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	state, err := activestate.Open(cfg, p, logger.Logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	a := &app.Service{Persistence: p, State: state}
	if seeded, err := a.Seed(ctx); err != nil {
		_ = logger.Close()
		return nil, err
	} else if seeded {
		logger.Info("installed default themes and lower thirds", "path", cfg.BasePath())
	}
	return &env{
		Config:      cfg,
		Logger:      logger,
		Persistence: p,
		State:       state,
		App:         a,
		Control:     &control.Controller{Themes: a, State: state},
	}, nil
}

func (e *env) Close() {
	_ = e.Logger.Close()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
