package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stonebridge/assess-cli/internal/assess"
	"github.com/stonebridge/assess-cli/internal/config"
	"github.com/stonebridge/assess-cli/internal/narrative"
	"github.com/stonebridge/assess-cli/internal/scoring"
	"github.com/stonebridge/assess-cli/internal/store"
	"github.com/stonebridge/assess-cli/pkg/anthropic"
)

// appEnv bundles the wired components every command needs.
type appEnv struct {
	Store  store.Store
	Engine *assess.Engine
}

// initEnv opens the store, loads thresholds, and picks the narrative
// generator. Whether the overlay is real or a no-op is decided here, once,
// based on the configured API key.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	th := scoring.DefaultThresholds()
	if cfg.Scoring.ThresholdsFile != "" {
		th, err = scoring.LoadThresholds(cfg.Scoring.ThresholdsFile)
		if err != nil {
			st.Close()
			return nil, err
		}
		zap.L().Info("loaded scoring thresholds override",
			zap.String("file", cfg.Scoring.ThresholdsFile))
	}

	var gen narrative.Generator = narrative.Noop{}
	if cfg.Anthropic.Key != "" {
		gen = narrative.NewAnthropicGenerator(
			anthropic.NewClient(cfg.Anthropic.Key),
			cfg.Anthropic.Model,
			cfg.Anthropic.MaxTokens,
		)
	}

	return &appEnv{
		Store:  st,
		Engine: assess.New(th, gen),
	}, nil
}

func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch sc.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, sc.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(sc.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}
