package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mahmoudd2003/list/internal/apperr"
	"github.com/mahmoudd2003/list/internal/locale"
	"github.com/mahmoudd2003/list/internal/model"
	"github.com/mahmoudd2003/list/internal/pipeline"
	"github.com/mahmoudd2003/list/internal/preset"
	"github.com/mahmoudd2003/list/internal/store"
	"github.com/mahmoudd2003/list/pkg/google"
	"github.com/mahmoudd2003/list/pkg/wordpress"
)

// appEnv holds the initialized clients and tables used by the fetch,
// publish and serve commands.
type appEnv struct {
	Presets   *preset.Registry
	Pipeline  *pipeline.Pipeline
	Publisher wordpress.Client // nil when no credentials are configured
	Runs      store.Store      // nil when run history is disabled
}

// initPresets loads the preset table named by presets.file, or the
// built-in one.
func initPresets() (*preset.Registry, error) {
	reg, err := preset.Load(cfg.Presets.File)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("presets loaded",
		zap.String("file", cfg.Presets.File),
		zap.Int("cities", len(reg.Cities())),
		zap.Int("categories", len(reg.Categories())),
	)
	return reg, nil
}

// initPipeline validates config for mode, then builds the Places client
// and the pipeline around it.
func initPipeline(mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	reg, err := initPresets()
	if err != nil {
		return nil, err
	}

	opts := []google.Option{
		google.WithTimeout(cfg.Places.Timeout()),
		google.WithLanguage(cfg.Places.Language),
		google.WithRateLimit(cfg.Places.RateLimit),
	}
	if cfg.Places.BaseURL != "" {
		opts = append(opts, google.WithBaseURL(cfg.Places.BaseURL))
	}
	places, err := google.NewClient(cfg.Places.APIKey, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "init places client")
	}

	p := pipeline.New(places, reg, locale.Arabic(),
		pipeline.WithPartialResults(cfg.Pipeline.PartialResults),
	)
	return &appEnv{Presets: reg, Pipeline: p}, nil
}

// initPublisher builds the WordPress client. It fails with a config error
// when any credential is missing.
func initPublisher() (wordpress.Client, error) {
	return wordpress.NewClient(cfg.WordPress.BaseURL, cfg.WordPress.User, cfg.WordPress.AppPassword,
		wordpress.WithTimeout(cfg.WordPress.Timeout()),
	)
}

// initStore opens the run history store. It returns nil, nil when
// store.driver is empty.
func initStore(ctx context.Context) (store.Store, error) {
	if !cfg.Store.Enabled() {
		return nil, nil
	}
	s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	zap.L().Debug("run store opened", zap.String("driver", cfg.Store.Driver))
	return s, nil
}

// requireStore opens the run history store and fails with a config error
// when it is disabled.
func requireStore(ctx context.Context) (store.Store, error) {
	s, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperr.NewConfigError("store.driver", "run history is not configured")
	}
	return s, nil
}

// loadRun reads a run from path, or from the store when runID is set.
func loadRun(ctx context.Context, path, runID string) (*model.Run, error) {
	if runID == "" {
		return readRun(path)
	}
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, apperr.NewConfigError("run-id", "invalid run id %q", runID)
	}
	s, err := requireStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, eris.Wrapf(err, "load run %s", id)
	}
	return run, nil
}
