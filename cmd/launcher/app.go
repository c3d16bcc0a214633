package main

import (
	"context"
	"fmt"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/client"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/config"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/download"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/state"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/storage"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/tui"
)

// app owns everything a command needs and tears it down in reverse order
type app struct {
	cfg    *config.Config
	rt     *async.Runtime
	ledger *storage.SQLiteLedger
	bridge *bridge.Bridge
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := storage.EnsureDir(cfg.DataDir); err != nil {
		return nil, err
	}

	ledger, err := storage.NewSQLiteLedger(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open task history: %w", err)
	}

	rt := async.NewRuntime(cfg.Workers)
	pipeline := download.NewPipeline(client.NewHTTPClient(cfg.HTTPTimeout), download.Options{
		CatalogURL:   cfg.CatalogURL,
		ResourcesURL: cfg.ResourcesURL,
		Concurrency:  cfg.Concurrency,
		Platform:     models.CurrentPlatform(),
	})

	return &app{
		cfg:    cfg,
		rt:     rt,
		ledger: ledger,
		bridge: bridge.New(rt, state.New(cfg.DataDir), pipeline, ledger, ledger),
	}, nil
}

func (a *app) Close() {
	a.bridge.Close()
	a.rt.Shutdown()
	a.ledger.Close()
}

// loadCatalog fetches the version catalog unless it is already in the store
func (a *app) loadCatalog() error {
	if a.bridge.CatalogLoaded() {
		return nil
	}

	res := a.bridge.Await(a.bridge.FetchCatalog(), async.KindCatalog)
	if res.Code != bridge.Success {
		return fmt.Errorf("failed to fetch version catalog (%s): %s", res.Code, a.take(res.Error))
	}
	return nil
}

func (a *app) take(o bridge.OwnedString) string {
	text := a.bridge.Text(o)
	a.bridge.FreeString(o)
	return text
}

func (a *app) install(ctx context.Context, version string, report func(tui.StageUpdate)) error {
	return tui.RunInstall(ctx, a.bridge, version, report)
}
