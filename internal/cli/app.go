package cli

import (
	"context"
	"fmt"

	"campustask-sync-server/internal/config"
	"campustask-sync-server/internal/localstore"
	"campustask-sync-server/internal/reconciler"
	"campustask-sync-server/internal/remote"
)

// App holds the wired client-side pieces every command needs: the local
// database, the server client and the reconciler that moves pending
// mutations between them.
type App struct {
	Cfg        *config.Config
	Store      *localstore.Store
	Client     *remote.Client
	Reconciler *reconciler.Reconciler
}

func OpenApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := localstore.Open(cfg.Client.DataDir)
	if err != nil {
		return nil, err
	}

	client := remote.NewClient(cfg.Client.ServerURL, cfg.Client.DeviceID, cfg.Client.ProbeTimeout)

	token, err := store.GetValue(ctx, localstore.KeyAccessToken)
	if err != nil {
		store.Close()
		return nil, err
	}
	client.SetToken(token)

	return &App{
		Cfg:        cfg,
		Store:      store,
		Client:     client,
		Reconciler: reconciler.New(client, store, client),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// TrySync runs a reconciliation pass and prints the outcome. Offline and
// overlapping passes are silent no-ops; only load/persist failures are
// returned.
func (a *App) TrySync(ctx context.Context) error {
	report, err := a.Reconciler.Run(ctx)
	if err != nil {
		return err
	}
	if report.Skipped {
		return nil
	}
	printReport(report)
	return nil
}
