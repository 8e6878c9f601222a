package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/udisondev/homestations/internal/config"
	"github.com/udisondev/homestations/internal/db"
	"github.com/udisondev/homestations/internal/db/sqlite"
	"github.com/udisondev/homestations/internal/storage"
	"github.com/udisondev/homestations/internal/storage/filestore"
)

// stores are the durable stores of the configured backend. balances is nil
// for the file backend.
type stores struct {
	lines    storage.LineStore
	stations storage.StationStore
	balances storage.BalanceStore
	closers  []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg config.HomeStations) (*stores, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		fs, err := filestore.New(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		slog.Info("using file storage", "dir", cfg.Storage.DataDir)
		return &stores{lines: fs, stations: fs}, nil

	case config.BackendSQLite:
		path := cfg.Storage.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.Storage.DataDir, "homestations.db")
		}
		sdb, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		slog.Info("using sqlite storage", "path", path)
		return &stores{
			lines:    sdb,
			stations: sdb,
			balances: sdb,
			closers: []func(){func() {
				if err := sdb.Close(); err != nil {
					slog.Warn("closing sqlite", "error", err)
				}
			}},
		}, nil

	case config.BackendPostgres:
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database connected, migrations applied")

		pool := database.Pool()
		return &stores{
			lines:    db.NewPlayerDataRepository(pool),
			stations: db.NewStationRepository(pool),
			balances: db.NewBalanceRepository(pool),
			closers:  []func(){database.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
