package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	staticcatalog "shiplife/internal/adapter/catalog/static"
	metricsinmem "shiplife/internal/adapter/metrics/inmemory"
	notifyinmem "shiplife/internal/adapter/notify/inmemory"
	filerepo "shiplife/internal/adapter/repo/file"
	gormrepo "shiplife/internal/adapter/repo/gorm"
	"shiplife/internal/adapter/repo/memory"
	"shiplife/internal/adapter/repo/sqlite"
	"shiplife/internal/app/drops"
	"shiplife/internal/app/loadouts"
	"shiplife/internal/app/missions"
	"shiplife/internal/app/notifications"
	"shiplife/internal/app/ports"
	"shiplife/internal/app/savegame"
	"shiplife/internal/app/status"
	"shiplife/internal/app/trophies"
	"shiplife/internal/app/workshop"
	"shiplife/internal/config"
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/rolls"
)

// Engine is the fully wired set of use cases over one save.
type Engine struct {
	Catalog *catalog.Catalog
	Saves   *savegame.Service
	Metrics *metricsinmem.Recorder
	Feed    *notifyinmem.Feed
	Seed    uint64
	closeDB func() error

	Status        status.UseCase
	Missions      missions.UseCase
	Loadouts      loadouts.UseCase
	Drops         drops.UseCase
	Trophies      trophies.UseCase
	Workshop      workshop.UseCase
	Notifications notifications.UseCase
}

// Build loads content, opens the configured store and loads the save.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cat, err := staticcatalog.Loader{Root: cfg.ContentDir, Logger: logger}.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	store, closeDB, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = rolls.NewSeed(); err != nil {
			_ = closeDB()
			return nil, fmt.Errorf("seed rng: %w", err)
		}
	}
	rng, err := rolls.NewSource(seed)
	if err != nil {
		_ = closeDB()
		return nil, fmt.Errorf("seed rng: %w", err)
	}

	metrics := metricsinmem.NewRecorder()
	feed := notifyinmem.NewFeed(0)
	saves := &savegame.Service{
		Store:    store,
		Catalog:  cat,
		Notifier: feed,
		Logger:   logger,
		Key:      cfg.SaveKey,
		Debounce: cfg.SaveDebounce,
	}
	if err := saves.Load(ctx); err != nil {
		_ = closeDB()
		return nil, err
	}
	logger.Info("engine ready", "store", cfg.StoreDriver, "seed", seed)

	return &Engine{
		Catalog: cat,
		Saves:   saves,
		Metrics: metrics,
		Feed:    feed,
		Seed:    seed,
		closeDB: closeDB,

		Status:        status.UseCase{Store: saves, Catalog: cat},
		Missions:      missions.UseCase{Store: saves, Catalog: cat, RNG: rng, Metrics: metrics, Notifier: feed, Logger: logger},
		Loadouts:      loadouts.UseCase{Store: saves, Catalog: cat, Metrics: metrics, Logger: logger},
		Drops:         drops.UseCase{Store: saves, Flusher: saves, Catalog: cat, RNG: rng, Sessions: drops.NewRegistry(), Metrics: metrics, Notifier: feed, Logger: logger},
		Trophies:      trophies.UseCase{Store: saves, Catalog: cat, Logger: logger},
		Workshop:      workshop.UseCase{Store: saves, Catalog: cat, Metrics: metrics, Notifier: feed, Logger: logger},
		Notifications: notifications.UseCase{Feed: feed},
	}, nil
}

// Close flushes the save and releases the store.
func (e *Engine) Close(ctx context.Context) error {
	err := e.Saves.Close(ctx)
	if cerr := e.closeDB(); err == nil {
		err = cerr
	}
	return err
}

// OpenStore returns the snapshot store selected by cfg and its closer.
func OpenStore(ctx context.Context, cfg config.Config) (ports.SnapshotStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.NewStore(), noop, nil
	case config.StoreFile:
		s, err := filerepo.NewStore(cfg.FileDir)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("sqlite dir: %w", err)
			}
		}
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StorePostgres:
		repo, err := gormrepo.OpenSnapshotRepo(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
