package cmd

import (
	"context"
	"fmt"
	"time"

	"achievement-hub/core/config"
	"achievement-hub/core/database"
	"achievement-hub/core/enrich"
	"achievement-hub/core/library"
	"achievement-hub/core/logger"
	"achievement-hub/core/provider"
	"achievement-hub/core/stats"
	"achievement-hub/core/storage"
	"achievement-hub/core/view"
	"achievement-hub/feature/archive"
	"achievement-hub/feature/backup"
	"achievement-hub/feature/providers/retro"
	"achievement-hub/feature/providers/steam"
	"achievement-hub/feature/providers/xbox"
	hubsync "achievement-hub/feature/sync"

	"go.uber.org/zap"
)

// hub is the wired application shared by every command.
type hub struct {
	cfg       *config.Config
	logger    *zap.Logger
	local     *library.FilePersister
	store     *library.Store
	stats     *stats.Cache
	projector *view.Projector
	registry  *provider.Registry
	sync      *hubsync.Service
	archive   *archive.Service
	backup    *backup.Service
	closers   []func() error
}

// options select the optional parts a command needs.
type options struct {
	providers bool
	sinks     bool
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)
	return cfg, logg, nil
}

func bootstrap(ctx context.Context, opts options) (*hub, error) {
	cfg, logg, err := loadConfigAndLogger()
	if err != nil {
		return nil, err
	}
	rt := &hub{cfg: cfg, logger: logg}

	rt.backup = newBackup(ctx, cfg, logg)

	rt.local = library.NewFilePersister(cfg.Library.Path)
	var persister library.Persister = rt.local
	if rt.backup != nil {
		persister = backup.NewPersister(rt.local, rt.backup)
	}
	rt.store = library.Load(ctx, persister, logg.With(zap.String("component", "library")))

	rt.stats = stats.New(rt.store)
	rt.projector = view.NewProjector(rt.store, view.SettingsFromPreferences(rt.store.Preferences()))
	rt.store.Subscribe(rt.stats.Invalidate)
	rt.store.Subscribe(rt.projector.Refresh)

	if !opts.providers {
		return rt, nil
	}

	timeout := cfg.Sync.RequestTimeout()
	rt.registry = provider.Build(ctx, logg,
		steam.Factory(cfg.Steam, timeout, rt.store, logg),
		retro.Factory(cfg.Retro, timeout, rt.store, logg),
		xbox.Factory(cfg.Xbox, timeout, rt.store, logg),
	)
	if rt.registry.Len() == 0 {
		logg.Warn("No platform is configured; set STEAM_*, RETRO_* or XBOX_* to sync")
	}

	var sinks []hubsync.Sink
	if opts.sinks {
		if rt.archive = rt.newArchive(ctx); rt.archive != nil {
			sinks = append(sinks, rt.archive)
		}
	}

	rt.sync = hubsync.NewService(cfg.Sync, hubsync.Deps{
		Registry: rt.registry,
		Store:    rt.store,
		Stats:    rt.stats,
		Lookup:   rt.newLookup(ctx),
		Sinks:    sinks,
		Logger:   logg.With(zap.String("component", "sync")),
	})
	return rt, nil
}

// newLookup builds the estimate lookup, cached in Redis when an address is configured.
func (rt *hub) newLookup(ctx context.Context) enrich.Lookup {
	if !rt.cfg.Enrich.Enabled {
		return nil
	}
	client := enrich.NewClient(rt.cfg.Enrich, rt.logger)
	if rt.cfg.Cache.Addr == "" {
		return client
	}

	rdb, err := enrich.NewRedisClient(ctx, rt.cfg.Cache)
	if err != nil {
		rt.logger.Warn("Estimate cache unavailable, querying directly", zap.Error(err))
		return client
	}
	rt.closers = append(rt.closers, rdb.Close)
	ttl := time.Duration(rt.cfg.Cache.TTLHours) * time.Hour
	return enrich.NewRedisCache(client, rdb, ttl, rt.logger)
}

func (rt *hub) newArchive(ctx context.Context) *archive.Service {
	if !rt.cfg.Database.Enabled {
		return nil
	}
	db, err := database.Connect(rt.cfg.Database)
	if err != nil {
		rt.logger.Warn("Optional archive database connection failed", zap.Error(err))
		return nil
	}
	if sqlDB, err := db.DB(); err == nil {
		rt.closers = append(rt.closers, sqlDB.Close)
	}

	svc := archive.NewService(db, rt.cfg.Archive, rt.logger)
	if err := svc.Prepare(ctx, rt.cfg.Archive.AutoMigrate); err != nil {
		rt.logger.Warn("Archive disabled", zap.Error(err))
		return nil
	}
	rt.logger.Info("Connected to archive database", zap.String("driver", rt.cfg.Database.Driver))
	return svc
}

func newBackup(ctx context.Context, cfg *config.Config, logg *zap.Logger) *backup.Service {
	if !cfg.Storage.Enabled {
		return nil
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Warn("Backups disabled", zap.Error(err))
		return nil
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		logg.Warn("Backups disabled", zap.Error(err))
		return nil
	}
	return backup.NewService(client, cfg.Storage, logg)
}

// close saves the library, unconditionally when force is set, and releases connections.
func (rt *hub) close(ctx context.Context, force bool) {
	if err := rt.store.Save(ctx, force); err != nil {
		rt.logger.Error("Final save failed", zap.Error(err))
	}
	for _, c := range rt.closers {
		_ = c()
	}
	_ = rt.logger.Sync()
}
