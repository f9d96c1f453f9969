package cmd

import (
	"context"
	"fmt"

	"inventory-sync/core/config"
	"inventory-sync/core/database"
	"inventory-sync/core/logger"
	"inventory-sync/core/storage"
	"inventory-sync/feature/inventorysync"
	"inventory-sync/feature/source"
	"inventory-sync/feature/target"

	"go.uber.org/zap"
)

// loadConfig loads and validates the configuration and builds the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// openSource connects to the record system and checks the field mapping against its
// live schema.
func openSource(ctx context.Context, cfg *config.Config, l *zap.Logger) (*source.Adapter, error) {
	mapping, err := source.LoadMapping(cfg.Sync.MappingFile)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to record system: %w", err)
	}
	l.Info("Connected to record system",
		zap.String("driver", cfg.Source.Driver),
		zap.String("database", cfg.Source.Name))

	if err := source.ResolveMapping(ctx, db, mapping); err != nil {
		return nil, fmt.Errorf("invalid source mapping: %w", err)
	}
	return source.NewAdapter(db, mapping, l.Named("source")), nil
}

// openTarget connects to the managed inventory. Apply concurrency follows the pool size.
func openTarget(cfg *config.Config, l *zap.Logger) (*target.Adapter, error) {
	db, err := database.Connect(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to inventory: %w", err)
	}
	l.Info("Connected to inventory",
		zap.String("driver", cfg.Target.Driver),
		zap.String("database", cfg.Target.Name))

	return target.NewAdapter(db, database.MaxOpenConns(cfg.Target), l.Named("target")), nil
}

// openArchive returns the report archive, or nil when archiving is disabled.
func openArchive(ctx context.Context, cfg *config.Config, l *zap.Logger) (*inventorysync.Archive, error) {
	if !cfg.Sync.ArchiveReports {
		return nil, nil
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return nil, err
	}
	l.Info("Archiving run reports",
		zap.String("bucket", cfg.Storage.Bucket),
		zap.String("prefix", cfg.Storage.Prefix))
	return inventorysync.NewArchive(client, cfg.Storage, l.Named("archive")), nil
}
