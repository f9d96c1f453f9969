package target

import (
	"context"
	"fmt"

	"inventory-sync/core/reconcile"
	"inventory-sync/feature/target/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Adapter implements reconcile.TargetAdapter over the managed inventory database.
type Adapter struct {
	db          *gorm.DB
	concurrency int
	logger      *zap.Logger
}

// NewAdapter creates a target adapter. concurrency is the number of apply calls the
// connection pool serves at once; use database.MaxOpenConns of the target config.
func NewAdapter(db *gorm.DB, concurrency int, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{db: db, concurrency: concurrency, logger: logger}
}

// Name returns the unique name of this adapter.
func (a *Adapter) Name() string {
	return "target"
}

// Concurrency returns the maximum number of concurrent apply calls.
func (a *Adapter) Concurrency() int {
	return a.concurrency
}

// Ping checks that the managed inventory is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("%w: no database connection", reconcile.ErrTargetUnavailable)
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", reconcile.ErrTargetUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", reconcile.ErrTargetUnavailable, err)
	}
	return nil
}

// Migrate creates or updates the managed inventory tables.
func (a *Adapter) Migrate(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("%w: no database connection", reconcile.ErrTargetUnavailable)
	}
	if err := a.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate inventory schema: %w", err)
	}
	return nil
}
