package target

import (
	"context"
	"fmt"

	"inventory-sync/core/inventory"
	"inventory-sync/core/reconcile"
	"inventory-sync/feature/target/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FetchSnapshot loads every record of the kind with its relations preloaded.
func (a *Adapter) FetchSnapshot(ctx context.Context, kind inventory.Kind) (*inventory.Snapshot, error) {
	if a.db == nil {
		return nil, fmt.Errorf("%w: no database connection", reconcile.ErrTargetUnavailable)
	}
	db := a.db.WithContext(ctx)

	var (
		entities []inventory.Entity
		err      error
	)
	switch kind {
	case inventory.KindLocation:
		entities, err = load(db, models.Location.ToEntity)
	case inventory.KindDevice:
		entities, err = load(db.Preload("Location"), models.Device.ToEntity)
	case inventory.KindInterface:
		entities, err = load(db.Preload("Device"), models.Interface.ToEntity)
	case inventory.KindPrefix:
		entities, err = load(db.Preload("Location"), models.Prefix.ToEntity)
	case inventory.KindIPAddress:
		entities, err = load(db, models.IPAddress.ToEntity)
	case inventory.KindCircuit:
		entities, err = load(db, models.Circuit.ToEntity)
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load %s records: %v", reconcile.ErrTargetUnavailable, kind, err)
	}

	builder := inventory.NewSnapshotBuilder(kind)
	for _, e := range entities {
		if err := builder.Add(e); err != nil {
			// Rows whose stored keys only differ in notation collapse to one key; the first wins.
			a.logger.Warn("Skipping target record",
				zap.String("kind", kind.String()),
				zap.Stringer("key", e.Key()),
				zap.Error(err),
			)
		}
	}
	return builder.Build(), nil
}

// load reads every row of model M ordered by primary key and converts it with conv.
func load[M any, E inventory.Entity](db *gorm.DB, conv func(M) E) ([]inventory.Entity, error) {
	var rows []M
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Entity, 0, len(rows))
	for _, row := range rows {
		out = append(out, conv(row))
	}
	return out, nil
}
