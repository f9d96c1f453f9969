package source

import (
	"context"
	"fmt"
	"strings"

	"inventory-sync/core/inventory"
	"inventory-sync/core/reconcile"
	"inventory-sync/core/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Adapter implements reconcile.SourceAdapter over a SQL record system.
type Adapter struct {
	db      *gorm.DB
	mapping Mapping
	logger  *zap.Logger
}

// NewAdapter creates a source adapter reading db through mapping.
func NewAdapter(db *gorm.DB, mapping Mapping, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{db: db, mapping: mapping, logger: logger}
}

// Name returns the unique name of this adapter.
func (a *Adapter) Name() string {
	return "source"
}

// Mapping returns the field mapping in use.
func (a *Adapter) Mapping() Mapping {
	return a.mapping
}

// Ping checks that the record system is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("%w: no database connection", reconcile.ErrSourceUnavailable)
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", reconcile.ErrSourceUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", reconcile.ErrSourceUnavailable, err)
	}
	return nil
}

// FetchSnapshot reads every row of the kind's table. Rows that cannot be mapped, and
// rows repeating a natural key already read, are recorded as rejects.
func (a *Adapter) FetchSnapshot(ctx context.Context, kind inventory.Kind) (*inventory.Snapshot, error) {
	if a.db == nil {
		return nil, fmt.Errorf("%w: no database connection", reconcile.ErrSourceUnavailable)
	}
	tm, ok := a.mapping.Tables[kind]
	if !ok || tm.Table == "" {
		return nil, &reconcile.ConfigurationError{Field: fmt.Sprintf("sync.mapping.%s.table", kind), Reason: "no table mapped"}
	}

	query := a.selectQuery(kind, tm)
	dbRows, err := a.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %v", reconcile.ErrSourceUnavailable, tm.Table, err)
	}
	defer dbRows.Close()

	// Columns come back under their canonical aliases.
	columns, err := dbRows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get columns: %v", reconcile.ErrSourceUnavailable, err)
	}

	l := a.logger.With(zap.String("kind", kind.String()), zap.String("table", tm.Table))
	builder := inventory.NewSnapshotBuilder(kind)
	row := 0
	for dbRows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := dbRows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("%w: failed to scan row %d: %v", reconcile.ErrSourceUnavailable, row, err)
		}

		fields := make(inventory.Fields, len(columns))
		for i, col := range columns {
			fields[strings.ToLower(col)] = values[i]
		}
		fields[inventory.FieldStatus] = a.mapping.NormalizeStatus(fields[inventory.FieldStatus])

		if reject, ok := a.add(builder, kind, row, fields); !ok {
			l.Warn("Rejected source row",
				zap.Int("row", reject.Row),
				zap.Stringer("key", reject.Key),
				zap.String("reason", reject.Reason),
			)
			builder.Reject(reject)
		}
		row++
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", reconcile.ErrSourceUnavailable, tm.Table, err)
	}

	snap := builder.Build()
	l.Debug("Loaded source snapshot", zap.Int("rows", row), zap.Int("entities", snap.Len()))
	return snap, nil
}

func (a *Adapter) add(builder *inventory.SnapshotBuilder, kind inventory.Kind, row int, fields inventory.Fields) (inventory.Reject, bool) {
	entity, err := inventory.Decode(kind, fields)
	if err != nil {
		return inventory.Reject{Row: row, Key: rawKey(kind, fields), Reason: err.Error()}, false
	}
	if err := builder.Add(entity); err != nil {
		return inventory.Reject{Row: row, Key: entity.Key(), Reason: err.Error()}, false
	}
	return inventory.Reject{}, true
}

// selectQuery builds the SELECT of one kind with every mapped column aliased to its
// canonical field, ordered by the natural-key columns.
func (a *Adapter) selectQuery(kind inventory.Kind, tm TableMapping) string {
	stmt := a.db.Statement
	schema := inventory.SchemaFor(kind)

	var selects, order []string
	for _, field := range schema.Fields() {
		col, ok := tm.Column(field)
		if !ok {
			continue
		}
		selects = append(selects, fmt.Sprintf("%s AS %s", stmt.Quote(col), stmt.Quote(field)))
	}
	for _, field := range schema.KeyFields {
		if col, ok := tm.Column(field); ok {
			order = append(order, stmt.Quote(col))
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), stmt.Quote(tm.Table))
	if len(order) > 0 {
		query += " ORDER BY " + strings.Join(order, ", ")
	}
	return query
}

// rawKey derives the natural key of a row that failed mapping, from the raw key values.
// A row whose key cannot be read yields the zero key.
func rawKey(kind inventory.Kind, f inventory.Fields) inventory.Key {
	str := func(field string) string { return utils.ToString(f[field]) }
	switch kind {
	case inventory.KindInterface:
		if str(inventory.FieldDevice) == "" {
			return inventory.Key{}
		}
		return inventory.ScopedKey(str(inventory.FieldDevice), str(inventory.FieldName))
	case inventory.KindPrefix, inventory.KindIPAddress:
		field := inventory.FieldPrefix
		if kind == inventory.KindIPAddress {
			field = inventory.FieldAddress
		}
		ns := str(inventory.FieldNamespace)
		if ns == "" {
			ns = inventory.DefaultNamespace
		}
		name := str(field)
		if canon, err := canonical(kind, name); err == nil {
			name = canon
		}
		return inventory.ScopedKey(ns, name)
	case inventory.KindCircuit:
		provider := str(inventory.FieldProvider)
		if provider == "" {
			provider = inventory.DefaultUnknown
		}
		return inventory.ScopedKey(provider, str(inventory.FieldCID))
	default:
		return inventory.NewKey(str(inventory.FieldName))
	}
}

func canonical(kind inventory.Kind, v string) (string, error) {
	if kind == inventory.KindPrefix {
		return inventory.CanonicalPrefix(v)
	}
	return inventory.CanonicalAddress(v)
}
