package target

import (
	"context"
	"errors"
	"fmt"

	"inventory-sync/core/inventory"
	"inventory-sync/core/reconcile"
	"inventory-sync/feature/target/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// updateColumns lists the columns an update writes, per kind. Natural-key columns are
// never rewritten, except prefix and address, which are rewritten in canonical notation.
var updateColumns = map[inventory.Kind][]string{
	inventory.KindLocation:  {"location_type", "status", "description", "latitude", "longitude"},
	inventory.KindDevice:    {"device_type", "manufacturer", "role", "status", "location_id", "serial", "platform", "comments"},
	inventory.KindInterface: {"type", "status", "enabled", "description", "mac_address", "mtu"},
	inventory.KindPrefix:    {"prefix", "status", "description", "vrf", "location_id"},
	inventory.KindIPAddress: {"address", "status", "dns_name", "description"},
	inventory.KindCircuit:   {"circuit_type", "status", "description", "commit_rate", "comments"},
}

// errNotFound marks a natural key with no matching row.
var errNotFound = errors.New("record not found")

// ApplyCreate inserts the entity. A row that already exists under the same natural key
// is left untouched.
func (a *Adapter) ApplyCreate(ctx context.Context, e inventory.Entity) error {
	if a.db == nil {
		return fmt.Errorf("%w: no database connection", reconcile.ErrTargetUnavailable)
	}
	db := a.db.WithContext(ctx)

	row, err := a.row(db, e)
	if err != nil {
		return applyError(e.Kind(), e.Key(), reconcile.ChangeCreate, err)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return applyError(e.Kind(), e.Key(), reconcile.ChangeCreate, err)
	}
	return nil
}

// ApplyUpdate rewrites the attribute columns of the row identified by key.
func (a *Adapter) ApplyUpdate(ctx context.Context, key inventory.Key, e inventory.Entity) error {
	if a.db == nil {
		return fmt.Errorf("%w: no database connection", reconcile.ErrTargetUnavailable)
	}
	db := a.db.WithContext(ctx)
	kind := e.Kind()

	id, err := findID(db, kind, key)
	if err != nil {
		return applyError(kind, key, reconcile.ChangeUpdate, err)
	}
	row, err := a.row(db, e)
	if err != nil {
		return applyError(kind, key, reconcile.ChangeUpdate, err)
	}
	if err := setID(row, id); err != nil {
		return applyError(kind, key, reconcile.ChangeUpdate, err)
	}

	res := db.Model(row).Select(updateColumns[kind]).Updates(row)
	if res.Error != nil {
		return applyError(kind, key, reconcile.ChangeUpdate, res.Error)
	}
	return nil
}

// row builds the model of e with every relation resolved to its row ID.
func (a *Adapter) row(db *gorm.DB, e inventory.Entity) (any, error) {
	switch v := e.(type) {
	case *inventory.Location:
		row := models.NewLocation(v)
		return &row, nil

	case *inventory.Device:
		row := models.NewDevice(v)
		id, err := optionalRef(db, inventory.KindLocation, v.Location)
		if err != nil {
			return nil, err
		}
		row.LocationID = id
		return &row, nil

	case *inventory.Interface:
		row := models.NewInterface(v)
		id, err := findID(db, inventory.KindDevice, inventory.NewKey(v.Device))
		if err != nil {
			return nil, relationError(inventory.KindDevice, v.Device, err)
		}
		row.DeviceID = id
		return &row, nil

	case *inventory.Prefix:
		row := models.NewPrefix(v)
		id, err := optionalRef(db, inventory.KindLocation, v.Location)
		if err != nil {
			return nil, err
		}
		row.LocationID = id
		return &row, nil

	case *inventory.IPAddress:
		row := models.NewIPAddress(v)
		return &row, nil

	case *inventory.Circuit:
		row := models.NewCircuit(v)
		return &row, nil
	}
	return nil, fmt.Errorf("unsupported entity %T", e)
}

// optionalRef resolves a relation that may be unset. A set relation must exist.
func optionalRef(db *gorm.DB, kind inventory.Kind, name string) (*uint, error) {
	if name == "" {
		return nil, nil
	}
	id, err := findID(db, kind, inventory.NewKey(name))
	if err != nil {
		return nil, relationError(kind, name, err)
	}
	return &id, nil
}

// findID returns the primary key of the row holding a natural key.
func findID(db *gorm.DB, kind inventory.Kind, key inventory.Key) (uint, error) {
	q := db
	switch kind {
	case inventory.KindLocation:
		q = q.Model(&models.Location{}).Where("name = ?", key.Name)
	case inventory.KindDevice:
		q = q.Model(&models.Device{}).Where("name = ?", key.Name)
	case inventory.KindInterface:
		deviceID, err := findID(db, inventory.KindDevice, inventory.NewKey(key.Scope))
		if err != nil {
			return 0, relationError(inventory.KindDevice, key.Scope, err)
		}
		q = q.Model(&models.Interface{}).Where("device_id = ? AND name = ?", deviceID, key.Name)
	case inventory.KindPrefix:
		return findNetworkID(db.Model(&models.Prefix{}), "prefix", key, inventory.CanonicalPrefix)
	case inventory.KindIPAddress:
		return findNetworkID(db.Model(&models.IPAddress{}), "address", key, inventory.CanonicalAddress)
	case inventory.KindCircuit:
		q = q.Model(&models.Circuit{}).Where("provider = ? AND cid = ?", key.Scope, key.Name)
	default:
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}

	var ids []uint
	if err := q.Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, errNotFound
	}
	return ids[0], nil
}

// findNetworkID looks a prefix or address up by its canonical key. Rows stored in another
// notation (upper-case or uncompressed IPv6) are matched by canonicalizing the rows of the
// namespace.
func findNetworkID(q *gorm.DB, column string, key inventory.Key, canon func(string) (string, error)) (uint, error) {
	var ids []uint
	if err := q.Session(&gorm.Session{}).Where("namespace = ? AND "+column+" = ?", key.Scope, key.Name).
		Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		return ids[0], nil
	}

	var rows []struct {
		ID    uint
		Value string
	}
	if err := q.Session(&gorm.Session{}).Select("id, "+column+" AS value").Where("namespace = ?", key.Scope).
		Order("id").Scan(&rows).Error; err != nil {
		return 0, err
	}
	for _, row := range rows {
		if c, err := canon(row.Value); err == nil && c == key.Name {
			return row.ID, nil
		}
	}
	return 0, errNotFound
}

func setID(row any, id uint) error {
	switch r := row.(type) {
	case *models.Location:
		r.ID = id
	case *models.Device:
		r.ID = id
	case *models.Interface:
		r.ID = id
	case *models.Prefix:
		r.ID = id
	case *models.IPAddress:
		r.ID = id
	case *models.Circuit:
		r.ID = id
	default:
		return fmt.Errorf("unsupported row %T", row)
	}
	return nil
}

// relationError reports a missing related row as a validation failure.
func relationError(kind inventory.Kind, name string, err error) error {
	if errors.Is(err, errNotFound) {
		return fmt.Errorf("%s %q does not exist", kind, name)
	}
	return err
}

func applyError(kind inventory.Kind, key inventory.Key, op reconcile.Change, err error) error {
	return &reconcile.ApplyError{
		Kind:   kind,
		Key:    key,
		Op:     op,
		Reason: err.Error(),
		Err:    err,
	}
}
