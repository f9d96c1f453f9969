package source

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"inventory-sync/core/database"
	"inventory-sync/core/inventory"
	"inventory-sync/core/reconcile"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// TableMapping defines where one kind lives in the record system.
type TableMapping struct {
	// Table is the table (or view) holding the kind's rows.
	Table string `yaml:"table"`

	// Columns maps canonical field names to actual column names.
	Columns map[string]string `yaml:"columns"`
}

// Column returns the column mapped to a canonical field.
func (t TableMapping) Column(field string) (string, bool) {
	col, ok := t.Columns[field]
	return col, ok && col != ""
}

// Mapping is the complete field-mapping table of the source adapter.
type Mapping struct {
	Tables map[inventory.Kind]TableMapping `yaml:"tables"`
	Status map[string]string               `yaml:"status"`
}

// DefaultMapping returns the mapping of the reference record-system layout.
func DefaultMapping() Mapping {
	return Mapping{
		Tables: map[inventory.Kind]TableMapping{
			inventory.KindLocation: {
				Table: "nc_location",
				Columns: map[string]string{
					inventory.FieldName:         "nc_location_name",
					inventory.FieldLocationType: "nc_location_type",
					inventory.FieldStatus:       "nc_location_status",
					inventory.FieldDescription:  "nc_location_desc",
					inventory.FieldLatitude:     "nc_location_latitude",
					inventory.FieldLongitude:    "nc_location_longitude",
				},
			},
			inventory.KindDevice: {
				Table: "nc_device",
				Columns: map[string]string{
					inventory.FieldName:         "nc_device_name",
					inventory.FieldDeviceType:   "nc_device_type",
					inventory.FieldManufacturer: "nc_manufacturer",
					inventory.FieldRole:         "nc_device_role",
					inventory.FieldStatus:       "nc_device_status",
					inventory.FieldLocation:     "nc_location_name",
					inventory.FieldSerial:       "nc_serial_number",
					inventory.FieldPlatform:     "nc_platform",
					inventory.FieldComments:     "nc_comments",
				},
			},
			inventory.KindInterface: {
				Table: "nc_interface",
				Columns: map[string]string{
					inventory.FieldDevice:      "nc_device_name",
					inventory.FieldName:        "nc_interface_name",
					inventory.FieldType:        "nc_interface_type",
					inventory.FieldStatus:      "nc_interface_status",
					inventory.FieldEnabled:     "nc_interface_enabled",
					inventory.FieldDescription: "nc_interface_desc",
					inventory.FieldMACAddress:  "nc_mac_address",
					inventory.FieldMTU:         "nc_mtu",
				},
			},
			inventory.KindPrefix: {
				Table: "nc_prefix",
				Columns: map[string]string{
					inventory.FieldPrefix:      "nc_prefix_cidr",
					inventory.FieldNamespace:   "nc_namespace",
					inventory.FieldStatus:      "nc_prefix_status",
					inventory.FieldDescription: "nc_prefix_desc",
					inventory.FieldVRF:         "nc_vrf_name",
					inventory.FieldLocation:    "nc_location_name",
				},
			},
			inventory.KindIPAddress: {
				Table: "nc_ip_address",
				Columns: map[string]string{
					inventory.FieldAddress:     "nc_ip_address",
					inventory.FieldNamespace:   "nc_namespace",
					inventory.FieldStatus:      "nc_ip_status",
					inventory.FieldDNSName:     "nc_dns_name",
					inventory.FieldDescription: "nc_ip_desc",
				},
			},
			inventory.KindCircuit: {
				Table: "nc_circuit",
				Columns: map[string]string{
					inventory.FieldCID:         "nc_circuit_id",
					inventory.FieldProvider:    "nc_provider_name",
					inventory.FieldCircuitType: "nc_circuit_type",
					inventory.FieldStatus:      "nc_circuit_status",
					inventory.FieldDescription: "nc_circuit_desc",
					inventory.FieldCommitRate:  "nc_commit_rate",
					inventory.FieldComments:    "nc_circuit_comments",
				},
			},
		},
		Status: DefaultStatusMap(),
	}
}

// LoadMapping returns DefaultMapping overlaid with the YAML file at path. An empty path
// returns the default mapping. Table names and columns in the file replace the default
// ones field by field; a column mapped to "" removes it.
func LoadMapping(path string) (Mapping, error) {
	m := DefaultMapping()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, &reconcile.ConfigurationError{Field: "sync.mapping_file", Reason: err.Error()}
	}
	return m.Overlay(data)
}

// Overlay applies a YAML document on top of the mapping and returns the result. The
// receiver is not modified.
func (m Mapping) Overlay(data []byte) (Mapping, error) {
	var overlay Mapping
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Mapping{}, &reconcile.ConfigurationError{Field: "sync.mapping_file", Reason: err.Error()}
	}

	out := Mapping{
		Tables: make(map[inventory.Kind]TableMapping, len(m.Tables)),
		Status: mergeStatus(m.Status, overlay.Status),
	}
	for kind, tm := range m.Tables {
		out.Tables[kind] = TableMapping{Table: tm.Table, Columns: maps.Clone(tm.Columns)}
	}

	for rawKind, tm := range overlay.Tables {
		kind, err := inventory.ParseKind(string(rawKind))
		if err != nil {
			return Mapping{}, &reconcile.ConfigurationError{Field: "sync.mapping_file", Reason: err.Error()}
		}
		cur := out.Tables[kind]
		if tm.Table != "" {
			cur.Table = strings.TrimSpace(tm.Table)
		}
		if cur.Columns == nil {
			cur.Columns = make(map[string]string, len(tm.Columns))
		}
		for field, col := range tm.Columns {
			col = strings.TrimSpace(col)
			if col == "" {
				delete(cur.Columns, field)
				continue
			}
			cur.Columns[field] = col
		}
		out.Tables[kind] = cur
	}
	return out, nil
}

// Validate checks the mapping without touching a database: every kind has a table,
// every natural-key field is mapped, and only canonical fields are mapped.
func (m Mapping) Validate() error {
	var errs []error
	for _, kind := range inventory.Kinds() {
		prefix := fmt.Sprintf("sync.mapping.%s", kind)
		tm, ok := m.Tables[kind]
		if !ok || strings.TrimSpace(tm.Table) == "" {
			errs = append(errs, &reconcile.ConfigurationError{Field: prefix + ".table", Reason: "no table mapped"})
			continue
		}
		schema := inventory.SchemaFor(kind)
		for _, field := range schema.KeyFields {
			if _, ok := tm.Column(field); !ok {
				// Scoping fields with a default (namespace) may stay unmapped.
				if field == inventory.FieldNamespace {
					continue
				}
				errs = append(errs, &reconcile.ConfigurationError{
					Field:  prefix + ".columns." + field,
					Reason: "natural-key field is not mapped",
				})
			}
		}
		for _, field := range slices.Sorted(maps.Keys(tm.Columns)) {
			if !schema.HasField(field) {
				errs = append(errs, &reconcile.ConfigurationError{
					Field:  prefix + ".columns." + field,
					Reason: fmt.Sprintf("unknown %s field", kind),
				})
			}
		}
	}
	return errors.Join(errs...)
}

// ResolveMapping validates the mapping and then checks every mapped table and column
// against the live schema of db. All problems are reported together.
func ResolveMapping(ctx context.Context, db *gorm.DB, m Mapping) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("%w: no source database", reconcile.ErrSourceUnavailable)
	}

	var errs []error
	for _, kind := range inventory.Kinds() {
		tm := m.Tables[kind]
		columns, err := database.ColumnSet(db.WithContext(ctx), tm.Table)
		if err != nil {
			return fmt.Errorf("%w: %v", reconcile.ErrSourceUnavailable, err)
		}
		prefix := fmt.Sprintf("sync.mapping.%s", kind)
		if len(columns) == 0 {
			errs = append(errs, &reconcile.ConfigurationError{
				Field:  prefix + ".table",
				Reason: fmt.Sprintf("table %s not found", tm.Table),
			})
			continue
		}
		for _, field := range slices.Sorted(maps.Keys(tm.Columns)) {
			col := tm.Columns[field]
			if _, ok := columns[strings.ToLower(col)]; !ok {
				errs = append(errs, &reconcile.ConfigurationError{
					Field:  prefix + ".columns." + field,
					Reason: fmt.Sprintf("column %s.%s not found", tm.Table, col),
				})
			}
		}
	}
	return errors.Join(errs...)
}
