package source

import (
	"testing"

	"inventory-sync/core/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordSystemDDL creates the default-mapping tables of the record system.
var recordSystemDDL = []string{
	`CREATE TABLE nc_location (
		nc_location_name TEXT, nc_location_type TEXT, nc_location_status TEXT,
		nc_location_desc TEXT, nc_location_latitude REAL, nc_location_longitude REAL)`,
	`CREATE TABLE nc_device (
		nc_device_name TEXT, nc_device_type TEXT, nc_manufacturer TEXT, nc_device_role TEXT,
		nc_device_status TEXT, nc_location_name TEXT, nc_serial_number TEXT, nc_platform TEXT,
		nc_comments TEXT)`,
	`CREATE TABLE nc_interface (
		nc_device_name TEXT, nc_interface_name TEXT, nc_interface_type TEXT,
		nc_interface_status TEXT, nc_interface_enabled INTEGER, nc_interface_desc TEXT,
		nc_mac_address TEXT, nc_mtu INTEGER)`,
	`CREATE TABLE nc_prefix (
		nc_prefix_cidr TEXT, nc_namespace TEXT, nc_prefix_status TEXT, nc_prefix_desc TEXT,
		nc_vrf_name TEXT, nc_location_name TEXT)`,
	`CREATE TABLE nc_ip_address (
		nc_ip_address TEXT, nc_namespace TEXT, nc_ip_status TEXT, nc_dns_name TEXT, nc_ip_desc TEXT)`,
	`CREATE TABLE nc_circuit (
		nc_circuit_id TEXT, nc_provider_name TEXT, nc_circuit_type TEXT, nc_circuit_status TEXT,
		nc_circuit_desc TEXT, nc_commit_rate INTEGER, nc_circuit_comments TEXT)`,
}

func newRecordSystem(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	for _, ddl := range recordSystemDDL {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}
