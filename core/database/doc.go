// Package database handles database connections and schema inspection.
//
// It wraps GORM to open MySQL, PostgreSQL or SQLite connections from the application's
// configuration. The same Config type is used for the source record system and for the
// managed inventory.
//
// # Connect
//
// Connect opens the connection, applies pool limits and pings the server. The pool size
// doubles as the apply concurrency the target adapter declares to the run controller.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table for each supported dialect. The source
// adapter uses it once at startup to verify that every mapped column exists.
//
// # Usage
//
//	db, err := database.Connect(cfg.Source)
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "nc_devices")
package database
