// Package source reads the authoritative record system over SQL and maps its rows into
// canonical inventory entities.
//
// The record system's schema is not fixed. A Mapping names, per entity kind, the table to
// read and the column holding each canonical field. DefaultMapping carries the common
// layout; a YAML file can override any table or column:
//
//	tables:
//	  device:
//	    table: ne_inventory
//	    columns:
//	      name: ne_name
//	      serial: ne_serial_no
//	status:
//	  in_service: active
//
// ResolveMapping checks every mapped column against the live schema once, before a run,
// so a renamed column surfaces as a configuration error rather than as silently empty
// attributes.
package source
