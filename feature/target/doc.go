// Package target reads and writes the managed inventory through GORM.
//
// The adapter owns the managed schema (see models) and enforces its referential rules
// on write: a device's location, an interface's device and a prefix's location must
// already exist, otherwise the write fails with a reconcile.ApplyError. Creates are
// idempotent through the natural-key unique indexes.
package target
