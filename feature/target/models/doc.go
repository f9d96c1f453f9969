// Package models defines the GORM models of the managed inventory schema and their
// conversion to and from canonical entities.
//
// Relations are stored as foreign keys; the canonical form carries the related
// entity's natural key instead, so every conversion to an entity expects the related
// row to be preloaded.
package models
