// Package inventory defines the canonical entity model shared by the source adapter,
// the target adapter and the reconciliation engine.
//
// Six entity kinds are modelled: locations, devices, interfaces, IP prefixes,
// IP addresses and circuits. Every kind exposes the same capability set through
// the Entity interface:
//
//   - Key: the natural key, a stable externally meaningful identifier (never a surrogate ID).
//   - Attributes: the normalized, comparable non-key fields, including references to
//     other entities expressed by their natural key.
//   - Relations: the subset of attributes that reference other entities.
//
// # Normalization
//
// Attribute sets treat absent, null and empty-string values identically ("unset").
// Equality over attribute sets is order independent. Keys for prefixes and IP
// addresses are canonicalized (parsed and re-rendered) so that textual variations
// of the same network do not produce spurious creates.
//
// # Snapshots
//
// A Snapshot is an immutable mapping of natural key to entity for one system and one
// kind. Build it with a SnapshotBuilder; rows that could not be mapped are recorded as
// rejects so they are reported rather than treated as missing.
package inventory
