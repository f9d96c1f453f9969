package inventory

import (
	"fmt"
	"slices"
)

// Reject records a source row that could not be mapped to a canonical entity.
// Key is set when the natural key could be read before mapping failed.
type Reject struct {
	Row    int    `json:"row"`
	Key    Key    `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// Snapshot is an immutable mapping of natural key to entity for one system and one kind.
// It is safe for concurrent reads.
type Snapshot struct {
	kind     Kind
	entities map[Key]Entity
	keys     []Key
	rejects  []Reject
	rejected map[Key]struct{}
}

// Kind returns the entity kind held by the snapshot.
func (s *Snapshot) Kind() Kind { return s.kind }

// Len returns the number of entities.
func (s *Snapshot) Len() int { return len(s.keys) }

// Get returns the entity stored under key.
func (s *Snapshot) Get(key Key) (Entity, bool) {
	e, ok := s.entities[key]
	return e, ok
}

// Keys returns the natural keys in sorted order.
func (s *Snapshot) Keys() []Key {
	return slices.Clone(s.keys)
}

// Entities returns the entities in key order.
func (s *Snapshot) Entities() []Entity {
	out := make([]Entity, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.entities[k])
	}
	return out
}

// Rejects returns the rows excluded from the snapshot.
func (s *Snapshot) Rejects() []Reject {
	return slices.Clone(s.rejects)
}

// RejectedKey reports whether a row carrying key was rejected.
func (s *Snapshot) RejectedKey(key Key) bool {
	_, ok := s.rejected[key]
	return ok
}

// SnapshotBuilder accumulates entities for one kind. It is not safe for concurrent use.
type SnapshotBuilder struct {
	snap *Snapshot
}

// NewSnapshotBuilder starts an empty snapshot of kind.
func NewSnapshotBuilder(kind Kind) *SnapshotBuilder {
	return &SnapshotBuilder{snap: &Snapshot{
		kind:     kind,
		entities: make(map[Key]Entity),
		rejected: make(map[Key]struct{}),
	}}
}

// Add stores an entity. Entities of another kind, with an empty key, or with a key that
// is already present are refused.
func (b *SnapshotBuilder) Add(e Entity) error {
	if e.Kind() != b.snap.kind {
		return fmt.Errorf("entity of kind %s added to %s snapshot", e.Kind(), b.snap.kind)
	}
	key := e.Key()
	if key.IsZero() {
		return fmt.Errorf("%s entity has an empty natural key", b.snap.kind)
	}
	if _, ok := b.snap.entities[key]; ok {
		return fmt.Errorf("duplicate natural key %s", key)
	}
	b.snap.entities[key] = e
	b.snap.keys = append(b.snap.keys, key)
	return nil
}

// Reject records a row excluded from the snapshot.
func (b *SnapshotBuilder) Reject(r Reject) {
	b.snap.rejects = append(b.snap.rejects, r)
	if !r.Key.IsZero() {
		b.snap.rejected[r.Key] = struct{}{}
	}
}

// Build returns the snapshot. The builder must not be used afterwards.
func (b *SnapshotBuilder) Build() *Snapshot {
	s := b.snap
	b.snap = nil
	slices.SortFunc(s.keys, Key.Compare)
	return s
}

// NewSnapshot builds a snapshot from entities, failing on the first refused entity.
func NewSnapshot(kind Kind, entities ...Entity) (*Snapshot, error) {
	b := NewSnapshotBuilder(kind)
	for _, e := range entities {
		if err := b.Add(e); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
