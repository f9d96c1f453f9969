package reconcile

import (
	"slices"

	"inventory-sync/core/inventory"
)

// DiffResult partitions the keys of one kind. ToCreate, ToUpdate and Unchanged are
// disjoint; TargetOnly is informational. All key lists are sorted.
type DiffResult struct {
	Kind       inventory.Kind
	ToCreate   []inventory.Key
	ToUpdate   []inventory.Key
	Unchanged  []inventory.Key
	TargetOnly []inventory.Key
	// Changes holds the differing fields of every key in ToUpdate.
	Changes map[inventory.Key][]inventory.FieldChange
}

// Diff computes the key partition between a source and a target snapshot of the same
// kind. Relations are compared by natural key equality as part of the attribute sets;
// the referenced entities are never looked up.
//
// A target key whose source row was rejected is neither target_only nor unchanged: it
// is left out of the partition and surfaces through the source rejects instead.
func Diff(source, target *inventory.Snapshot) DiffResult {
	result := DiffResult{
		Kind:    source.Kind(),
		Changes: make(map[inventory.Key][]inventory.FieldChange),
	}

	for _, key := range source.Keys() {
		src, _ := source.Get(key)
		tgt, exists := target.Get(key)
		if !exists {
			result.ToCreate = append(result.ToCreate, key)
			continue
		}

		srcAttrs, tgtAttrs := src.Attributes(), tgt.Attributes()
		if srcAttrs.Equal(tgtAttrs) {
			result.Unchanged = append(result.Unchanged, key)
			continue
		}
		result.ToUpdate = append(result.ToUpdate, key)
		result.Changes[key] = inventory.Changes(srcAttrs, tgtAttrs)
	}

	for _, key := range target.Keys() {
		if _, ok := source.Get(key); ok || source.RejectedKey(key) {
			continue
		}
		result.TargetOnly = append(result.TargetOnly, key)
	}

	// Snapshot keys are already sorted; keep the guarantee explicit for callers.
	for _, keys := range [][]inventory.Key{result.ToCreate, result.ToUpdate, result.Unchanged, result.TargetOnly} {
		slices.SortFunc(keys, inventory.Key.Compare)
	}
	return result
}

// Pending returns the number of keys that need a decision.
func (d DiffResult) Pending() int {
	return len(d.ToCreate) + len(d.ToUpdate)
}
