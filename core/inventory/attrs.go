package inventory

import (
	"slices"
	"strconv"
	"strings"
)

// Attrs is a normalized attribute set: canonical field name to canonical string value.
// An unset field is simply absent; the empty string is never stored.
type Attrs map[string]string

// FieldChange describes one differing attribute between a source and a target entity.
// An empty Source or Target value means the field is unset on that side.
type FieldChange struct {
	Field  string `json:"field"`
	Source string `json:"source"`
	Target string `json:"target"`
}

func (a Attrs) setString(field, v string) {
	if v = strings.TrimSpace(v); v != "" {
		a[field] = v
	}
}

func (a Attrs) setInt(field string, v *int64) {
	if v != nil {
		a[field] = strconv.FormatInt(*v, 10)
	}
}

func (a Attrs) setFloat(field string, v *float64) {
	if v != nil {
		a[field] = strconv.FormatFloat(*v, 'f', -1, 64)
	}
}

func (a Attrs) setBool(field string, v bool) {
	a[field] = strconv.FormatBool(v)
}

// Get returns the normalized value of a field; unset fields return "".
func (a Attrs) Get(field string) string {
	return strings.TrimSpace(a[field])
}

// Equal compares two attribute sets. Field order is irrelevant, and a field that is
// missing on one side equals a field holding only whitespace on the other.
func (a Attrs) Equal(b Attrs) bool {
	for field := range a {
		if a.Get(field) != b.Get(field) {
			return false
		}
	}
	for field := range b {
		if a.Get(field) != b.Get(field) {
			return false
		}
	}
	return true
}

// Changes lists the fields that differ between a source and a target attribute set,
// sorted by field name.
func Changes(source, target Attrs) []FieldChange {
	fields := make([]string, 0, len(source)+len(target))
	for field := range source {
		fields = append(fields, field)
	}
	for field := range target {
		if _, ok := source[field]; !ok {
			fields = append(fields, field)
		}
	}
	slices.Sort(fields)

	var changes []FieldChange
	for _, field := range fields {
		s, t := source.Get(field), target.Get(field)
		if s != t {
			changes = append(changes, FieldChange{Field: field, Source: s, Target: t})
		}
	}
	return changes
}
