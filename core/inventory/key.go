package inventory

import "strings"

// Key is the natural key of an entity. Name is the identifying value; Scope
// qualifies it where the name alone is not unique (the parent device of an
// interface, the namespace of a prefix, the provider of a circuit).
//
// Key is comparable and used directly as a map key.
type Key struct {
	Scope string
	Name  string
}

// NewKey returns an unscoped key.
func NewKey(name string) Key {
	return Key{Name: strings.TrimSpace(name)}
}

// ScopedKey returns a key qualified by scope.
func ScopedKey(scope, name string) Key {
	return Key{Scope: strings.TrimSpace(scope), Name: strings.TrimSpace(name)}
}

// IsZero reports whether the key has no name.
func (k Key) IsZero() bool {
	return k.Name == ""
}

// String renders the key for reports and logs.
func (k Key) String() string {
	if k.Scope == "" {
		return k.Name
	}
	return k.Scope + "::" + k.Name
}

// MarshalText renders the key as its string form in JSON reports.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Compare orders keys by scope, then name.
func (k Key) Compare(o Key) int {
	if c := strings.Compare(k.Scope, o.Scope); c != 0 {
		return c
	}
	return strings.Compare(k.Name, o.Name)
}

// UnmarshalText parses the string form. The first "::" separates scope from name, so
// unscoped names containing "::" do not survive a round trip.
func (k *Key) UnmarshalText(text []byte) error {
	scope, name, ok := strings.Cut(string(text), "::")
	if !ok {
		*k = NewKey(scope)
		return nil
	}
	*k = ScopedKey(scope, name)
	return nil
}
