package inventory

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies one of the six synchronized entity kinds.
type Kind string

const (
	KindLocation  Kind = "location"
	KindDevice    Kind = "device"
	KindInterface Kind = "interface"
	KindPrefix    Kind = "prefix"
	KindIPAddress Kind = "ip_address"
	KindCircuit   Kind = "circuit"
)

// dependencyOrder is the mandatory reconciliation order: later kinds reference
// earlier kinds by natural key.
var dependencyOrder = []Kind{
	KindLocation,
	KindDevice,
	KindInterface,
	KindPrefix,
	KindIPAddress,
	KindCircuit,
}

var kindAliases = map[string]Kind{
	"location":     KindLocation,
	"locations":    KindLocation,
	"site":         KindLocation,
	"sites":        KindLocation,
	"device":       KindDevice,
	"devices":      KindDevice,
	"interface":    KindInterface,
	"interfaces":   KindInterface,
	"prefix":       KindPrefix,
	"prefixes":     KindPrefix,
	"ip_address":   KindIPAddress,
	"ip_addresses": KindIPAddress,
	"ipaddress":    KindIPAddress,
	"ip":           KindIPAddress,
	"circuit":      KindCircuit,
	"circuits":     KindCircuit,
}

// Kinds returns all kinds in dependency order.
func Kinds() []Kind {
	return slices.Clone(dependencyOrder)
}

// IsValid returns true if the kind is one of the six known kinds.
func (k Kind) IsValid() bool {
	return slices.Contains(dependencyOrder, k)
}

// Rank returns the position of the kind in the dependency order, or -1.
func (k Kind) Rank() int {
	return slices.Index(dependencyOrder, k)
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind resolves a user supplied kind name. Plural forms and a few common
// aliases ("sites", "ip") are accepted; '-' is treated as '_'.
func ParseKind(s string) (Kind, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// ParseKinds resolves a list of kind names, removes duplicates and returns them in
// dependency order. An empty list selects every kind.
func ParseKinds(names []string) ([]Kind, error) {
	selected := make(map[Kind]struct{})
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		selected[k] = struct{}{}
	}
	if len(selected) == 0 {
		return Kinds(), nil
	}

	kinds := make([]Kind, 0, len(selected))
	for _, k := range dependencyOrder {
		if _, ok := selected[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}
