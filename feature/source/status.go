package source

import (
	"maps"
	"strings"

	"inventory-sync/core/inventory"
	"inventory-sync/core/utils"
)

// DefaultStatusMap translates record-system status values into inventory status slugs.
func DefaultStatusMap() map[string]string {
	return map[string]string{
		"active":         "active",
		"enabled":        "active",
		"up":             "active",
		"operational":    "active",
		"inactive":       "decommissioned",
		"disabled":       "decommissioned",
		"down":           "failed",
		"planned":        "planned",
		"staged":         "staged",
		"reserved":       "reserved",
		"decommissioned": "decommissioned",
		"failed":         "failed",
	}
}

// NormalizeStatus maps a raw status value through the status table. Lookup is
// case-insensitive. Blank and unknown values become the default status.
func (m Mapping) NormalizeStatus(raw any) string {
	s := strings.ToLower(utils.ToString(raw))
	if s == "" {
		return inventory.DefaultStatus
	}
	if v, ok := m.Status[s]; ok && v != "" {
		return v
	}
	return inventory.DefaultStatus
}

func mergeStatus(base, overlay map[string]string) map[string]string {
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]string, len(overlay))
	}
	for k, v := range overlay {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}
