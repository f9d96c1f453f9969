package reconcile

import (
	"strings"

	"inventory-sync/core/inventory"
)

// StrategyConfig holds the configured strategy of each kind. Empty values select the
// default strategy.
type StrategyConfig struct {
	Location  string `mapstructure:"location" default:""`
	Device    string `mapstructure:"device" default:""`
	Interface string `mapstructure:"interface" default:""`
	Prefix    string `mapstructure:"prefix" default:""`
	IPAddress string `mapstructure:"ip_address" default:""`
	Circuit   string `mapstructure:"circuit" default:""`
}

func (s StrategyConfig) byKind() map[inventory.Kind]string {
	return map[inventory.Kind]string{
		inventory.KindLocation:  s.Location,
		inventory.KindDevice:    s.Device,
		inventory.KindInterface: s.Interface,
		inventory.KindPrefix:    s.Prefix,
		inventory.KindIPAddress: s.IPAddress,
		inventory.KindCircuit:   s.Circuit,
	}
}

// Config holds configuration for sync runs.
type Config struct {
	// Strategy is the conflict strategy per entity kind (overwrite, skip, flag).
	Strategy StrategyConfig `mapstructure:"strategy"`
	// DryRun computes decisions without writing to the target.
	DryRun bool `mapstructure:"dry_run" default:"false"`
	// Workers bounds concurrent apply calls within one kind.
	Workers int `mapstructure:"workers" default:"8"`
	// Kinds is a comma separated list of kinds to reconcile. Empty selects all.
	Kinds string `mapstructure:"kinds" default:""`
	// MappingFile is an optional YAML file overriding the source field mapping.
	MappingFile string `mapstructure:"mapping_file" default:""`
	// ArchiveReports stores every run report in object storage.
	ArchiveReports bool `mapstructure:"archive_reports" default:"false"`
}

// Policy builds the per-kind policy. Unknown strategy names are configuration errors.
func (c Config) Policy() (Policy, error) {
	policy := make(Policy)
	for kind, raw := range c.Strategy.byKind() {
		s, err := ParseStrategy(raw)
		if err != nil {
			return nil, &ConfigurationError{Field: "sync.strategy." + string(kind), Reason: err.Error()}
		}
		policy[kind] = s
	}
	return policy, nil
}

// Options validates the configuration and converts it into run options.
func (c Config) Options() (Options, error) {
	policy, err := c.Policy()
	if err != nil {
		return Options{}, err
	}
	if c.Workers <= 0 {
		return Options{}, &ConfigurationError{Field: "sync.workers", Reason: "must be positive"}
	}
	kinds, err := inventory.ParseKinds(strings.Split(c.Kinds, ","))
	if err != nil {
		return Options{}, &ConfigurationError{Field: "sync.kinds", Reason: err.Error()}
	}
	return Options{
		Kinds:   kinds,
		DryRun:  c.DryRun,
		Policy:  policy,
		Workers: c.Workers,
	}, nil
}
