package reconcile

import (
	"testing"

	"inventory-sync/core/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Options(t *testing.T) {
	cfg := Config{
		Strategy: StrategyConfig{Location: "overwrite", Device: "SKIP"},
		DryRun:   true,
		Workers:  4,
		Kinds:    "devices, locations",
	}

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.True(t, opts.DryRun)
	assert.Equal(t, 4, opts.Workers)
	assert.Equal(t, []inventory.Kind{inventory.KindLocation, inventory.KindDevice}, opts.Kinds)
	assert.Equal(t, StrategyOverwrite, opts.Policy.For(inventory.KindLocation))
	assert.Equal(t, StrategySkip, opts.Policy.For(inventory.KindDevice))
	assert.Equal(t, StrategyFlag, opts.Policy.For(inventory.KindCircuit))
}

func TestConfig_OptionsAllKindsByDefault(t *testing.T) {
	opts, err := Config{Workers: 8}.Options()
	require.NoError(t, err)
	assert.Equal(t, inventory.Kinds(), opts.Kinds)
}

func TestConfig_OptionsErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"bad strategy", Config{Workers: 1, Strategy: StrategyConfig{Circuit: "merge"}}, "sync.strategy.circuit"},
		{"no workers", Config{Workers: 0}, "sync.workers"},
		{"bad kind", Config{Workers: 1, Kinds: "vlans"}, "sync.kinds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Options()
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}
