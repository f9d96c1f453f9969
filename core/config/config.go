package config

import (
	"reflect"
	"strings"

	"inventory-sync/core/database"
	"inventory-sync/core/logger"
	"inventory-sync/core/reconcile"
	"inventory-sync/core/server"
	"inventory-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the report archive (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Source holds the connection to the authoritative record system.
	Source database.Config `mapstructure:"source"`
	// Target holds the connection to the managed inventory.
	Target database.Config `mapstructure:"target"`
	// Sync holds the per-kind conflict strategies and run settings.
	Sync reconcile.Config `mapstructure:"sync"`
}

// LoadConfig loads configuration from environment variables and the .env file in path.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." || path == "" {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_STRATEGY_DEVICE -> sync.strategy.device)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings every command needs before any connection is opened.
func (c *Config) Validate() error {
	if !c.Source.IsValidDriver() {
		return &reconcile.ConfigurationError{Field: "source.driver", Reason: "must be mysql, postgres or sqlite"}
	}
	if !c.Target.IsValidDriver() {
		return &reconcile.ConfigurationError{Field: "target.driver", Reason: "must be mysql, postgres or sqlite"}
	}
	_, err := c.Sync.Options()
	return err
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
