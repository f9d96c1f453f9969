// Package config provides configuration management for inventory sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, docs)
//   - Source: connection to the authoritative record system
//   - Target: connection to the managed inventory
//   - Sync: per-kind conflict strategy, dry-run, workers, kinds, mapping file
//   - Storage: S3/MinIO settings of the report archive
//   - Log: Logging level and format
//
// Nested keys map to environment variables by replacing dots with underscores, for
// example SYNC_STRATEGY_DEVICE=skip or SOURCE_DRIVER=postgres.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts, err := cfg.Sync.Options()
package config
