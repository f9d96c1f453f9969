// Package server holds the HTTP server configuration.
//
// The Config struct defines the HTTP port, the API key protecting the sync endpoints,
// and whether the swagger UI is served. It is embedded by core/config and consumed by
// the start command.
package server
