// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for server settings.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key and the record limits
// applied to table reads (default and maximum page size).
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by the sources feature to clamp requested record limits.
package server
