package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables
	// authentication.
	ApiKey string `mapstructure:"api_key" default:""`
	// DefaultLimit is the number of records returned when a request names
	// no limit.
	DefaultLimit int `mapstructure:"default_limit" default:"100"`
	// MaxLimit caps the number of records a single request may read.
	MaxLimit int `mapstructure:"max_limit" default:"10000"`
}

// Limit resolves a requested record limit against the configured default
// and maximum. A non-positive request means the default.
func (c Config) Limit(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = c.DefaultLimit
	}
	if c.MaxLimit > 0 && limit > c.MaxLimit {
		limit = c.MaxLimit
	}
	return limit
}
