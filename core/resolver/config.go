package resolver

import "time"

// Config holds configuration for resolving sources at runtime.
type Config struct {
	// DescriptorDir is the directory holding source descriptor files.
	DescriptorDir string `mapstructure:"descriptor_dir" default:"sources"`
	// CacheTTLSeconds is how long a resolved source is reused. Zero
	// resolves on every request.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
	// SampleRecords is the number of records discovery reads per table.
	SampleRecords int `mapstructure:"sample_records" default:"5"`
}

// CacheTTL returns the cache TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
