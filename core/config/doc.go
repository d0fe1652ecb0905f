// Package config provides configuration management for the source resolver.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, record limits)
//   - Storage: S3/MinIO endpoint and credentials for s3 descriptors
//   - Log: Logging level and format
//   - Resolver: descriptor directory, cache TTL and discovery samples
//
// Environment variables map to nested keys, e.g. RESOLVER_DESCRIPTOR_DIR
// sets resolver.descriptor_dir.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Resolver.DescriptorDir)
package config
