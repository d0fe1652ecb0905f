// Package sources exposes resolved source descriptors over HTTP.
//
// Descriptors are read from the configured descriptor directory on every
// request; resolved sources are kept in a TTL cache keyed by source name.
//
// # HTTP Endpoints
//
//   - GET /sources : Lists the descriptors.
//   - GET /sources/:source/tables : Lists the resolved tables (supports ?count=true).
//   - GET /sources/:source/tables/:table : Reads records (supports ?limit=N).
//   - GET /sources/:source/verify : Runs discovery and returns its report.
//   - POST /sources/:source/refresh : Drops the cached resolution.
package sources
