// Package storage wraps the MinIO Go client behind a small interface.
//
// It is the transport used by the object-store blob backend (core/blob) and
// supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying provider, making it easy to
// mock storage interactions in unit tests (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - ListObjects: Lists objects under a prefix (recursive).
//   - GetObject: Retrieves content as a stream.
//   - PutObject: Uploads content.
//   - RemoveObject: Deletes a single object.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, "landing")
package storage
