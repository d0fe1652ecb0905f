// Package blob abstracts the storage that holds source files.
//
// A Source lists and opens blobs; a Sink can also create them. Backends are
// format independent: they know nothing about CSV or tables, only about
// byte streams addressed by a Path.
//
// # Backends
//
//   - Local: a directory tree on the local filesystem (NewLocal).
//   - Object: a bucket and key prefix on S3 or MinIO (NewObject), accessed
//     through core/storage.
//
// # Paths
//
// Every Path carries an absolute URI (file:///data/a.csv, s3://bucket/a.csv),
// the slash separated path component of that URI used by table mappers and
// attribute patterns, and the path relative to the storage root.
//
// # Usage
//
//	store, err := blob.NewLocal("/data/landing")
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	paths, err := store.ListBlobs(ctx)
package blob
