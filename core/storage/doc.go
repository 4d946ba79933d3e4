// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for common
// operations like checking bucket existence, fetching raw import files, and
// listing objects. This abstraction supports both AWS S3 and self-hosted
// MinIO instances.
//
// The import CLI uses this client to pull raw CSV/JSON documents straight
// from a bucket instead of the local filesystem, and to move fully imported
// documents into the archive bucket afterwards.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easier to mock storage interactions for unit testing (see
// core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	reader, err := client.GetObject(ctx, "imports", "articles.csv", minio.GetObjectOptions{})
package storage
