// Package blobstore provides the storage abstraction datasets are read from
// and written to.
//
// A dataset is one immutable blob. BlobStore implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system, mmap reads and atomic rename writes
//   - MemoryStore: in-memory, for tests
//   - minio.Store: MinIO and other S3 compatible servers
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)      // Open for reading
//	    Put(ctx, name, data) error         // Atomic write
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can hand out their bytes without copying implement Mappable.
// ReadAll uses it when present.
package blobstore
