// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", func(o *s3.Options) {
//	    o.Prefix = "datasets/"
//	    o.Region = "us-east-1"
//	})
//
//	points, err := dataset.Load(ctx, store, "osm.lbd", 0)
//
// # Features
//
//   - Range reads through GetObject
//   - Multipart uploads for large datasets
//   - CRC32C checksums on single part uploads
//   - Automatic pagination for listing
//   - Custom endpoints with path-style addressing for S3 compatible servers
package s3
