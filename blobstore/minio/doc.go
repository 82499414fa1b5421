// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage server. The package uses the
// official MinIO Go client, so it also works against Ceph, SeaweedFS, Garage
// and similar servers without any AWS dependency.
//
// # Basic Usage
//
//	store, err := minio.New("localhost:9000", "datasets", func(o *minio.Options) {
//	    o.AccessKey = "minioadmin"
//	    o.SecretKey = "minioadmin"
//	    o.Prefix = "spatial/"
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	points, err := dataset.Load(ctx, store, "osm.lbd", 0)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
