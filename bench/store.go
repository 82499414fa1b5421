package bench

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/learnedbench/blobstore"
	"github.com/hupe1980/learnedbench/blobstore/minio"
	"github.com/hupe1980/learnedbench/blobstore/s3"
)

// OpenStore resolves a store location:
//
//	/data/sets or file:///data/sets     local directory
//	mem://                               in-memory store
//	s3://bucket/prefix?region=&endpoint=
//	minio://host:port/bucket/prefix?secure=true
//
// MinIO credentials come from MINIO_ACCESS_KEY and MINIO_SECRET_KEY.
func OpenStore(ctx context.Context, location string) (blobstore.BlobStore, error) {
	if location == "" {
		return blobstore.NewLocalStore("."), nil
	}
	if !strings.Contains(location, "://") {
		return blobstore.NewLocalStore(location), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("bench: store %q: %w", location, err)
	}

	switch u.Scheme {
	case "file":
		return blobstore.NewLocalStore(u.Path), nil
	case "mem":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("bench: store %q: missing bucket", location)
		}
		q := u.Query()
		store, err := s3.New(ctx, u.Host, func(o *s3.Options) {
			o.Prefix = keyPrefix(u.Path)
			o.Region = q.Get("region")
			o.Endpoint = q.Get("endpoint")
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || bucket == "" {
			return nil, fmt.Errorf("bench: store %q: want minio://host/bucket[/prefix]", location)
		}
		q := u.Query()
		secure, _ := strconv.ParseBool(q.Get("secure"))
		store, err := minio.New(u.Host, bucket, func(o *minio.Options) {
			o.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
			o.SecretKey = os.Getenv("MINIO_SECRET_KEY")
			o.Region = q.Get("region")
			o.Secure = secure
			o.Prefix = keyPrefix(prefix)
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	return nil, fmt.Errorf("bench: store %q: unsupported scheme %q", location, u.Scheme)
}

func keyPrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
