// Package dataset reads, writes and generates point sets.
//
// Two on-disk formats are supported. The raw format is a headerless run of
// little-endian float64 values whose dimension the caller supplies. The block
// format starts with the magic "LBD1", records dimension and count, and
// stores points in independently compressed blocks that decode in parallel.
// Load tells them apart by the magic.
package dataset

import (
	"context"
	"fmt"
	"runtime"

	"github.com/hupe1980/learnedbench/blobstore"
	"github.com/hupe1980/learnedbench/geom"
)

// LoadOptions configures Load.
type LoadOptions struct {
	// Dim is the dimension of raw datasets. Block format datasets carry their
	// own and ignore it.
	Dim int
	// Workers bounds parallel block decoding. Zero uses GOMAXPROCS.
	Workers int
	// Limit keeps only the first Limit points. Zero keeps all.
	Limit int
}

// Load reads the blob name from store and decodes it.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(o *LoadOptions)) ([]geom.Point, error) {
	var opts LoadOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer blob.Close()

	// Mapped bytes are only valid until Close; both decoders copy out.
	data, err := blobstore.ReadAll(blob)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", name, err)
	}

	var points []geom.Point
	if IsBlockFormat(data) {
		points, err = Decode(ctx, data, opts.Workers)
	} else {
		points, err = DecodeRaw(data, opts.Dim)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: decode %s: %w", name, err)
	}

	if opts.Limit > 0 && opts.Limit < len(points) {
		points = points[:opts.Limit]
	}
	return points, nil
}

// Save encodes points in the block format and writes them to store as name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, points []geom.Point, optFns ...func(o *Options)) error {
	data, err := Encode(points, optFns...)
	if err != nil {
		return fmt.Errorf("dataset: encode %s: %w", name, err)
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("dataset: put %s: %w", name, err)
	}
	return nil
}
