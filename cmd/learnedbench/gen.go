package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/learnedbench/bench"
	"github.com/hupe1980/learnedbench/dataset"
)

// encodeFlags are shared by the commands that write datasets.
type encodeFlags struct {
	store       string
	name        string
	compression string
	blockPoints int
}

func (f *encodeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.store, "store", ".", "target store: directory, s3://bucket/prefix or minio://host/bucket/prefix")
	fs.StringVar(&f.name, "name", "", "blob name (derived when empty)")
	fs.StringVar(&f.compression, "compression", dataset.DefaultOptions.Compression.String(), "block compression: none, lz4 or zstd")
	fs.IntVar(&f.blockPoints, "block-points", dataset.DefaultOptions.BlockPoints, "points per block")
}

func (f *encodeFlags) options() (func(o *dataset.Options), error) {
	c, err := dataset.ParseCompression(f.compression)
	if err != nil {
		return nil, err
	}
	return func(o *dataset.Options) {
		o.Compression = c
		o.BlockPoints = f.blockPoints
	}, nil
}

func newGenCmd(root *rootFlags) *cobra.Command {
	var (
		spec dataset.Spec
		dist string
		enc  encodeFlags
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "generate a synthetic dataset",
		Long: `
Draw a synthetic dataset and write it in the block format.

The name defaults to <distribution>_<n>_<dim>_<scale>.lbd.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := root.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			optFn, err := enc.options()
			if err != nil {
				return err
			}

			spec.Distribution = dataset.Distribution(dist)
			points, err := spec.Generate()
			if err != nil {
				return err
			}

			name := enc.name
			if name == "" {
				name = spec.Name()
			}

			ctx := cmd.Context()
			store, err := bench.OpenStore(ctx, enc.store)
			if err != nil {
				return err
			}
			if err := dataset.Save(ctx, store, name, points, optFn); err != nil {
				return err
			}

			logger.InfoContext(ctx, "dataset generated", "name", name, "points", len(points), "dim", spec.Dim)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s points, %d dims\n", name, humanize.Comma(int64(len(points))), spec.Dim)
			return err
		},
	}

	cmd.Flags().StringVar(&dist, "dist", string(dataset.DistUniform), "distribution: uniform, gaussian, lognormal, clustered or diagonal")
	cmd.Flags().IntVar(&spec.N, "n", 1_000_000, "number of points")
	cmd.Flags().IntVar(&spec.Dim, "dim", 2, "dimension")
	cmd.Flags().Float64Var(&spec.Scale, "scale", 1, "range, sigma, spread or noise of the distribution")
	cmd.Flags().IntVar(&spec.Clusters, "clusters", 10, "cluster count of clustered data")
	cmd.Flags().Uint64Var(&spec.Seed, "seed", 0, "random seed")
	enc.register(cmd.Flags())

	return cmd
}
