package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/learnedbench/bench"
	"github.com/hupe1980/learnedbench/dataset"
)

func newImportCmd(root *rootFlags) *cobra.Command {
	var (
		enc     encodeFlags
		comma   string
		columns []int
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "convert a CSV file to the block format",
		Long: `
Read one point per CSV row and write the points in the block format.

A first row that does not parse as numbers is skipped as a header.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := root.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			optFn, err := enc.options()
			if err != nil {
				return err
			}
			sep, size := utf8.DecodeRuneInString(comma)
			if size == 0 || size != len(comma) {
				return fmt.Errorf("--comma: want a single character, got %q", comma)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			points, err := dataset.ReadCSV(f, func(o *dataset.CSVOptions) {
				o.Comma = sep
				o.Columns = columns
			})
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if len(points) == 0 {
				return fmt.Errorf("%s: no points", args[0])
			}

			name := enc.name
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])) + ".lbd"
			}

			ctx := cmd.Context()
			store, err := bench.OpenStore(ctx, enc.store)
			if err != nil {
				return err
			}
			if err := dataset.Save(ctx, store, name, points, optFn); err != nil {
				return err
			}

			logger.InfoContext(ctx, "dataset imported", "source", args[0], "name", name, "points", len(points))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s points, %d dims\n", name, humanize.Comma(int64(len(points))), len(points[0]))
			return err
		},
	}

	cmd.Flags().StringVar(&comma, "comma", ",", "field delimiter")
	cmd.Flags().IntSliceVar(&columns, "columns", nil, "zero-based columns to keep, in order")
	enc.register(cmd.Flags())

	return cmd
}
