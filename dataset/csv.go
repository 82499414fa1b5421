package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/learnedbench/geom"
)

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	// Comma is the field delimiter.
	Comma rune
	// Columns selects and orders columns by zero-based index. Empty keeps all.
	Columns []int
}

// ReadCSV reads one point per row. The first row is treated as a header when
// any of its selected fields is not a number. Every row must have the same
// number of fields.
func ReadCSV(r io.Reader, optFns ...func(o *CSVOptions)) ([]geom.Point, error) {
	opts := CSVOptions{Comma: ','}
	for _, fn := range optFns {
		fn(&opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var (
		points []geom.Point
		fields int
	)
	for record := 1; ; record++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		if fields == 0 {
			fields = len(rec)
		} else if len(rec) != fields {
			return nil, fmt.Errorf("%w: csv record %d has %d fields, want %d", ErrInvalidDimension, record, len(rec), fields)
		}

		p, err := parseRow(rec, opts.Columns)
		if err != nil {
			if record == 1 {
				continue
			}
			return nil, fmt.Errorf("%w: csv record %d: %w", ErrInvalidFormat, record, err)
		}
		points = append(points, p)
	}

	return points, nil
}

func parseRow(rec []string, columns []int) (geom.Point, error) {
	if len(columns) == 0 {
		p := make(geom.Point, len(rec))
		for i, f := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, err
			}
			p[i] = v
		}
		return p, nil
	}

	p := make(geom.Point, len(columns))
	for i, c := range columns {
		if c < 0 || c >= len(rec) {
			return nil, fmt.Errorf("column %d out of range", c)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
		if err != nil {
			return nil, err
		}
		p[i] = v
	}
	return p, nil
}
