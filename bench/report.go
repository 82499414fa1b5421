package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/hupe1980/learnedbench"
)

// Format selects how a Report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses "text" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("bench: unknown report format %q", s)
	}
}

// KindReport summarizes the run of one index kind.
type KindReport struct {
	Kind      learnedbench.Kind `json:"kind"`
	Count     int               `json:"count"`
	Dimension int               `json:"dimension"`
	SizeBytes int               `json:"size_bytes"`
	BuildTime time.Duration     `json:"build_ns"`
	Range     []Summary         `json:"range,omitempty"`
	KNN       []Summary         `json:"knn,omitempty"`
}

// Report is the summary of a benchmark run.
type Report struct {
	Dataset string       `json:"dataset,omitempty"`
	Kinds   []KindReport `json:"kinds"`
}

// NewReport summarizes results in the given order.
func NewReport(dataset string, results []*Result) (*Report, error) {
	rep := &Report{Dataset: dataset}
	for _, res := range results {
		kr := KindReport{
			Kind:      res.Kind,
			Count:     res.Count,
			Dimension: res.Dimension,
			SizeBytes: res.SizeBytes,
			BuildTime: res.BuildTime,
		}
		for _, g := range res.Ranges {
			s, err := g.Summarize(res.Verified)
			if err != nil {
				return nil, fmt.Errorf("bench: %s %s: %w", res.Kind, g.Label(), err)
			}
			kr.Range = append(kr.Range, s)
		}
		for _, g := range res.KNN {
			s, err := g.Summarize(res.Verified)
			if err != nil {
				return nil, fmt.Errorf("bench: %s %s: %w", res.Kind, g.Label(), err)
			}
			kr.KNN = append(kr.KNN, s)
		}
		rep.Kinds = append(rep.Kinds, kr)
	}
	return rep, nil
}

// Write renders the report in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	if f == FormatJSON {
		return r.WriteJSON(w)
	}
	return r.WriteText(w)
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes a build table followed by one query table.
func (r *Report) WriteText(w io.Writer) error {
	if r.Dataset != "" {
		if _, err := fmt.Fprintf(w, "dataset: %s\n\n", r.Dataset); err != nil {
			return err
		}
	}

	build := newTable(w, "kind", "points", "dim", "size", "build")
	for _, kr := range r.Kinds {
		build.Append([]string{
			string(kr.Kind),
			humanize.Comma(int64(kr.Count)),
			strconv.Itoa(kr.Dimension),
			humanize.IBytes(uint64(kr.SizeBytes)),
			kr.BuildTime.Round(time.Microsecond).String(),
		})
	}
	build.Render()

	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	queries := newTable(w, "kind", "query", "n", "avg", "p50", "p95", "p99", "results", "recall")
	for _, kr := range r.Kinds {
		for _, s := range append(append([]Summary(nil), kr.Range...), kr.KNN...) {
			queries.Append(summaryRow(kr.Kind, s))
		}
	}
	queries.Render()

	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetHeader(header)
	return t
}

func summaryRow(kind learnedbench.Kind, s Summary) []string {
	recall := "-"
	if s.Recall != nil {
		recall = strconv.FormatFloat(*s.Recall, 'f', 4, 64)
	}
	return []string{
		string(kind),
		s.Label,
		strconv.Itoa(s.Queries),
		fmtLatency(s.Avg),
		fmtLatency(s.P50),
		fmtLatency(s.P95),
		fmtLatency(s.P99),
		humanize.FormatFloat("#,###.##", s.AvgResults),
		recall,
	}
}

func fmtLatency(d time.Duration) string {
	switch {
	case d >= time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d >= time.Microsecond:
		return d.Round(10 * time.Nanosecond).String()
	default:
		return d.String()
	}
}
