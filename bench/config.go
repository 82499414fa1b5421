package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/learnedbench"
	"github.com/hupe1980/learnedbench/dataset"
	"github.com/hupe1980/learnedbench/geom"
)

// DatasetConfig selects the data to index: a stored dataset or a generated one.
type DatasetConfig struct {
	// Store is a location understood by OpenStore.
	Store string `yaml:"store"`
	// Name is the blob name inside Store.
	Name string `yaml:"name"`
	// Dim is the dimension of raw float64 files.
	Dim   int `yaml:"dim"`
	Limit int `yaml:"limit"`
	// Generate draws the dataset instead of loading it.
	Generate *dataset.Spec `yaml:"generate"`
}

// Config describes a benchmark run.
type Config struct {
	Dataset  DatasetConfig             `yaml:"dataset"`
	Kinds    []string                  `yaml:"kinds"`
	Index    learnedbench.IndexOptions `yaml:"index"`
	Workload WorkloadConfig            `yaml:"workload"`

	Readers       int     `yaml:"readers"`
	QueriesPerSec float64 `yaml:"qps"`
	// MemoryLimit caps the index size, e.g. "4GiB". Empty means unlimited.
	MemoryLimit string `yaml:"memory_limit"`
	Verify      bool   `yaml:"verify"`
	// Workers bounds parallel model training and dataset decoding.
	Workers int    `yaml:"workers"`
	Format  Format `yaml:"format"`
}

// DefaultConfig runs every kind on a 2-D uniform dataset of 100k points.
func DefaultConfig() Config {
	kinds := learnedbench.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	return Config{
		Dataset: DatasetConfig{
			Generate: &dataset.Spec{Distribution: dataset.DistUniform, N: 100_000, Dim: 2, Scale: 1},
		},
		Kinds:    names,
		Index:    learnedbench.DefaultIndexOptions(),
		Workload: DefaultWorkloadConfig(),
		Readers:  1,
		Verify:   true,
		Format:   FormatText,
	}
}

// LoadConfig decodes YAML from r on top of DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("bench: decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML config from path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return LoadConfig(f)
}

// Validate checks the config for errors.
func (c Config) Validate() error {
	if _, err := c.ParseKinds(); err != nil {
		return err
	}
	if _, err := c.MemoryLimitBytes(); err != nil {
		return err
	}
	if _, err := ParseFormat(string(c.Format)); err != nil {
		return err
	}
	if c.Dataset.Generate == nil && c.Dataset.Name == "" {
		return errors.New("bench: dataset needs a name or a generate spec")
	}
	if c.Readers < 0 || c.QueriesPerSec < 0 || c.Workers < 0 {
		return errors.New("bench: readers, qps and workers must not be negative")
	}
	return nil
}

// ParseKinds resolves the kind names.
func (c Config) ParseKinds() ([]learnedbench.Kind, error) {
	if len(c.Kinds) == 0 {
		return nil, errors.New("bench: no kinds configured")
	}
	kinds := make([]learnedbench.Kind, len(c.Kinds))
	for i, s := range c.Kinds {
		k, err := learnedbench.ParseKind(s)
		if err != nil {
			return nil, fmt.Errorf("bench: %w: %q", err, s)
		}
		kinds[i] = k
	}
	return kinds, nil
}

// MemoryLimitBytes parses MemoryLimit. Zero means unlimited.
func (c Config) MemoryLimitBytes() (int64, error) {
	if c.MemoryLimit == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.MemoryLimit)
	if err != nil {
		return 0, fmt.Errorf("bench: memory_limit: %w", err)
	}
	return int64(n), nil
}

// LoadPoints generates or loads the configured dataset. It returns the points
// and a display name.
func (c Config) LoadPoints(ctx context.Context) ([]geom.Point, string, error) {
	if spec := c.Dataset.Generate; spec != nil {
		points, err := spec.Generate()
		if err != nil {
			return nil, "", err
		}
		if c.Dataset.Limit > 0 && c.Dataset.Limit < len(points) {
			points = points[:c.Dataset.Limit]
		}
		return points, spec.Name(), nil
	}

	store, err := OpenStore(ctx, c.Dataset.Store)
	if err != nil {
		return nil, "", err
	}
	points, err := dataset.Load(ctx, store, c.Dataset.Name, func(o *dataset.LoadOptions) {
		o.Dim = c.Dataset.Dim
		o.Workers = c.Workers
		o.Limit = c.Dataset.Limit
	})
	if err != nil {
		return nil, "", err
	}
	return points, c.Dataset.Name, nil
}
