package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Size is one problem size: the numeric identifier used in log file names and
// the label used in report column names.
type Size struct {
	ID    int    `yaml:"id"`
	Label string `yaml:"label"`
}

type Config struct {
	Input struct {
		LogsDir   string `yaml:"logs_dir"`
		Extension string `yaml:"extension"`
		Sizes     []Size `yaml:"sizes"`

		Prefixes struct {
			Baseline            string `yaml:"baseline"`
			ParallelCPU         string `yaml:"parallel_cpu"`
			ParallelAccelerator string `yaml:"parallel_accelerator"`
		} `yaml:"prefixes"`
	} `yaml:"input"`

	Output struct {
		Path        string `yaml:"path"`
		Precision   int    `yaml:"precision"`
		SortKernels bool   `yaml:"sort_kernels"`
	} `yaml:"output"`

	Workers  int    `yaml:"workers"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	var c Config
	c.Input.LogsDir = "./logs/Polybench"
	c.Input.Extension = ".log"
	c.Input.Sizes = []Size{
		{ID: 512, Label: "Mini"},
		{ID: 1024, Label: "Small"},
		{ID: 2048, Label: "Medium"},
		{ID: 4096, Label: "Large"},
	}
	c.Input.Prefixes.Baseline = "cpu"
	c.Input.Prefixes.ParallelCPU = "omp_cpu"
	c.Input.Prefixes.ParallelAccelerator = "omp_gpu"

	c.Output.Path = "polybench.csv"
	c.Output.Precision = 6
	c.Output.SortKernels = true

	c.Workers = 1
	c.LogLevel = "info"
	return c
}

// Load decodes the YAML file at path over Default, so keys missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// LoadOrDefault behaves like Load but treats a missing file as an empty one.
func LoadOrDefault(path string) (Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Input.LogsDir) == "" {
		return fmt.Errorf("%w: input.logs_dir is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("%w: output.path is empty", ErrInvalidConfig)
	}
	if len(c.Input.Sizes) == 0 {
		return fmt.Errorf("%w: input.sizes is empty", ErrInvalidConfig)
	}
	for _, s := range c.Input.Sizes {
		if s.ID <= 0 {
			return fmt.Errorf("%w: size id %d must be positive", ErrInvalidConfig, s.ID)
		}
		if s.Label == "" {
			return fmt.Errorf("%w: size %d has no label", ErrInvalidConfig, s.ID)
		}
	}
	if len(lo.UniqBy(c.Input.Sizes, func(s Size) int { return s.ID })) != len(c.Input.Sizes) {
		return fmt.Errorf("%w: duplicate size ids", ErrInvalidConfig)
	}
	if len(lo.UniqBy(c.Input.Sizes, func(s Size) string { return s.Label })) != len(c.Input.Sizes) {
		return fmt.Errorf("%w: duplicate size labels", ErrInvalidConfig)
	}
	if lo.Contains(c.Prefixes(), "") {
		return fmt.Errorf("%w: every input.prefixes entry must be set", ErrInvalidConfig)
	}
	if c.Output.Precision < 0 {
		return fmt.Errorf("%w: output.precision must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Prefixes returns the log file prefixes in baseline, parallel-CPU,
// parallel-accelerator order.
func (c Config) Prefixes() []string {
	p := c.Input.Prefixes
	return []string{p.Baseline, p.ParallelCPU, p.ParallelAccelerator}
}

func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(lo.Ternary(c.LogLevel == "", "info", c.LogLevel)))
	return lvl, err
}
