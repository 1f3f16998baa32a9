package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/bmisim/internal/grid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps    = 10
	DefaultSnapshot = 1
)

// ErrConfig is the root of every configuration failure.
var ErrConfig = errors.New("config: cannot load configuration")

type Config struct {
	TimeStep   float64   `yaml:"time_step"`
	Rows       int       `yaml:"rows"`
	Cols       int       `yaml:"cols"`
	RowSpacing float64   `yaml:"row_spacing"`
	ColSpacing float64   `yaml:"col_spacing"`
	Seed       int64     `yaml:"seed"`
	Run        RunConfig `yaml:"run"`
}

// RunConfig drives the CLI; the model itself ignores it.
type RunConfig struct {
	Steps         int     `yaml:"steps"`
	Until         float64 `yaml:"until"`
	SnapshotEvery int     `yaml:"snapshot_every"`
}

func DefaultConfig() *Config {
	return &Config{
		TimeStep:   grid.DefaultTimeStep,
		Rows:       grid.DefaultRows,
		Cols:       grid.DefaultCols,
		RowSpacing: grid.DefaultSpacing,
		ColSpacing: grid.DefaultSpacing,
		Seed:       grid.DefaultSeed,
		Run: RunConfig{
			Steps:         DefaultSteps,
			SnapshotEvery: DefaultSnapshot,
		},
	}
}

// ParseError reports a value in a configuration line that could not be used.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config: line %d: %s: %v", e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("config: line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrConfig }

// Load reads a configuration file. Files ending in .yaml or .yml are YAML
// documents; anything else holds a single "time_step, rows, cols" line.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	defer f.Close()

	if isYAML(path) {
		return DecodeYAML(f)
	}
	return ReadLine(f)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// DecodeYAML reads a YAML document on top of the defaults.
func DecodeYAML(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadLine reads the first non-blank line of r. Lines starting with '#' are skipped.
func ReadLine(r io.Reader) (*Config, error) {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cfg, err := ParseLine(line)
		if pe, ok := err.(*ParseError); ok {
			pe.Line = n
		}
		return cfg, err
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil, &ParseError{Line: n, Field: "record", Err: errors.New("no configuration line")}
}

// ParseLine parses "time_step, rows, cols". Spacing and seed keep their defaults.
func ParseLine(line string) (*Config, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return nil, &ParseError{Line: 1, Field: "record", Value: line,
			Err: fmt.Errorf("expected 3 comma-separated fields, got %d", len(parts))}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	cfg := DefaultConfig()

	dt, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, &ParseError{Line: 1, Field: "time_step", Value: parts[0], Err: err}
	}
	rows, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, &ParseError{Line: 1, Field: "rows", Value: parts[1], Err: err}
	}
	cols, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, &ParseError{Line: 1, Field: "cols", Value: parts[2], Err: err}
	}

	cfg.TimeStep, cfg.Rows, cfg.Cols = dt, rows, cols
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FormatLine renders the single-line form of c.
func FormatLine(c *Config) string {
	return fmt.Sprintf("%s, %d, %d",
		strconv.FormatFloat(c.TimeStep, 'g', -1, 64), c.Rows, c.Cols)
}

func (c *Config) Validate() error {
	switch {
	case !positive(c.TimeStep):
		return &ParseError{Line: 1, Field: "time_step", Value: fmt.Sprint(c.TimeStep), Err: errors.New("must be positive and finite")}
	case c.Rows < 1:
		return &ParseError{Line: 1, Field: "rows", Value: strconv.Itoa(c.Rows), Err: errors.New("must be at least 1")}
	case c.Cols < 1:
		return &ParseError{Line: 1, Field: "cols", Value: strconv.Itoa(c.Cols), Err: errors.New("must be at least 1")}
	case !positive(c.RowSpacing):
		return &ParseError{Line: 1, Field: "row_spacing", Value: fmt.Sprint(c.RowSpacing), Err: errors.New("must be positive and finite")}
	case !positive(c.ColSpacing):
		return &ParseError{Line: 1, Field: "col_spacing", Value: fmt.Sprint(c.ColSpacing), Err: errors.New("must be positive and finite")}
	case c.Run.Steps < 0:
		return &ParseError{Line: 1, Field: "run.steps", Value: strconv.Itoa(c.Run.Steps), Err: errors.New("must not be negative")}
	case c.Run.SnapshotEvery < 0:
		return &ParseError{Line: 1, Field: "run.snapshot_every", Value: strconv.Itoa(c.Run.SnapshotEvery), Err: errors.New("must not be negative")}
	}
	return nil
}

// positive rejects zero, negatives, NaN and both infinities.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Save writes c as YAML, or as a single line when path is not a YAML file.
func Save(path string, c *Config) error {
	var data []byte
	if isYAML(path) {
		var err error
		if data, err = yaml.Marshal(c); err != nil {
			return err
		}
	} else {
		data = []byte(FormatLine(c) + "\n")
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the model part of c into grid parameters.
func (c *Config) Params() grid.Params {
	return grid.Params{
		TimeStep:   c.TimeStep,
		Rows:       c.Rows,
		Cols:       c.Cols,
		RowSpacing: c.RowSpacing,
		ColSpacing: c.ColSpacing,
		Seed:       c.Seed,
	}
}
