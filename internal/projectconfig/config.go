// Package projectconfig provides the ProjectConfig struct and loader for
// .lossgrid.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/lossgrid/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the project configuration file.
const FileName = ".lossgrid.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultShape     = "1,28,28"
	DefaultSamples   = 8
	DefaultBatchSize = 32

	DefaultPredictor = "table"

	DefaultColumns    = 8
	DefaultCellSize   = 96
	DefaultPadding    = 8
	DefaultDotSpacing = 10
	DefaultDotRadius  = 2.0
	DefaultDotAlpha   = 0.7
	DefaultDegenerate = "error"
	DefaultOutput     = "lossgrid.png"

	DefaultLogLevel = "info"
	DefaultLogDir   = "."
	DefaultLogName  = "lossgrid"
)

// DatasetConfig describes where samples are read from.
type DatasetConfig struct {
	Path  string `yaml:"path,omitempty"`
	Shape string `yaml:"shape,omitempty"`
	Start int    `yaml:"start,omitempty"`
	End   int    `yaml:"end,omitempty"`
}

// CollectConfig holds sample collection settings.
type CollectConfig struct {
	Samples   int `yaml:"samples,omitempty"`
	BatchSize int `yaml:"batch_size,omitempty"`
}

// PredictorConfig selects the predictor and its kind-specific parameters.
type PredictorConfig struct {
	Kind   string         `yaml:"kind,omitempty"`
	Params map[string]any `yaml:"params,omitempty"`
}

// ColorStopConfig is one control point of the loss color scale.
type ColorStopConfig struct {
	At    float64 `yaml:"at"`
	Color string  `yaml:"color"`
}

// RenderConfig holds grid rendering settings.
type RenderConfig struct {
	Columns    int               `yaml:"columns,omitempty"`
	CellSize   int               `yaml:"cell_size,omitempty"`
	Padding    *int              `yaml:"padding,omitempty"`
	DotSpacing int               `yaml:"dot_spacing,omitempty"`
	DotRadius  float64           `yaml:"dot_radius,omitempty"`
	DotAlpha   *float64          `yaml:"dot_alpha,omitempty"`
	Degenerate string            `yaml:"degenerate_images,omitempty"`
	ColorStops []ColorStopConfig `yaml:"color_stops,omitempty"`
	Output     string            `yaml:"output,omitempty"`
}

// LoggingConfig controls the screen and file log sinks.
type LoggingConfig struct {
	Screen *bool  `yaml:"screen,omitempty"`
	File   *bool  `yaml:"file,omitempty"`
	Level  string `yaml:"level,omitempty"`
	Dir    string `yaml:"dir,omitempty"`
	Name   string `yaml:"name,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .lossgrid.yaml.
type ProjectConfig struct {
	Dataset   DatasetConfig   `yaml:"dataset,omitempty"`
	Collect   CollectConfig   `yaml:"collect,omitempty"`
	Predictor PredictorConfig `yaml:"predictor,omitempty"`
	Render    RenderConfig    `yaml:"render,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Dataset: DatasetConfig{
			Shape: DefaultShape,
		},
		Collect: CollectConfig{
			Samples:   DefaultSamples,
			BatchSize: DefaultBatchSize,
		},
		Predictor: PredictorConfig{
			Kind: DefaultPredictor,
		},
		Render: RenderConfig{
			Columns:    DefaultColumns,
			CellSize:   DefaultCellSize,
			Padding:    intPtr(DefaultPadding),
			DotSpacing: DefaultDotSpacing,
			DotRadius:  DefaultDotRadius,
			DotAlpha:   floatPtr(DefaultDotAlpha),
			Degenerate: DefaultDegenerate,
			Output:     DefaultOutput,
		},
		Logging: LoggingConfig{
			Screen: boolPtr(true),
			File:   boolPtr(false),
			Level:  DefaultLogLevel,
			Dir:    DefaultLogDir,
			Name:   DefaultLogName,
		},
	}
}

// Load finds .lossgrid.yaml by walking up from startDir (max 10 levels),
// validates it against the config schema, unmarshals it, and fills in
// missing fields with defaults. Relative dataset.path and logging.dir values
// are resolved against the directory holding the file. If no config file is
// found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, path, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	if errs := validation.ValidateConfigBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid %s:\n  %s", FileName, strings.Join(errs, "\n  "))
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	resolvePaths(&fileCfg, filepath.Dir(path))
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// Marshal renders cfg as YAML suitable for writing to .lossgrid.yaml.
func Marshal(cfg *ProjectConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// resolvePaths makes the file's relative paths relative to baseDir.
func resolvePaths(cfg *ProjectConfig, baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	cfg.Dataset.Path = resolve(cfg.Dataset.Path)
	cfg.Logging.Dir = resolve(cfg.Logging.Dir)
}

// findConfigFile walks up from dir looking for .lossgrid.yaml (max 10
// levels) and returns its contents and absolute path. Returns
// os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range 10 {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Dataset
	if src.Dataset.Path != "" {
		dst.Dataset.Path = src.Dataset.Path
	}
	if src.Dataset.Shape != "" {
		dst.Dataset.Shape = src.Dataset.Shape
	}
	if src.Dataset.Start != 0 {
		dst.Dataset.Start = src.Dataset.Start
	}
	if src.Dataset.End != 0 {
		dst.Dataset.End = src.Dataset.End
	}

	// Collect
	if src.Collect.Samples != 0 {
		dst.Collect.Samples = src.Collect.Samples
	}
	if src.Collect.BatchSize != 0 {
		dst.Collect.BatchSize = src.Collect.BatchSize
	}

	// Predictor
	if src.Predictor.Kind != "" {
		dst.Predictor.Kind = src.Predictor.Kind
	}
	if src.Predictor.Params != nil {
		dst.Predictor.Params = src.Predictor.Params
	}

	// Render
	if src.Render.Columns != 0 {
		dst.Render.Columns = src.Render.Columns
	}
	if src.Render.CellSize != 0 {
		dst.Render.CellSize = src.Render.CellSize
	}
	if src.Render.Padding != nil {
		dst.Render.Padding = src.Render.Padding
	}
	if src.Render.DotSpacing != 0 {
		dst.Render.DotSpacing = src.Render.DotSpacing
	}
	if src.Render.DotRadius != 0 {
		dst.Render.DotRadius = src.Render.DotRadius
	}
	if src.Render.DotAlpha != nil {
		dst.Render.DotAlpha = src.Render.DotAlpha
	}
	if src.Render.Degenerate != "" {
		dst.Render.Degenerate = src.Render.Degenerate
	}
	if len(src.Render.ColorStops) > 0 {
		dst.Render.ColorStops = src.Render.ColorStops
	}
	if src.Render.Output != "" {
		dst.Render.Output = src.Render.Output
	}

	// Logging
	if src.Logging.Screen != nil {
		dst.Logging.Screen = src.Logging.Screen
	}
	if src.Logging.File != nil {
		dst.Logging.File = src.Logging.File
	}
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Dir != "" {
		dst.Logging.Dir = src.Logging.Dir
	}
	if src.Logging.Name != "" {
		dst.Logging.Name = src.Logging.Name
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
