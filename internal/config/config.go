package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration marks every error that should stop a run before its
// first step.
var ErrConfiguration = errors.New("configuration error")

// Config is the on-disk run configuration (YAML).
type Config struct {
	// InputFile is the objective definition (.inp) with the horizon,
	// objectives and geometries.
	InputFile string `yaml:"input_file" validate:"required"`
	// OutputCSV is optional; when set its directory must exist.
	OutputCSV string `yaml:"output_csv"`
	// PlotDir, when set, receives one observed-vs-simulated PNG per objective.
	PlotDir string `yaml:"plot_dir"`

	Simulation SimulationConfig `yaml:"simulation"`
	Log        LogConfig        `yaml:"log"`

	// MaxSteps bounds the driver loop.
	MaxSteps int `yaml:"max_steps" default:"1000000" validate:"gt=0"`
}

// SimulationConfig points at a pre-computed simulation replayed as the
// provider for every objective.
type SimulationConfig struct {
	SeriesFile   string `yaml:"series_file" validate:"required"`
	GeometryFile string `yaml:"geometry_file" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stderr"`
}

var validate = validator.New()

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the config and applies defaults, but does not validate
// it. Relative paths are resolved against the config file directory when
// that location exists, and left relative to the working directory otherwise.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %v", ErrConfiguration, err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: parse config: %v", ErrConfiguration, err)
	}
	if err := c.ApplyDefaults(); err != nil {
		return nil, err
	}
	c.ResolvePaths(filepath.Dir(path))
	return &c, nil
}

// ApplyDefaults fills zero fields from their `default` tags.
func (c *Config) ApplyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("%w: apply defaults: %v", ErrConfiguration, err)
	}
	return nil
}

// ResolvePaths rewrites relative paths against dir.
func (c *Config) ResolvePaths(dir string) {
	c.InputFile = resolvePath(dir, c.InputFile)
	c.OutputCSV = resolvePath(dir, c.OutputCSV)
	c.PlotDir = resolvePath(dir, c.PlotDir)
	c.Simulation.SeriesFile = resolvePath(dir, c.Simulation.SeriesFile)
	c.Simulation.GeometryFile = resolvePath(dir, c.Simulation.GeometryFile)
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrConfiguration)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// Merge overlays non-zero fields from override onto base. Used to derive
// variations of a run from a shared base config.
func Merge(base, override Config) Config {
	out := base
	if override.InputFile != "" {
		out.InputFile = override.InputFile
	}
	if override.OutputCSV != "" {
		out.OutputCSV = override.OutputCSV
	}
	if override.PlotDir != "" {
		out.PlotDir = override.PlotDir
	}
	if override.Simulation.SeriesFile != "" {
		out.Simulation.SeriesFile = override.Simulation.SeriesFile
	}
	if override.Simulation.GeometryFile != "" {
		out.Simulation.GeometryFile = override.Simulation.GeometryFile
	}
	if override.MaxSteps != 0 {
		out.MaxSteps = override.MaxSteps
	}
	return out
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	// Outputs do not exist yet; accept the candidate if its directory does.
	if info, err := os.Stat(filepath.Dir(cand)); err == nil && info.IsDir() {
		return cand
	}
	return p
}
