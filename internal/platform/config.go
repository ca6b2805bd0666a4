package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/artwall/harvest/pkg/adapters/enex"
	"github.com/artwall/harvest/pkg/classify"
	"github.com/artwall/harvest/pkg/taxonomy"
)

// ConfigFileName is the project file FindConfig looks for.
const ConfigFileName = "harvest.yaml"

// ErrConfigNotFound is returned by FindConfig when no project file exists up to the filesystem root.
var ErrConfigNotFound = errors.New("harvest.yaml not found")

// Config is the on-disk project configuration. Relative paths resolve against the file's directory.
type Config struct {
	Source      string                `yaml:"source"`
	Destination string                `yaml:"destination"`
	Pattern     string                `yaml:"pattern"`
	Taxonomy    string                `yaml:"taxonomy"`
	SystemDir   string                `yaml:"system_dir"`
	Commit      bool                  `yaml:"commit"`
	Heuristics  classify.Heuristics   `yaml:"heuristics"`
	Stability   enex.StabilityOptions `yaml:"stability"`

	dir string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Pattern:    enex.DefaultPattern,
		Heuristics: classify.DefaultHeuristics(),
		Stability:  enex.DefaultStability(),
	}
}

// LoadConfig reads a project file. Fields the file omits keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(abs)
	cfg.Source = cfg.Resolve(cfg.Source)
	cfg.Destination = cfg.Resolve(cfg.Destination)
	cfg.Taxonomy = cfg.Resolve(cfg.Taxonomy)
	return cfg, nil
}

// Resolve makes a relative path absolute against the config file's directory.
// Empty and absolute paths are returned as is.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Options converts the file into functional options, loading the taxonomy override if one is named.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{
		WithPattern(c.Pattern),
		WithHeuristics(c.Heuristics),
		WithStability(c.Stability),
		WithSystemDir(c.SystemDir),
		WithCommit(c.Commit),
	}
	if c.Taxonomy != "" {
		tax, err := taxonomy.LoadFile(c.Taxonomy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithTaxonomy(tax))
	}
	return opts, nil
}

// FindConfig looks upwards from startDir for harvest.yaml and returns its absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) {
			return filepath.Join(dir, ConfigFileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrConfigNotFound
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
