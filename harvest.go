package harvest

import (
	"log/slog"
	"time"

	"github.com/artwall/harvest/internal/platform"
	"github.com/artwall/harvest/pkg/adapters/enex"
	"github.com/artwall/harvest/pkg/classify"
	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/taxonomy"
)

// --- Types ---

// Harvester is a wired pipeline with its archive and record adapters.
type Harvester = platform.Harvester

// Result is the outcome of one batch.
type Result = platform.Result

// Config is the harvest.yaml project file.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring harvest.
type Option = platform.Option

// WithLogger sets the logger for every stage and adapter.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithTaxonomy replaces the built-in medium/subtype table.
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return platform.WithTaxonomy(t)
}

// WithHeuristics sets the auto-detection thresholds.
func WithHeuristics(h classify.Heuristics) Option {
	return platform.WithHeuristics(h)
}

// WithSink allows injecting a custom record writer.
func WithSink(sink core.Sink) Option {
	return platform.WithSink(sink)
}

// WithDryRun counts records instead of writing them.
func WithDryRun(dryRun bool) Option {
	return platform.WithDryRun(dryRun)
}

// WithPattern sets the archive discovery glob.
func WithPattern(pattern string) Option {
	return platform.WithPattern(pattern)
}

// WithStability configures the file-stability gate.
func WithStability(s enex.StabilityOptions) Option {
	return platform.WithStability(s)
}

// WithDebounce sets the watcher debounce delay.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithSystemDir sets the hidden directory holding the fingerprint index (e.g. ".harvest").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithCommit commits written records when the destination is a git work tree.
func WithCommit(commit bool) Option {
	return platform.WithCommit(commit)
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a Harvester writing records below dest.
func New(dest string, opts ...Option) (*Harvester, error) {
	return platform.New(dest, opts...)
}

// --- Project file ---

// ErrConfigNotFound is returned by FindConfig when no harvest.yaml exists above the start directory.
var ErrConfigNotFound = platform.ErrConfigNotFound

// FindConfig looks upwards from startDir for harvest.yaml.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}

// LoadConfig reads a harvest.yaml file.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// DefaultConfig returns the configuration used when no project file exists.
func DefaultConfig() *Config {
	return platform.DefaultConfig()
}
