package platform

import (
	"log/slog"
	"time"

	"github.com/artwall/harvest/pkg/adapters/enex"
	"github.com/artwall/harvest/pkg/classify"
	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/taxonomy"
)

// options holds the internal configuration of a harvest pipeline.
type options struct {
	logger       *slog.Logger
	taxonomy     *taxonomy.Taxonomy
	heuristics   classify.Heuristics
	sink         core.Sink
	dryRun       bool
	pattern      string
	stability    enex.StabilityOptions
	debounce     time.Duration
	systemDir    string
	commit       bool
	errorHandler func(error)
}

// Option defines a functional option for configuring harvest.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		taxonomy:   taxonomy.Default(),
		heuristics: classify.DefaultHeuristics(),
		pattern:    enex.DefaultPattern,
		stability:  enex.DefaultStability(),
		debounce:   enex.DefaultDebounce,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithLogger sets the logger for every stage and adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTaxonomy replaces the built-in medium/subtype table.
// A nil table keeps the default.
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return func(o *options) {
		if t != nil {
			o.taxonomy = t
		}
	}
}

// WithHeuristics sets the auto-detection thresholds used when a note declares no medium.
func WithHeuristics(h classify.Heuristics) Option {
	return func(o *options) {
		o.heuristics = h
	}
}

// WithSink allows injecting a custom record writer (e.g. mock, remote store).
// If provided, the filesystem sink is skipped and the destination is ignored.
func WithSink(sink core.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithDryRun runs the whole pipeline but counts records instead of writing them.
func WithDryRun(dryRun bool) Option {
	return func(o *options) {
		o.dryRun = dryRun
	}
}

// WithPattern sets the glob used to discover archives. Defaults to "**/*.enex".
func WithPattern(pattern string) Option {
	return func(o *options) {
		if pattern != "" {
			o.pattern = pattern
		}
	}
}

// WithStability configures the file-stability gate applied before an archive is read.
// Checks <= 0 disables the gate.
func WithStability(s enex.StabilityOptions) Option {
	return func(o *options) {
		o.stability = s
	}
}

// WithDebounce sets how long the watcher waits for an archive to stop changing.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithSystemDir sets the hidden directory holding the fingerprint index.
// Defaults to ".harvest".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithCommit commits the written records when the destination is a git work tree.
func WithCommit(commit bool) Option {
	return func(o *options) {
		o.commit = commit
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures
// (e.g. permission denied) which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
