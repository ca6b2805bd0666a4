package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/artwall/harvest/pkg/adapters/enex"
	"github.com/artwall/harvest/pkg/adapters/fs"
	"github.com/artwall/harvest/pkg/classify"
	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/git"
	"github.com/artwall/harvest/pkg/metadata"
	"github.com/artwall/harvest/pkg/record"
	"github.com/artwall/harvest/pkg/taxonomy"
	"github.com/artwall/harvest/pkg/translation"
	"github.com/artwall/harvest/pkg/validate"
)

// Harvester is a fully wired pipeline plus the adapters that feed and drain it.
type Harvester struct {
	service *core.Service
	sink    core.Sink
	dest    string
	opts    *options
}

// Result is what one batch produced.
type Result struct {
	Report    *core.Report
	Stats     fs.Stats
	Committed bool
}

type flusher interface {
	Flush() error
}

type statser interface {
	Stats() fs.Stats
}

// New wires every pipeline stage and, unless a sink is injected, a filesystem sink rooted at dest.
//
//	h, err := harvest.New("./records", harvest.WithDryRun(true))
func New(dest string, opts ...Option) (*Harvester, error) {
	o := apply(opts)

	sink := o.sink
	if sink == nil {
		fsSink, err := fs.NewSink(fs.Config{
			Root:      dest,
			SystemDir: o.systemDir,
			DryRun:    o.dryRun,
			Logger:    o.logger.With("component", "sink"),
		})
		if err != nil {
			return nil, err
		}
		sink = fsSink
	}

	service, err := core.NewService(Stages(o.taxonomy, o.heuristics), sink, o.logger)
	if err != nil {
		return nil, err
	}

	return &Harvester{service: service, sink: sink, dest: dest, opts: o}, nil
}

// Stages returns the default stage implementations for a taxonomy.
func Stages(tax *taxonomy.Taxonomy, h classify.Heuristics) core.Stages {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return core.Stages{
		Parser:     metadata.New(),
		Classifier: classify.New(tax, h),
		Validator:  validate.New(tax),
		Splitter:   translation.Splitter{},
		Generator:  record.New(tax),
	}
}

// Service returns the underlying pipeline service.
func (h *Harvester) Service() *core.Service {
	return h.service
}

// Sink returns the record writer in use.
func (h *Harvester) Sink() core.Sink {
	return h.sink
}

// Taxonomy returns the table every stage was built with.
func (h *Harvester) Taxonomy() *taxonomy.Taxonomy {
	return h.opts.taxonomy
}

// Logger returns the configured logger.
func (h *Harvester) Logger() *slog.Logger {
	return h.opts.logger
}

// Source returns an archive source over dir. When paths are given only those archives are read.
func (h *Harvester) Source(dir string, paths ...string) *enex.Source {
	return &enex.Source{
		Dir:       dir,
		Pattern:   h.opts.pattern,
		Stability: h.opts.stability,
		Logger:    h.opts.logger.With("component", "source"),
		Paths:     paths,
	}
}

// Watcher returns an inbox watcher over dir.
func (h *Harvester) Watcher(dir string) *enex.Watcher {
	return &enex.Watcher{
		Dir:          dir,
		Pattern:      h.opts.pattern,
		Stability:    h.opts.stability,
		Debounce:     h.opts.debounce,
		Logger:       h.opts.logger.With("component", "watcher"),
		ErrorHandler: h.opts.errorHandler,
	}
}

// Run processes one batch, persists the sink index and optionally commits the records.
func (h *Harvester) Run(ctx context.Context, src core.ArchiveSource) (*Result, error) {
	report, err := h.service.ProcessBatch(ctx, src)
	res := &Result{Report: report}

	if f, ok := h.sink.(flusher); ok {
		if ferr := f.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}
	if s, ok := h.sink.(statser); ok {
		res.Stats = s.Stats()
	}
	if err != nil {
		return res, err
	}

	if h.opts.commit && !h.opts.dryRun && h.opts.sink == nil {
		committed, cerr := h.commit(ctx, res)
		if cerr != nil {
			return res, fmt.Errorf("failed to commit records: %w", cerr)
		}
		res.Committed = committed
	}
	return res, nil
}

// Watch runs a batch for every stable archive the watcher delivers until ctx is done.
// onResult receives each batch outcome; batch errors do not stop the watch.
func (h *Harvester) Watch(ctx context.Context, dir string, onResult func(enex.Event, *Result, error)) error {
	events, err := h.Watcher(dir).Watch(ctx)
	if err != nil {
		return err
	}

	for ev := range events {
		h.opts.logger.Info("archive ready", "event", ev.String())
		res, err := h.Run(ctx, h.Source(dir, ev.Path))
		if onResult != nil {
			onResult(ev, res, err)
		}
	}
	return ctx.Err()
}

func (h *Harvester) commit(ctx context.Context, res *Result) (bool, error) {
	if res.Stats.Written == 0 {
		return false, nil
	}

	client := git.NewClient(h.dest, h.opts.logger.With("component", "git"))
	if !client.IsRepo(ctx) {
		h.opts.logger.Warn("destination is not a git work tree, skipping commit", "dest", h.dest)
		return false, nil
	}

	systemDir := h.opts.systemDir
	if systemDir == "" {
		systemDir = fs.DefaultSystemDir
	}
	msg := fmt.Sprintf("harvest: %d notes, %d records written (run %s)",
		len(res.Report.Success), res.Stats.Written, res.Report.RunID)
	return client.CommitPaths(ctx, msg, ".", ":(exclude)"+systemDir, ":(exclude)"+git.LockFile)
}
