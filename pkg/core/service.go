package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Stages groups the pipeline steps a Service runs for every note.
type Stages struct {
	Parser     Parser
	Classifier Classifier
	Validator  Validator
	Splitter   Splitter
	Generator  Generator
}

// Service runs notes through the pipeline and hands the resulting records to a Sink.
type Service struct {
	stages Stages
	sink   Sink
	logger *slog.Logger

	mu         sync.RWMutex
	processed  int
	failed     int
	lastRunID  string
	lastStates map[State]int
}

// NewService creates a new Service. A nil logger discards output.
func NewService(stages Stages, sink Sink, logger *slog.Logger) (*Service, error) {
	if stages.Parser == nil || stages.Classifier == nil || stages.Validator == nil ||
		stages.Splitter == nil || stages.Generator == nil {
		return nil, errors.New("all pipeline stages are required")
	}
	if sink == nil {
		return nil, errors.New("sink cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		stages:     stages,
		sink:       sink,
		logger:     logger,
		lastStates: make(map[State]int),
	}, nil
}

// ProcessNote runs a single note to a terminal state.
// The registry may be nil when duplicate numbering is not wanted.
func (s *Service) ProcessNote(ctx context.Context, note Note, titles *TitleRegistry) Outcome {
	out := Outcome{Title: note.Title, State: StateExtracted}

	title, renamed := titles.Resolve(note.Title)
	if renamed {
		out.Warnings = append(out.Warnings, fmt.Sprintf("title '%s' renamed to '%s' because it is a duplicate", note.Title, title))
	}
	out.Title = title
	if strings.Contains(title, "'") {
		out.Warnings = append(out.Warnings, fmt.Sprintf("title contains an apostrophe: '%s', consider renaming it", title))
	}

	ext, err := s.stages.Parser.Extract(note.Body)
	if err != nil {
		return s.fail(out, StateParseFailed, err)
	}
	out.State = StateMetadataParsed
	if ext.Recovered != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("'%s': %v", title, ext.Recovered))
		s.logger.Warn("metadata recovered", "title", title, "error", ext.Recovered)
	}

	meta := ext.Metadata
	if clean := stripTitlePrefix(title); clean != "" {
		meta["title"] = clean
	}

	meta, warnings := s.stages.Classifier.Classify(meta, ext.Content, note.Resources)
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, fmt.Sprintf("'%s': %s", title, w))
	}
	out.State = StateClassified
	out.Medium = meta.String("medium")
	out.Subtype = meta.String("subtype")

	segments := s.stages.Splitter.Split(ext.Content)
	vc := ValidationContext{
		HasTranslations: len(segments) > 1,
		SegmentCount:    len(segments),
		HasResources:    len(note.Resources) > 0,
	}
	if errs := s.stages.Validator.Validate(meta, vc); len(errs) > 0 {
		return s.fail(out, StateRejected, errs.Err())
	}
	out.State = StateValidated
	out.Warnings = append(out.Warnings, languageWarnings(title, segments, meta.Languages())...)

	records, err := s.stages.Generator.Generate(RecordInput{
		Metadata:  meta,
		Content:   ext.Content,
		Segments:  segments,
		Resources: note.Resources,
	})
	if err != nil {
		return s.fail(out, StateFailed, err)
	}

	for _, rec := range records {
		if err := s.sink.Write(ctx, rec); err != nil {
			var we *WriteError
			if !errors.As(err, &we) {
				err = &WriteError{File: rec.FileName(), Err: err}
			}
			return s.fail(out, StateFailed, err)
		}
		s.logger.Debug("record written", "file", rec.FileName(), "medium", rec.Medium)
	}

	out.Records = records
	out.State = StateRecordsEmitted
	s.record(out.State)
	return out
}

// ProcessBatch loads every archive from src and processes all notes in archive order.
// One note failing never aborts the batch; only a source error or cancellation does.
func (s *Service) ProcessBatch(ctx context.Context, src ArchiveSource) (*Report, error) {
	archives, err := src.Archives(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load archives: %w", err)
	}

	report := NewReport(uuid.NewString())
	s.mu.Lock()
	s.lastRunID = report.RunID
	s.mu.Unlock()

	var titles []string
	for _, a := range archives {
		for _, n := range a.Notes {
			titles = append(titles, n.Title)
		}
	}
	registry := NewTitleRegistry(titles)
	report.Warnings = append(report.Warnings, duplicateWarnings(registry)...)

	for _, a := range archives {
		if a.Err != nil {
			report.Failed = append(report.Failed, Failure{
				Title:   "archive: " + a.Name,
				Archive: a.Name,
				Kind:    KindArchive,
				Reason:  a.Err.Error(),
			})
			s.logger.Warn("archive skipped", "archive", a.Name, "error", a.Err)
			continue
		}
		report.Failed = append(report.Failed, a.Rejected...)

		s.logger.Info("processing archive", "archive", a.Name, "notes", len(a.Notes))
		for _, note := range a.Notes {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			out := s.ProcessNote(ctx, note, registry)
			report.Warnings = append(report.Warnings, out.Warnings...)
			if !out.OK() {
				report.Failed = append(report.Failed, Failure{
					Title:   out.Title,
					Archive: a.Name,
					Kind:    KindOf(out.Err),
					Reason:  out.Err.Error(),
				})
				s.logger.Warn("note failed", "title", out.Title, "archive", a.Name, "state", out.State, "error", out.Err)
				continue
			}

			report.MediumCounts[out.Medium]++
			report.SubtypeCounts[out.Medium+"/"+out.Subtype]++
			files := make([]string, 0, len(out.Records))
			for _, rec := range out.Records {
				files = append(files, rec.FileName())
			}
			report.Success = append(report.Success, Success{Title: out.Title, Files: files})
		}
	}

	return report, nil
}

func (s *Service) fail(out Outcome, state State, err error) Outcome {
	out.State = state
	out.Err = err
	s.record(state)
	return out
}

func (s *Service) record(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	if state != StateRecordsEmitted {
		s.failed++
	}
	s.lastStates[state]++
}

// stripTitlePrefix drops everything up to and including the first ": " of an archive title,
// which exports use for notebook prefixes.
func stripTitlePrefix(title string) string {
	if i := strings.Index(title, ": "); i != -1 {
		title = title[i+2:]
	}
	return strings.TrimSpace(title)
}

func duplicateWarnings(r *TitleRegistry) []string {
	dups := r.Duplicates()
	names := make([]string, 0, len(dups))
	for t := range dups {
		names = append(names, t)
	}
	sort.Strings(names)

	warnings := make([]string, 0, len(names))
	for _, t := range names {
		warnings = append(warnings, fmt.Sprintf("duplicate title '%s' occurs %d times, later notes are numbered", t, dups[t]))
	}
	return warnings
}

// languageWarnings flags delimiters whose code disagrees with the language declared at the
// same position. Segments are still paired by position.
func languageWarnings(title string, segments []Segment, languages []string) []string {
	var warnings []string
	for i := 1; i < len(segments) && i < len(languages); i++ {
		if !strings.EqualFold(segments[i].Code, languages[i]) {
			warnings = append(warnings, fmt.Sprintf("'%s': translation %d is marked '%s' but language%d is '%s'",
				title, i+1, segments[i].Code, i+1, languages[i]))
		}
	}
	return warnings
}
