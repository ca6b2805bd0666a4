// Package fs writes records to a destination directory.
//
// Records land in <root>/<medium>/<file name>. Writes are atomic and overwrite in place;
// a fingerprint index under <root>/.harvest skips payloads that are already on disk.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/artwall/harvest/pkg/core"
)

// DefaultSystemDir holds the fingerprint index below the destination root.
const DefaultSystemDir = ".harvest"

// Config holds the configuration for the record sink.
type Config struct {
	Root      string
	SystemDir string
	// DryRun counts records without touching the disk.
	DryRun bool
	Perm   os.FileMode
	Logger *slog.Logger
}

// Stats counts what a sink did.
type Stats struct {
	Written   int `json:"written"`
	Unchanged int `json:"unchanged"`
}

// Sink implements core.Sink on the local filesystem.
type Sink struct {
	config Config
	index  *fingerprints

	mu        sync.RWMutex
	stats     Stats
	lastWrite *time.Time
}

var _ core.Sink = (*Sink)(nil)

// NewSink creates a sink and loads its fingerprint index.
func NewSink(config Config) (*Sink, error) {
	if config.Root == "" {
		return nil, fmt.Errorf("destination root is required")
	}
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Perm == 0 {
		config.Perm = 0644
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Sink{config: config, index: newFingerprints(config.Root, config.SystemDir)}
	if err := s.index.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Write stores one record. A payload identical to the one already on disk is skipped.
func (s *Sink) Write(ctx context.Context, rec core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	medium := rec.Medium
	if medium == "" {
		medium = "other"
	}
	rel := path.Join(medium, rec.FileName())
	if !localName(medium) || medium == s.config.SystemDir || !localName(rec.FileName()) {
		return &core.WriteError{File: rel, Err: ErrUnsafePath}
	}
	full := filepath.Join(s.config.Root, filepath.FromSlash(rel))
	hash := fingerprint(rec.Payload)

	if e, ok := s.index.Get(rel); ok && e.Hash == hash {
		if info, err := os.Stat(full); err == nil && info.Size() == e.Size {
			s.config.Logger.Debug("record unchanged", "file", rel)
			s.count(func(st *Stats) { st.Unchanged++ })
			return nil
		}
	}

	if s.config.DryRun {
		s.config.Logger.Debug("dry run, not writing", "file", rel)
		s.count(func(st *Stats) { st.Written++ })
		return nil
	}

	if err := replaceFile(filepath.Dir(full), rec.FileName(), rec.Payload, s.config.Perm); err != nil {
		return &core.WriteError{File: rel, Err: err}
	}

	now := time.Now()
	s.index.Set(rel, &indexEntry{Hash: hash, Size: int64(len(rec.Payload)), Written: now})
	s.count(func(st *Stats) { st.Written++ })
	s.mu.Lock()
	s.lastWrite = &now
	s.mu.Unlock()
	return nil
}

// Flush prunes entries for deleted files and persists the index.
func (s *Sink) Flush() error {
	if s.config.DryRun {
		return nil
	}
	if n := s.index.Prune(s.config.Root); n > 0 {
		s.config.Logger.Debug("pruned index", "entries", n)
	}
	if err := s.index.Save(); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	return nil
}

// Stats returns the counts so far.
func (s *Sink) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Root returns the destination directory.
func (s *Sink) Root() string {
	return s.config.Root
}

func (s *Sink) count(fn func(*Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.stats)
}
