package enex

import (
	"context"
	"log/slog"
	"os"

	"github.com/artwall/harvest/pkg/core"
)

// Source implements core.ArchiveSource over a directory of archives.
type Source struct {
	Dir       string
	Pattern   string
	Stability StabilityOptions
	Logger    *slog.Logger
	// Paths, when set, replaces discovery.
	Paths []string
}

var _ core.ArchiveSource = (*Source)(nil)

// Archives loads every archive. Archives that never settle or cannot be read are returned
// with Err set rather than failing the batch.
func (s *Source) Archives(ctx context.Context) ([]core.Archive, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	paths := s.Paths
	if paths == nil {
		var err error
		if paths, err = Discover(s.Dir, s.Pattern); err != nil {
			return nil, err
		}
	}

	archives := make([]core.Archive, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return archives, err
		}
		logger.Info("reading archive", "path", path)
		archives = append(archives, s.load(ctx, logger, path))
	}
	return archives, nil
}

func (s *Source) load(ctx context.Context, logger *slog.Logger, path string) core.Archive {
	a := core.Archive{Name: path}

	if err := WaitStable(ctx, path, s.Stability); err != nil {
		logger.Warn("archive not stable", "path", path, "error", err)
		a.Err = &core.ArchiveError{Archive: path, Err: err}
		return a
	}

	f, err := os.Open(path)
	if err != nil {
		a.Err = &core.ArchiveError{Archive: path, Err: err}
		return a
	}
	defer f.Close()

	notes, rejected, err := ReadArchive(path, f)
	if err != nil {
		logger.Warn("archive unreadable", "path", path, "error", err)
		a.Err = &core.ArchiveError{Archive: path, Err: err}
		return a
	}
	a.Notes, a.Rejected = notes, rejected
	logger.Debug("archive read", "path", path, "notes", len(notes), "rejected", len(rejected))
	return a
}
