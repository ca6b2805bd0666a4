package enex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches archives anywhere below the source directory.
const DefaultPattern = "**/*.enex"

// ErrUnstable is returned when an archive keeps changing until the wait times out.
var ErrUnstable = errors.New("archive is still being written")

// Discover returns the archives below dir matching pattern, sorted by path.
func Discover(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid archive pattern %q", pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discovering archives in %s: %w", dir, err)
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}

// Matches reports whether path, relative to dir, matches pattern.
func Matches(dir, pattern, path string) bool {
	if pattern == "" {
		pattern = DefaultPattern
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

// StabilityOptions configure the file-stability gate.
type StabilityOptions struct {
	// Interval between size checks.
	Interval time.Duration `yaml:"interval"`
	// Checks is the number of consecutive equal sizes required. Zero disables the gate.
	Checks int `yaml:"checks"`
	// Timeout bounds the whole wait.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultStability polls every two seconds and needs three equal sizes within two minutes.
func DefaultStability() StabilityOptions {
	return StabilityOptions{Interval: 2 * time.Second, Checks: 3, Timeout: 120 * time.Second}
}

// WaitStable blocks until the size of path stops changing. It returns ErrUnstable on
// timeout and ctx.Err() when cancelled. A missing file is retried until the timeout.
func WaitStable(ctx context.Context, path string, opts StabilityOptions) error {
	if opts.Checks <= 0 {
		return nil
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultStability().Interval
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var last int64 = -1
	stable := 0
	for {
		if info, err := os.Stat(path); err == nil {
			if size := info.Size(); size == last {
				stable++
				if stable >= opts.Checks {
					return nil
				}
			} else {
				stable = 0
				last = size
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", ErrUnstable, path)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
