// Package git commits emitted records into a destination that is a git work tree.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// LockFile is created in the work tree while a commit is in progress.
	LockFile = ".harvest.lock"
	// DefaultLockTimeout bounds how long Lock waits for another process.
	DefaultLockTimeout = 30 * time.Second
)

// ErrLocked is returned when the lock could not be acquired in time.
var ErrLocked = errors.New("work tree is locked by another process")

// Client wraps git command execution with a file-based lock for process safety.
type Client struct {
	WorkDir     string
	Logger      *slog.Logger
	LockTimeout time.Duration
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		WorkDir:     workDir,
		Logger:      logger,
		LockTimeout: DefaultLockTimeout,
	}
}

// Lock acquires the work tree lock, polling until it is free, the timeout expires or ctx is done.
func (c *Client) Lock(ctx context.Context) (func(), error) {
	path := filepath.Join(c.WorkDir, LockFile)
	timeout := c.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	deadline := time.Now().Add(timeout)

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Run executes a raw git command in the working directory.
// It does not take the lock; callers that mutate the index should hold it.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkDir

	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}
	return strings.TrimSpace(output), nil
}

// Init initializes a repository. Re-running it on an existing repository is harmless.
func (c *Client) Init(ctx context.Context) error {
	_, err := c.Run(ctx, "init")
	return err
}

// IsRepo reports whether WorkDir is inside a git work tree.
func (c *Client) IsRepo(ctx context.Context) bool {
	out, err := c.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Add stages paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := c.Run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// Commit records staged changes.
func (c *Client) Commit(ctx context.Context, msg string) error {
	_, err := c.Run(ctx, "commit", "-m", msg)
	return err
}

// Status returns the porcelain status, limited to paths when given.
func (c *Client) Status(ctx context.Context, paths ...string) (string, error) {
	args := []string{"status", "--porcelain"}
	if len(paths) > 0 {
		args = append(append(args, "--"), paths...)
	}
	return c.Run(ctx, args...)
}

// CommitPaths stages paths and commits them under the lock.
// It returns false without committing when nothing changed.
func (c *Client) CommitPaths(ctx context.Context, msg string, paths ...string) (bool, error) {
	unlock, err := c.Lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	if err := c.Add(ctx, paths...); err != nil {
		return false, err
	}
	status, err := c.Status(ctx, paths...)
	if err != nil {
		return false, err
	}
	if status == "" {
		c.Logger.Debug("nothing to commit", "dir", c.WorkDir)
		return false, nil
	}
	if err := c.Commit(ctx, msg); err != nil {
		return false, err
	}
	c.Logger.Info("records committed", "dir", c.WorkDir, "message", msg)
	return true, nil
}
