package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tempPattern names scratch files; one survives only when the process dies mid-write.
const tempPattern = ".harvest-*.tmp"

// ErrUnsafePath is returned for a record whose medium or file name would leave its medium directory.
var ErrUnsafePath = errors.New("record path escapes the destination")

// localName reports whether name is a single path element that stays where it is joined.
func localName(name string) bool {
	return name != "" && name != "." && filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}

// replaceFile creates dir when needed and swaps name inside it for data.
// Readers see the old file or the new one, never a partial write.
func replaceFile(dir, name string, data []byte, perm os.FileMode) (err error) {
	if !localName(name) {
		return fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
