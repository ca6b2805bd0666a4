package fs

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// indexEntry fingerprints one written record.
type indexEntry struct {
	Hash    string    `json:"hash"`
	Size    int64     `json:"size"`
	Written time.Time `json:"written"`
}

// index is the persistent fingerprint state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // Key is the slash-separated path below the root.
	dirty   bool
	mu      sync.RWMutex
}

// fingerprints manages loading, updating and saving the index.
type fingerprints struct {
	Path  string // Path to .harvest/index.json
	index *index
}

func newFingerprints(root, systemDir string) *fingerprints {
	return &fingerprints{
		Path: filepath.Join(root, systemDir, "index.json"),
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// fingerprint is the hex blake3 digest of data.
func fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load reads the index from disk. A missing or corrupted index starts empty.
func (f *fingerprints) Load() error {
	f.index.mu.Lock()
	defer f.index.mu.Unlock()

	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	if err := json.Unmarshal(data, f.index); err != nil || f.index.Entries == nil {
		// Self-heal: the index only saves rewrites, it is never the source of truth.
		f.index.Entries = make(map[string]*indexEntry)
	}
	f.index.dirty = false
	return nil
}

// Save persists the index if it changed.
func (f *fingerprints) Save() error {
	f.index.mu.RLock()
	if !f.index.dirty {
		f.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(f.index, "", "  ")
	f.index.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := replaceFile(filepath.Dir(f.Path), filepath.Base(f.Path), data, 0644); err != nil {
		return err
	}

	f.index.mu.Lock()
	f.index.dirty = false
	f.index.mu.Unlock()
	return nil
}

// Get returns the entry for rel.
func (f *fingerprints) Get(rel string) (*indexEntry, bool) {
	f.index.mu.RLock()
	defer f.index.mu.RUnlock()
	e, ok := f.index.Entries[rel]
	return e, ok
}

// Set records the entry for rel.
func (f *fingerprints) Set(rel string, e *indexEntry) {
	f.index.mu.Lock()
	defer f.index.mu.Unlock()
	f.index.Entries[rel] = e
	f.index.dirty = true
}

// Prune drops entries whose file no longer exists below root.
func (f *fingerprints) Prune(root string) int {
	f.index.mu.Lock()
	defer f.index.mu.Unlock()
	removed := 0
	for rel := range f.index.Entries {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); os.IsNotExist(err) {
			delete(f.index.Entries, rel)
			f.index.dirty = true
			removed++
		}
	}
	return removed
}

// Len returns the number of entries.
func (f *fingerprints) Len() int {
	f.index.mu.RLock()
	defer f.index.mu.RUnlock()
	return len(f.index.Entries)
}
