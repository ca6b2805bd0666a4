package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindConfig(t *testing.T) {
	// baseDir/
	//   project/ (harvest.yaml)
	//     inbox/
	//       nested/
	//   empty/
	baseDir := t.TempDir()
	projectDir := filepath.Join(baseDir, "project")
	inboxDir := filepath.Join(projectDir, "inbox")
	nestedDir := filepath.Join(inboxDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, ConfigFileName), []byte("source: inbox\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// A directory with the same name must not match.
	if err := os.Mkdir(filepath.Join(emptyDir, ConfigFileName), 0755); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(projectDir, ConfigFileName)
	tests := []struct {
		name      string
		startPath string
		want      string
		wantErr   bool
	}{
		{name: "Start At Project", startPath: projectDir, want: want},
		{name: "Start In Subdir", startPath: inboxDir, want: want},
		{name: "Start Nested Deeply", startPath: nestedDir, want: want},
		{name: "Directory Is Not A Config", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindConfig(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrConfigNotFound) {
					t.Errorf("expected ErrConfigNotFound, got %v", err)
				}
				return
			}
			if filepath.Clean(got) != filepath.Clean(tt.want) {
				t.Errorf("FindConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `source: inbox
destination: /srv/records
heuristics:
  min_lines: 5
stability:
  interval: 250ms
  checks: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Source != filepath.Join(dir, "inbox") {
		t.Errorf("Source = %q, want it resolved against the config dir", cfg.Source)
	}
	if cfg.Destination != "/srv/records" {
		t.Errorf("Destination = %q, absolute paths must be kept", cfg.Destination)
	}
	if cfg.Pattern != "**/*.enex" {
		t.Errorf("Pattern = %q, want default", cfg.Pattern)
	}
	if cfg.Heuristics.MinLines != 5 {
		t.Errorf("MinLines = %d, want 5", cfg.Heuristics.MinLines)
	}
	if cfg.Heuristics.LongFormLength != 500 {
		t.Errorf("LongFormLength = %d, omitted fields keep their default", cfg.Heuristics.LongFormLength)
	}
	if len(cfg.Heuristics.Keywords) == 0 {
		t.Error("keywords should keep their default")
	}
	if cfg.Stability.Interval != 250*time.Millisecond || cfg.Stability.Checks != 2 {
		t.Errorf("Stability = %+v", cfg.Stability)
	}
	if cfg.Stability.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want default", cfg.Stability.Timeout)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("source: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected an error for invalid yaml")
	}
}

func TestConfig_Options(t *testing.T) {
	dir := t.TempDir()
	taxPath := filepath.Join(dir, "taxonomy.yaml")
	if err := os.WriteFile(taxPath, []byte("nope: ["), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	o := apply(opts)
	if o.pattern != "**/*.enex" {
		t.Errorf("pattern = %q", o.pattern)
	}
	if o.taxonomy == nil {
		t.Error("taxonomy should default to the built-in table")
	}

	cfg.Taxonomy = taxPath
	if _, err := cfg.Options(); err == nil {
		t.Error("expected an invalid taxonomy override to fail")
	}
}
