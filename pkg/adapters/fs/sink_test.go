package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artwall/harvest/pkg/core"
	"github.com/artwall/harvest/pkg/record"
)

func textRecord(t *testing.T, body string) core.Record {
	t.Helper()
	meta := core.Metadata{"title": "Ode", "year": 2021, "language": "en"}
	payload, err := record.Envelope(meta, body)
	require.NoError(t, err)
	return core.Record{
		BaseName: "20210503_writing_poem_ode_en",
		Ext:      ".html",
		Kind:     core.RecordText,
		Medium:   "writing",
		Language: "en",
		Metadata: meta,
		Payload:  payload,
	}
}

func TestSink_Write(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	sink, err := NewSink(Config{Root: root})
	require.NoError(t, err)

	rec := textRecord(t, "Hello")
	require.NoError(t, sink.Write(ctx, rec))

	target := filepath.Join(root, "writing", "20210503_writing_poem_ode_en.html")
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, rec.Payload, got)

	t.Run("Identical Payload Is Skipped", func(t *testing.T) {
		require.NoError(t, sink.Write(ctx, rec))
		assert.Equal(t, Stats{Written: 1, Unchanged: 1}, sink.Stats())
	})

	t.Run("Changed Payload Overwrites In Place", func(t *testing.T) {
		require.NoError(t, sink.Write(ctx, textRecord(t, "Hello again")))
		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(got), "Hello again")
		assert.Equal(t, 2, sink.Stats().Written)
	})

	t.Run("Deleted File Is Rewritten", func(t *testing.T) {
		require.NoError(t, os.Remove(target))
		require.NoError(t, sink.Write(ctx, textRecord(t, "Hello again")))
		assert.FileExists(t, target)
	})
}

func TestSink_IndexPersists(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	first, err := NewSink(Config{Root: root})
	require.NoError(t, err)
	require.NoError(t, first.Write(ctx, textRecord(t, "Hello")))
	require.NoError(t, first.Flush())
	assert.FileExists(t, filepath.Join(root, DefaultSystemDir, "index.json"))

	second, err := NewSink(Config{Root: root})
	require.NoError(t, err)
	require.NoError(t, second.Write(ctx, textRecord(t, "Hello")))
	assert.Equal(t, Stats{Unchanged: 1}, second.Stats())

	state := second.State().(SinkState)
	assert.Equal(t, 1, state.IndexSize)
	assert.Equal(t, "sink", second.ComponentType())
}

func TestSink_FlushPrunesDeletedFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	sink, err := NewSink(Config{Root: root})
	require.NoError(t, err)

	rec := textRecord(t, "Hello")
	require.NoError(t, sink.Write(ctx, rec))
	require.NoError(t, os.Remove(filepath.Join(root, "writing", rec.FileName())))
	require.NoError(t, sink.Flush())
	assert.Equal(t, 0, sink.index.Len())
}

func TestSink_DryRun(t *testing.T) {
	root := t.TempDir()
	sink, err := NewSink(Config{Root: root, DryRun: true})
	require.NoError(t, err)

	require.NoError(t, sink.Write(context.Background(), textRecord(t, "Hello")))
	require.NoError(t, sink.Flush())

	assert.Equal(t, 1, sink.Stats().Written)
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not touch the disk")
}

func TestSink_WriteFailure(t *testing.T) {
	root := t.TempDir()
	// A file where the medium directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(root, "writing"), []byte("x"), 0644))

	sink, err := NewSink(Config{Root: root})
	require.NoError(t, err)

	err = sink.Write(context.Background(), textRecord(t, "Hello"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrWrite))
	var we *core.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "writing/20210503_writing_poem_ode_en.html", we.File)
}

func TestSink_RequiresRoot(t *testing.T) {
	_, err := NewSink(Config{})
	assert.Error(t, err)
}

func TestSink_CancelledContext(t *testing.T) {
	sink, err := NewSink(Config{Root: t.TempDir()})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Write(ctx, textRecord(t, "x")), context.Canceled)
}

func TestReadRecord(t *testing.T) {
	root := t.TempDir()
	sink, err := NewSink(Config{Root: root})
	require.NoError(t, err)
	rec := textRecord(t, "Hello<br>World")
	require.NoError(t, sink.Write(context.Background(), rec))

	meta, body, err := ReadRecord(filepath.Join(root, "writing", rec.FileName()))
	require.NoError(t, err)
	assert.Equal(t, "Ode", meta.String("title"))
	assert.Equal(t, "2021", meta.String("year"))
	assert.Equal(t, "en", meta.String("language"))
	assert.Equal(t, "Hello<br>World", string(body))
}

func TestFingerprints_CorruptedIndexStartsEmpty(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DefaultSystemDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultSystemDir, "index.json"), []byte("{ invalid"), 0644))

	f := newFingerprints(root, DefaultSystemDir)
	require.NoError(t, f.Load())
	assert.Equal(t, 0, f.Len())
}
