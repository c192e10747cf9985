package output

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdoutWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewStdoutWriter(&buf)

	require.NoError(t, w.Write([]byte(`{"base00":"#000"}`)))
	require.NoError(t, w.Write([]byte("already\n")))
	assert.Equal(t, "{\"base00\":\"#000\"}\nalready\n", buf.String())
}

func TestStdoutWriter_NilDefault(t *testing.T) {
	// When nil is passed, it defaults to os.Stdout — just verify it doesn't panic.
	w := NewStdoutWriter(nil)
	assert.NotNil(t, w)
}

func TestFileWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "palette.json")

	w := NewFileWriter(path)
	data := []byte(`{"base00":"#000"}`)
	require.NoError(t, w.Write(data))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, string(data), string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileWriter_LogsReplacement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.json")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	w := NewFileWriter(path, WithLogger(logger))

	require.NoError(t, w.Write([]byte("{}")))
	assert.Empty(t, logs.String())

	require.NoError(t, w.Write([]byte("{}")))
	assert.Contains(t, logs.String(), "replacing existing file")
	assert.Contains(t, logs.String(), "path="+path)
}

func TestFileWriter_OverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.json")

	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644)) //nolint:gosec // test

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("new")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileWriter_InvalidPath(t *testing.T) {
	w := NewFileWriter("/dev/null/impossible/palette.json")
	assert.Error(t, w.Write([]byte("data")))
}
