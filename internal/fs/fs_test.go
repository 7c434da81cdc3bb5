package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFile_CreatesNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "record.rec")

	err := WriteFile(Default, path, []byte("hello"), 0o644)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}

func TestWriteFile_ReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.rec")

	require.NoError(t, WriteFile(Default, path, []byte("old content"), 0o644))
	require.NoError(t, WriteFile(Default, path, []byte("new"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.rec")

	require.NoError(t, WriteFile(Default, path, []byte("data"), 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "record.rec", entries[0].Name())
}

func TestWriteFile_InterruptedWriteKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.rec")

	require.NoError(t, WriteFile(Default, path, []byte("old content"), 0o644))

	ffs := NewFaultyFS(nil)
	ffs.AddRule(".tmp-", Fault{FailAfterBytes: 4})

	err := WriteFile(ffs, path, []byte("this write will be interrupted"), 0o644)
	require.Error(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "old content", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should be cleaned up")
}

func TestWriteFile_SyncFailureKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.rec")

	require.NoError(t, WriteFile(Default, path, []byte("old content"), 0o644))

	ffs := NewFaultyFS(nil)
	ffs.AddRule(".tmp-", Fault{FailAfterBytes: -1, FailOnSync: true})

	err := WriteFile(ffs, path, []byte("never visible"), 0o644)
	require.Error(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "old content", string(got))
}

func TestWriteFile_RenameFailureKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "record.rec")

	require.NoError(t, WriteFile(Default, path, []byte("old content"), 0o644))

	ffs := NewFaultyFS(nil)
	ffs.AddRule("record.rec", Fault{FailAfterBytes: -1, FailOnRename: true})

	err := WriteFile(ffs, path, []byte("never visible"), 0o644)
	require.Error(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "old content", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should be cleaned up")
}

func TestReadFile_NotExist(t *testing.T) {
	_, err := ReadFile(Default, filepath.Join(t.TempDir(), "missing.rec"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
