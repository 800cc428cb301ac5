package localfs

import (
	"bufio"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

func TestWriteLinesAndReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteLines(path, []string{"C C O", "", "  C C = O "}))

	lines, err := ReadLines(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C C O", "", "C C = O"}, lines)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteAtomic_FailureKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.txt")
	require.NoError(t, WriteLines(path, []string{"old"}))

	err := WriteAtomic(path, func(w *bufio.Writer) error {
		_, _ = w.WriteString("new\n")
		return stderrors.New("boom")
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIOFailure))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestReadLines_Errors(t *testing.T) {
	_, err := ReadLines(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIOFailure))

	path := filepath.Join(t.TempDir(), "x.txt")
	require.NoError(t, WriteLines(path, []string{"a"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ReadLines(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

//Personal.AI order the ending
