package organizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestUniquePath_NoCollision(t *testing.T) {
	dir := t.TempDir()

	got, err := UniquePath(dir, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.txt"), got)
}

func TestUniquePath_SkipsExisting(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "a (1).txt"))
	touch(t, filepath.Join(dir, "a (2).txt"))

	got, err := UniquePath(dir, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a (3).txt"), got)
}

func TestUniquePath_FillsFirstGap(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"))
	touch(t, filepath.Join(dir, "a (2).txt"))

	got, err := UniquePath(dir, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a (1).txt"), got)
}

func TestUniquePath_NoExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "README"))

	got, err := UniquePath(dir, "README")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "README (1)"), got)
}

func TestUniquePath_MultiDotKeepsLastExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "backup.tar.gz"))

	got, err := UniquePath(dir, "backup.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup.tar (1).gz"), got)
}

func TestUniquePath_NestedCounterNotDeduplicated(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a (1).txt"))

	got, err := UniquePath(dir, "a (1).txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a (1) (1).txt"), got)
}

func TestUniquePath_DotFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, ".env"))

	got, err := UniquePath(dir, ".env")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".env (1)"), got)
}

func TestUniquePath_DirectoryCountsAsTaken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a.txt"), 0o755))

	got, err := UniquePath(dir, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a (1).txt"), got)
}
