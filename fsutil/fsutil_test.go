package fsutil

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestMoveFileShouldCreateDirectoryAndMove(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "incoming", "benchy.stl")
	destination := filepath.Join(dir, "Boats", "Benchy", "benchy.stl")
	writeFile(t, source, "solid benchy")

	assert.NoError(t, MoveFile(source, destination))
	assert.False(t, IsFile(source))
	assert.True(t, IsFile(destination))
}

func TestMoveFileShouldRemoveSourceWhenDestinationIsTheSame(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.stl")
	destination := filepath.Join(dir, "b", "a.stl")
	writeFile(t, source, "same")
	writeFile(t, destination, "same")

	assert.NoError(t, MoveFile(source, destination))
	assert.False(t, IsFile(source))
	assert.True(t, IsFile(destination))
}

func TestMoveFileShouldRefuseADifferentDestination(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.stl")
	destination := filepath.Join(dir, "b", "a.stl")
	writeFile(t, source, "left")
	writeFile(t, destination, "right")

	assert.ErrorIs(t, MoveFile(source, destination), ErrDestinationDiffers)
	assert.True(t, IsFile(source))
}

func TestMoveDirShouldRefuseAnExistingDestination(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a.stl"), "a")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dst"), 0750))

	assert.ErrorIs(t, MoveDir(filepath.Join(dir, "src"), filepath.Join(dir, "dst")), ErrDestinationExists)
	assert.True(t, IsFile(filepath.Join(dir, "src", "a.stl")))
}

func TestMoveDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "nested", "a.stl"), "a")

	assert.NoError(t, MoveDir(filepath.Join(dir, "src"), filepath.Join(dir, "Toys", "src")))
	assert.True(t, IsFile(filepath.Join(dir, "Toys", "src", "nested", "a.stl")))
	assert.False(t, IsDir(filepath.Join(dir, "src")))
}

func TestClearEmptyFolders(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b", "c", "d"), 0750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "j", "v"), 0750))
	writeFile(t, filepath.Join(root, "k", "keep.stl"), "k")

	assert.NoError(t, ClearEmptyFolders(root))

	assert.True(t, IsDir(root))
	assert.False(t, IsDir(filepath.Join(root, "a")))
	assert.False(t, IsDir(filepath.Join(root, "j")))
	assert.True(t, IsFile(filepath.Join(root, "k", "keep.stl")))
}

func TestRemoveEmptyParents(t *testing.T) {
	root := t.TempDir()
	deepFile := filepath.Join(root, "x", "y", "z", "file.stl")
	require.NoError(t, os.MkdirAll(filepath.Dir(deepFile), 0750))

	assert.NoError(t, RemoveEmptyParents(deepFile, root))
	assert.False(t, IsDir(filepath.Join(root, "x")))
	assert.True(t, IsDir(root))
}

func TestRelativeSegmentsAndIsWithin(t *testing.T) {
	root := filepath.Join("/", "library")

	assert.Equal(t, []string{"Toys", "Dragon", "dragon.stl"}, RelativeSegments(root, filepath.Join(root, "Toys", "Dragon", "dragon.stl")))
	assert.Nil(t, RelativeSegments(root, root))
	assert.True(t, IsWithin(root, filepath.Join(root, "Toys")))
	assert.True(t, IsWithin(root, root))
	assert.False(t, IsWithin(root, filepath.Join("/", "library-other")))
	assert.False(t, IsWithin(root, "/"))
}
