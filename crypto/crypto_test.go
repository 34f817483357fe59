package crypto

import (
	"github.com/stretchr/testify/assert"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	left := filepath.Join(dir, "left.stl")
	right := filepath.Join(dir, "right.stl")
	other := filepath.Join(dir, "other.stl")

	assert.NoError(t, os.WriteFile(left, []byte("solid cube"), 0600))
	assert.NoError(t, os.WriteFile(right, []byte("solid cube"), 0600))
	assert.NoError(t, os.WriteFile(other, []byte("solid sphere"), 0600))

	leftHash, err := HashFile(left)
	assert.NoError(t, err)
	assert.Greater(t, len(leftHash), 80)

	rightHash, err := HashFile(right)
	assert.NoError(t, err)
	assert.Equal(t, leftHash, rightHash)

	otherHash, err := HashFile(other)
	assert.NoError(t, err)
	assert.NotEqual(t, leftHash, otherHash)
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "missing.stl"))
	assert.Error(t, err)
}
