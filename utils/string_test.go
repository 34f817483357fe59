package utils

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestPluralize(t *testing.T) {
	assert.Equal(t, "0 batches", Pluralize("batch", 0))
	assert.Equal(t, "1 batch", Pluralize("batch", 1))
	assert.Equal(t, "2 batches", Pluralize("batch", 2))
	assert.Equal(t, "0 models", Pluralize("model", 0))
	assert.Equal(t, "1 model", Pluralize("model", 1))
	assert.Equal(t, "1,234 models", Pluralize("model", 1234))
	assert.Equal(t, "2 categories", Pluralize("category", 2))
	assert.Equal(t, "2 keys", Pluralize("key", 2))
}

func TestIsInArray(t *testing.T) {
	assert.True(t, IsInArray("node_modules", []string{"__MACOSX", "node_modules"}))
	assert.False(t, IsInArray("Node_Modules", []string{"node_modules"}))
	assert.True(t, IsInArrayFold("Node_Modules", []string{"node_modules"}))
}
