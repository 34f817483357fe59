package config

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("debug: true\n"))
	assert.NoError(t, err)

	assert.True(t, c.IsDebug)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, 20*time.Second, c.WatcherDebounce)
	assert.Equal(t, 5*time.Minute, c.WatcherBackstop)
	assert.Equal(t, 10, c.LLMBatchSize)
	assert.Equal(t, 0.8, c.HighConfidence)
	assert.Equal(t, 0.79, c.SecondaryCap)
	assert.Equal(t, int64(4), c.MaxConcurrentFileOperations)
}

func TestParseReadsSuggestionTuning(t *testing.T) {
	c, err := Parse([]byte(`
high_confidence: 0.9
synonym_groups:
  - [toys, figurine]
phrase_only_categories: [Art]
category_descriptions:
  Kitchen: things for cooking
`))
	assert.NoError(t, err)

	assert.Equal(t, 0.9, c.HighConfidence)
	assert.Equal(t, [][]string{{"toys", "figurine"}}, c.SynonymGroups)
	assert.Equal(t, []string{"Art"}, c.PhraseOnlyCategories)
	assert.Equal(t, "things for cooking", c.CategoryDescriptions["Kitchen"])
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("debug: [unterminated"))
	assert.Error(t, err)
}
