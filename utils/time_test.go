package utils

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "12s", FormatDuration(12*time.Second))
	assert.Equal(t, "3m", FormatDuration(3*time.Minute+12*time.Second))
	assert.Equal(t, "1h 5m", FormatDuration(time.Hour+5*time.Minute+1*time.Second))
}

func TestFormatSince(t *testing.T) {
	assert.Equal(t, "never", FormatSince(nil))
}
