package names

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestCleanupFolderName(t *testing.T) {
	cases := map[string]string{
		"003_My_Cool_Model_v2":         "My Cool Model",
		"01-dragon-bust":               "Dragon Bust",
		"Benchy (1)":                   "Benchy",
		"Planter_final (copy)":         "Planter",
		"spice rack backup2":           "Spice Rack",
		"gridfinity_bins.stl":          "Gridfinity Bins",
		"Articulated Slug v1.2 latest": "Articulated Slug",
		"3D Printer Parts":             "3D Printer Parts",
		"dice   tower":                 "Dice Tower",
		"NASA_rover":                   "NASA Rover",
	}

	for raw, expected := range cases {
		assert.Equal(t, expected, CleanupFolderName(raw), raw)
	}
}

func TestCleanupFolderNameNeverReturnsEmpty(t *testing.T) {
	assert.Equal(t, "001", CleanupFolderName("001"))
	assert.Equal(t, "(1)", CleanupFolderName("(1)"))
	assert.Equal(t, "", CleanupFolderName(""))
}
