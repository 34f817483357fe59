package utils

import (
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"strings"
)

func Pluralize(s string, count int64) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", s)
	}

	// hashes, batches, matches
	if strings.HasSuffix(strings.ToLower(s), "h") {
		s += "e"
	}

	// categories
	if strings.HasSuffix(s, "y") && !strings.HasSuffix(s, "ey") {
		s = strings.TrimSuffix(s, "y") + "ie"
	}

	return fmt.Sprintf("%s %ss", humanize.Comma(count), s)
}

func PrintFormattedTitle(title string) {
	color.HiCyan(title)
	fmt.Println(strings.Repeat("=", len(title)))
}

func IsInArray(value string, values []string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}

// IsInArrayFold is IsInArray ignoring case.
func IsInArrayFold(value string, values []string) bool {
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return true
		}
	}

	return false
}
