package utils

import (
	"fmt"
	"strings"
	"time"
)

func FormatDuration(duration time.Duration) string {
	str := duration.Round(time.Millisecond).String()

	if duration.Hours() > 24 {
		days := int(duration.Hours() / 24)
		remainingHours := duration.Hours() - float64(days*24)
		str = fmt.Sprintf("%dd %dh%s", days, int(remainingHours), strings.Split(str, "h")[1])
	}

	// Seconds and below are shown as they are
	if strings.Contains(str, "ms") || !strings.Contains(str, "m") {
		return str
	}

	// Minutes are precise enough for long scans
	str = strings.Split(str, "m")[0]
	str = strings.Replace(str, "h", "h ", 1) + "m"

	return str
}

// FormatSince renders a timestamp for status lines, "never" for nil.
func FormatSince(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}

	return fmt.Sprintf("%s ago", FormatDuration(time.Since(*t)))
}
