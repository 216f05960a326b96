package utils

import (
	"fmt"
	"time"
)

// FormatDisplayDate renders t as "15 January 2025", or "" for the zero time.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), t.Month(), t.Year())
}
