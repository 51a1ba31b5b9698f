package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bamsammich/dirx/internal/stats"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
	dirMarker  = "<DIR>"
)

// FormatCount formats an integer with comma separators.
func FormatCount(n uint64) string {
	return humanize.Comma(int64(n)) //nolint:gosec // G115: counts stay far below 2^63
}

// FormatBytes wraps stats.FormatBytes for UI use.
func FormatBytes(b uint64) string {
	return stats.FormatBytes(b)
}

// FormatDate renders a modification time as the date and time columns.
// The zero time renders as blanks of the same width.
func FormatDate(t time.Time) (date, clock string) {
	if t.IsZero() {
		return fmt.Sprintf("%*s", len(dateLayout), ""), fmt.Sprintf("%*s", len(timeLayout), "")
	}
	t = t.Local()
	return t.Format(dateLayout), t.Format(timeLayout)
}

// Plural returns word with an "s" appended unless n is 1.
func Plural(n uint64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// sizeWidth is the width of the size column for a directory whose largest
// file is largest.
func sizeWidth(largest uint64) int {
	return max(len(FormatCount(largest)), len(dirMarker))
}

// FormatDuration formats elapsed time concisely.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
