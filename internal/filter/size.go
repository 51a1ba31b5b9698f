package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseSize parses a human-readable size into bytes.
// A bare number or a single-letter suffix (B, K, M, G, T; case-insensitive)
// uses powers of 1024. Longer unit spellings ("10MB", "1.5 GiB") are
// accepted with their usual meaning.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	multiplier := uint64(1)
	numStr := s

	switch strings.ToUpper(s[len(s)-1:]) {
	case "B":
		numStr = s[:len(s)-1]
	case "K":
		multiplier = 1 << 10
		numStr = s[:len(s)-1]
	case "M":
		multiplier = 1 << 20
		numStr = s[:len(s)-1]
	case "G":
		multiplier = 1 << 30
		numStr = s[:len(s)-1]
	case "T":
		multiplier = 1 << 40
		numStr = s[:len(s)-1]
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseUint(numStr, 10, 64); err == nil {
		if n > math.MaxUint64/multiplier {
			return 0, fmt.Errorf("size out of range: %q", s)
		}
		return n * multiplier, nil
	}
	if f, err := strconv.ParseFloat(numStr, 64); err == nil {
		if f < 0 || math.IsNaN(f) {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		// float64(MaxUint64) rounds up to 2^64, so >= rejects everything
		// that does not fit.
		v := f * float64(multiplier)
		if math.IsInf(v, 0) || v >= float64(math.MaxUint64) {
			return 0, fmt.Errorf("size out of range: %q", s)
		}
		return uint64(v), nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return n, nil
}
