package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/bamsammich/dirx/internal/fsys"
)

// SortKey selects what a listing is ordered by.
type SortKey int

const (
	SortName SortKey = iota
	SortDate
	SortExt
	SortSize
)

var sortKeyNames = [...]string{
	SortName: "name",
	SortDate: "date",
	SortExt:  "extension",
	SortSize: "size",
}

func (k SortKey) String() string {
	if k >= 0 && int(k) < len(sortKeyNames) {
		return sortKeyNames[k]
	}
	return "unknown"
}

// fallbackOrder is consulted after the requested key, skipping it.
var fallbackOrder = [...]SortKey{SortName, SortDate, SortExt, SortSize}

// Comparator orders entries: directories first, then the requested key,
// then the fixed fallback keys. Reverse flips only decisions made by the
// requested key.
type Comparator struct {
	keys    []SortKey
	reverse bool
}

// NewComparator builds a comparator for the requested key.
func NewComparator(primary SortKey, reverse bool) Comparator {
	keys := make([]SortKey, 0, len(fallbackOrder))
	keys = append(keys, primary)
	for _, k := range fallbackOrder {
		if k != primary {
			keys = append(keys, k)
		}
	}
	return Comparator{keys: keys, reverse: reverse}
}

// Compare returns a negative number when a sorts before b, positive when
// after, and zero when no key tells them apart.
func (c Comparator) Compare(a, b fsys.FileEntry) int {
	if ad, bd := a.IsDir(), b.IsDir(); ad != bd {
		if ad {
			return -1
		}
		return 1
	}

	keys := c.keys
	if len(keys) == 0 {
		keys = fallbackOrder[:]
	}
	for i, k := range keys {
		r := compareKey(k, a, b)
		if r == 0 {
			continue
		}
		if i == 0 && c.reverse {
			return -r
		}
		return r
	}
	return 0
}

// Sort orders entries in place. Entries that compare equal keep their
// enumeration order.
func (c Comparator) Sort(entries []fsys.FileEntry) {
	slices.SortStableFunc(entries, c.Compare)
}

func compareKey(k SortKey, a, b fsys.FileEntry) int {
	switch k {
	case SortName:
		return foldCompare(a.Name, b.Name)
	case SortDate:
		return a.LastWriteTime.Compare(b.LastWriteTime)
	case SortExt:
		return foldCompare(a.Ext(), b.Ext())
	case SortSize:
		return cmp.Compare(a.Size, b.Size)
	default:
		return 0
	}
}

func foldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// ParseSortSpec parses a sort flag value: a key letter or word
// (n/name, d/date, e/ext/extension, s/size), optionally prefixed with '-'
// to reverse it.
func ParseSortSpec(spec string) (SortKey, bool, error) {
	s := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(spec), ":"))
	reverse := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	switch s {
	case "", "n", "name":
		return SortName, reverse, nil
	case "d", "date", "time":
		return SortDate, reverse, nil
	case "e", "ext", "extension":
		return SortExt, reverse, nil
	case "s", "size":
		return SortSize, reverse, nil
	default:
		return SortName, false, fmt.Errorf("invalid sort order %q (use n, e, s or d)", spec)
	}
}
