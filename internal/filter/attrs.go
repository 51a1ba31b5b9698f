package filter

import (
	"fmt"
	"strings"

	"github.com/bamsammich/dirx/internal/fsys"
)

// ParseAttrSpec parses an attribute filter such as "HS", "-D" or "d-h".
// A letter selects entries that have the attribute; a letter preceded by
// '-' selects entries that lack it. Letters: D H S R A T E C P 0 O.
func ParseAttrSpec(spec string) (required, excluded fsys.Attr, err error) {
	spec = strings.TrimPrefix(strings.TrimSpace(spec), ":")
	negate := false
	for i := range len(spec) {
		c := spec[i]
		if c == '-' {
			if negate {
				return 0, 0, fmt.Errorf("invalid attribute spec %q: repeated '-'", spec)
			}
			negate = true
			continue
		}
		a, ok := fsys.AttrForLetter(c)
		if !ok {
			return 0, 0, fmt.Errorf("invalid attribute spec %q: unknown attribute %q", spec, c)
		}
		if negate {
			excluded |= a
		} else {
			required |= a
		}
		negate = false
	}
	if negate {
		return 0, 0, fmt.Errorf("invalid attribute spec %q: trailing '-'", spec)
	}
	if required&excluded != 0 {
		return 0, 0, fmt.Errorf("invalid attribute spec %q: attribute both required and excluded", spec)
	}
	return required, excluded, nil
}
