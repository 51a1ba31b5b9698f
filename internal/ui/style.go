package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/dirx/internal/config"
	"github.com/bamsammich/dirx/internal/fsys"
)

// Style is how one entry is drawn.
type Style struct {
	Color lipgloss.Color
	Icon  rune
	// IconSuppressed is set when the icon was turned off for this entry;
	// displayers keep the icon column aligned with blanks.
	IconSuppressed bool
}

// StyleProvider picks the color and icon of an entry.
type StyleProvider interface {
	StyleFor(e fsys.FileEntry) Style
}

// Nerd Font code points.
const (
	IconFolder rune = 0xf07b
	IconFile   rune = 0xf15b
	IconLink   rune = 0xf0c1
	IconCloud  rune = 0xf0c2
	IconLock   rune = 0xf023
)

var defaultExtensionIcons = map[string]rune{
	"go":   0xe627,
	"py":   0xe606,
	"js":   0xe74e,
	"ts":   0xe628,
	"rs":   0xe7a8,
	"c":    0xe61e,
	"h":    0xe61e,
	"cpp":  0xe61d,
	"hpp":  0xe61d,
	"java": 0xe738,
	"sh":   0xf489,
	"md":   0xf48a,
	"json": 0xe60b,
	"toml": 0xe615,
	"yaml": 0xe615,
	"yml":  0xe615,
	"zip":  0xf410,
	"gz":   0xf410,
	"tar":  0xf410,
	"zst":  0xf410,
	"7z":   0xf410,
	"png":  0xf1c5,
	"jpg":  0xf1c5,
	"jpeg": 0xf1c5,
	"gif":  0xf1c5,
	"svg":  0xf1c5,
	"pdf":  0xf1c1,
	"txt":  0xf15c,
}

var defaultExtensionColors = map[string]lipgloss.Color{
	"go": ColorTeal, "py": ColorTeal, "js": ColorTeal, "ts": ColorTeal,
	"rs": ColorTeal, "c": ColorTeal, "h": ColorTeal, "cpp": ColorTeal,
	"hpp": ColorTeal, "java": ColorTeal,
	"sh": ColorGreen, "exe": ColorGreen, "bat": ColorGreen, "cmd": ColorGreen,
	"json": ColorYellow, "toml": ColorYellow, "yaml": ColorYellow,
	"yml": ColorYellow, "ini": ColorYellow,
	"zip": ColorRed, "gz": ColorRed, "tar": ColorRed, "zst": ColorRed,
	"7z": ColorRed, "xz": ColorRed, "bz2": ColorRed,
	"png": ColorMauve, "jpg": ColorMauve, "jpeg": ColorMauve,
	"gif": ColorMauve, "svg": ColorMauve,
}

type iconSetting struct {
	icon       rune
	suppressed bool
}

// AttributeStyles colors entries by attribute first and by extension
// second.
type AttributeStyles struct {
	theme  Theme
	colors map[string]lipgloss.Color
	icons  map[string]iconSetting
}

// NewAttributeStyles builds a provider from a theme plus the [extensions]
// and [icons] config tables, which extend and override the defaults.
func NewAttributeStyles(theme Theme, extensions, icons map[string]string) (*AttributeStyles, error) {
	s := &AttributeStyles{
		theme:  theme,
		colors: make(map[string]lipgloss.Color, len(defaultExtensionColors)+len(extensions)),
		icons:  make(map[string]iconSetting, len(defaultExtensionIcons)+len(icons)),
	}
	for ext, c := range defaultExtensionColors {
		s.colors[ext] = c
	}
	for ext, c := range extensions {
		s.colors[normalizeExt(ext)] = ResolveColor(c)
	}
	for ext, r := range defaultExtensionIcons {
		s.icons[ext] = iconSetting{icon: r}
	}
	for ext, v := range icons {
		r, ok, err := config.ParseIcon(v)
		if err != nil {
			return nil, fmt.Errorf("icon for %q: %w", ext, err)
		}
		s.icons[normalizeExt(ext)] = iconSetting{icon: r, suppressed: !ok}
	}
	return s, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// StyleFor implements StyleProvider.
func (s *AttributeStyles) StyleFor(e fsys.FileEntry) Style {
	st := Style{Color: s.color(e)}

	switch {
	case e.IsReparsePoint():
		st.Icon = IconLink
	case e.IsDir():
		st.Icon = IconFolder
	case e.Attrs.Any(fsys.AttrOffline | fsys.AttrRecallOnOpen | fsys.AttrRecallOnDataAccess):
		st.Icon = IconCloud
	case e.Attrs.Has(fsys.AttrEncrypted):
		st.Icon = IconLock
	default:
		st.Icon = IconFile
		if is, ok := s.icons[normalizeExt(e.Ext())]; ok && e.Ext() != "" {
			st.Icon = is.icon
			st.IconSuppressed = is.suppressed
		}
	}
	return st
}

func (s *AttributeStyles) color(e fsys.FileEntry) lipgloss.Color {
	a := e.Attrs
	switch {
	case a.Has(fsys.AttrHidden):
		return s.theme.Hidden
	case a.Has(fsys.AttrSystem):
		return s.theme.System
	case a.Has(fsys.AttrReparsePoint):
		return s.theme.Link
	case a.Has(fsys.AttrDirectory):
		return s.theme.Directory
	case a.Has(fsys.AttrEncrypted):
		return s.theme.Encrypted
	case a.Any(fsys.AttrOffline | fsys.AttrRecallOnOpen | fsys.AttrRecallOnDataAccess):
		return s.theme.Cloud
	case a.Has(fsys.AttrCompressed):
		return s.theme.Compressed
	}
	if c, ok := s.colors[normalizeExt(e.Ext())]; ok && e.Ext() != "" {
		return c
	}
	if a.Has(fsys.AttrReadOnly) {
		return s.theme.ReadOnly
	}
	return s.theme.File
}
