package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/dirx/internal/config"
)

// Catppuccin Mocha palette.
const (
	ColorGreen  = lipgloss.Color("#a6e3a1")
	ColorBlue   = lipgloss.Color("#89b4fa")
	ColorYellow = lipgloss.Color("#f9e2af")
	ColorRed    = lipgloss.Color("#f38ba8")
	ColorTeal   = lipgloss.Color("#94e2d5")
	ColorMauve  = lipgloss.Color("#cba6f7")
	ColorPeach  = lipgloss.Color("#fab387")
	ColorMuted  = lipgloss.Color("#5a6278")
	ColorDim    = lipgloss.Color("#3a4055")
	ColorBright = lipgloss.Color("#cdd6f4")
)

var paletteNames = map[string]lipgloss.Color{
	"green":  ColorGreen,
	"blue":   ColorBlue,
	"yellow": ColorYellow,
	"red":    ColorRed,
	"teal":   ColorTeal,
	"mauve":  ColorMauve,
	"peach":  ColorPeach,
	"muted":  ColorMuted,
	"dim":    ColorDim,
	"bright": ColorBright,
}

// Theme assigns a color to each kind of entry and to the listing chrome.
type Theme struct {
	File       lipgloss.Color
	Directory  lipgloss.Color
	Hidden     lipgloss.Color
	System     lipgloss.Color
	ReadOnly   lipgloss.Color
	Link       lipgloss.Color
	Compressed lipgloss.Color
	Encrypted  lipgloss.Color
	Cloud      lipgloss.Color
	Header     lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme returns the built-in color assignment.
func DefaultTheme() Theme {
	return Theme{
		File:       ColorBright,
		Directory:  ColorBlue,
		Hidden:     ColorMuted,
		System:     ColorYellow,
		ReadOnly:   ColorPeach,
		Link:       ColorTeal,
		Compressed: ColorMauve,
		Encrypted:  ColorGreen,
		Cloud:      ColorDim,
		Header:     ColorMauve,
		Muted:      ColorMuted,
		Error:      ColorRed,
	}
}

// Apply overrides colors from a config ThemeConfig.
func (t Theme) Apply(tc config.ThemeConfig) Theme {
	set := func(dst *lipgloss.Color, v *string) {
		if v != nil {
			*dst = ResolveColor(*v)
		}
	}
	set(&t.File, tc.File)
	set(&t.Directory, tc.Directory)
	set(&t.Hidden, tc.Hidden)
	set(&t.System, tc.System)
	set(&t.ReadOnly, tc.ReadOnly)
	set(&t.Link, tc.Link)
	set(&t.Compressed, tc.Compressed)
	set(&t.Encrypted, tc.Encrypted)
	set(&t.Cloud, tc.Cloud)
	set(&t.Header, tc.Header)
	set(&t.Muted, tc.Muted)
	set(&t.Error, tc.Error)
	return t
}

// ResolveColor accepts a palette name ("blue"), a hex value or an ANSI
// color number.
func ResolveColor(s string) lipgloss.Color {
	s = strings.TrimSpace(s)
	if c, ok := paletteNames[strings.ToLower(s)]; ok {
		return c
	}
	return lipgloss.Color(s)
}
