package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "DIRX_CONFIG"

// Config represents the optional dirx configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`

	// Extensions maps a file extension (without the dot) to a color: a
	// theme color name, a hex value or an ANSI color number.
	Extensions map[string]string `toml:"extensions"`

	// Icons maps a file extension to a hex code point, or "none" to
	// suppress the icon.
	Icons map[string]string `toml:"icons"`
}

// DefaultsConfig holds persistent flag defaults.
type DefaultsConfig struct {
	Recursive  *bool   `toml:"recursive"`
	Workers    *int    `toml:"workers"`
	Threads    *bool   `toml:"threads"`
	Sort       *string `toml:"sort"`
	Layout     *string `toml:"layout"`
	Depth      *int    `toml:"depth"`
	Icons      *bool   `toml:"icons"`
	Attributes *string `toml:"attributes"`
}

// ThemeConfig holds optional color overrides.
type ThemeConfig struct {
	File       *string `toml:"file"`
	Directory  *string `toml:"directory"`
	Hidden     *string `toml:"hidden"`
	System     *string `toml:"system"`
	ReadOnly   *string `toml:"readonly"`
	Link       *string `toml:"link"`
	Compressed *string `toml:"compressed"`
	Encrypted  *string `toml:"encrypted"`
	Cloud      *string `toml:"cloud"`
	Header     *string `toml:"header"`
	Muted      *string `toml:"muted"`
	Error      *string `toml:"error"`
}

// Path returns the resolved path to the config file.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "dirx", "config.toml")
}

// Load reads the config file from Path. Returns a zero Config (no error)
// if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Extensions = normalizeKeys(cfg.Extensions)
	cfg.Icons = normalizeKeys(cfg.Icons)
	return cfg, nil
}

// ParseIcon decodes an [icons] value. ok is false when the icon is
// explicitly suppressed with "none".
func ParseIcon(s string) (icon rune, ok bool, err error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "none" || s == "" {
		return 0, false, nil
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "u+"), "0x")
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false, fmt.Errorf("invalid icon code point %q", s)
	}
	return rune(n), true, nil
}

// normalizeKeys lowercases extensions and drops a leading dot.
func normalizeKeys(m map[string]string) map[string]string {
	if len(m) == 0 {
		return m
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimPrefix(k, "."))] = v
	}
	return out
}
