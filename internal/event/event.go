package event

import (
	"log/slog"
	"time"
)

// Type identifies the kind of event.
type Type int

const (
	WalkStarted Type = iota + 1
	WalkComplete
	DirListed
	DirFailed
	ReparseSkipped
	DepthLimited
)

var typeNames = [...]string{
	WalkStarted:    "WalkStarted",
	WalkComplete:   "WalkComplete",
	DirListed:      "DirListed",
	DirFailed:      "DirFailed",
	ReparseSkipped: "ReparseSkipped",
	DepthLimited:   "DepthLimited",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the walker.
type Event struct {
	Timestamp time.Time
	Error     error
	Path      string // directory path
	Files     uint64 // matched files (DirListed, WalkComplete)
	Dirs      uint64 // matched subdirectories (DirListed, WalkComplete)
	Bytes     uint64 // matched bytes (DirListed, WalkComplete)
	Depth     int
	Type      Type
}

// Level is the log level an event is recorded at.
func (e Event) Level() slog.Level {
	switch e.Type {
	case DirFailed:
		return slog.LevelWarn
	case WalkStarted, WalkComplete:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Attrs renders the event as structured log attributes.
func (e Event) Attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.String("path", e.Path),
		slog.Int("depth", e.Depth),
	}
	if e.Type == DirListed || e.Type == WalkComplete {
		attrs = append(attrs,
			slog.Uint64("files", e.Files),
			slog.Uint64("dirs", e.Dirs),
			slog.Uint64("bytes", e.Bytes),
		)
	}
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}
	return attrs
}
