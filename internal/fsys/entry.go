package fsys

import (
	"path/filepath"
	"strings"
	"time"
)

// Attr is a bitset of file attributes. The set mirrors the attributes a
// desktop file manager exposes; bits a platform cannot observe stay clear.
type Attr uint32

const (
	AttrReadOnly Attr = 1 << iota
	AttrHidden
	AttrSystem
	AttrDirectory
	AttrArchive
	AttrTemporary
	AttrSparse
	AttrReparsePoint
	AttrCompressed
	AttrOffline
	AttrEncrypted
	AttrRecallOnOpen
	AttrRecallOnDataAccess
	AttrPinned
	AttrUnpinned
)

// ReparseTagSymlink is the tag reported for symbolic links.
const ReparseTagSymlink uint32 = 0xA000000C

// attrLetters is the display order of the attribute column.
var attrLetters = [...]struct {
	attr   Attr
	letter byte
}{
	{AttrReadOnly, 'R'},
	{AttrHidden, 'H'},
	{AttrSystem, 'S'},
	{AttrArchive, 'A'},
	{AttrTemporary, 'T'},
	{AttrEncrypted, 'E'},
	{AttrCompressed, 'C'},
	{AttrReparsePoint, 'P'},
	{AttrSparse, '0'},
	{AttrOffline, 'O'},
}

// Has reports whether every bit of mask is set.
func (a Attr) Has(mask Attr) bool {
	return a&mask == mask
}

// Any reports whether at least one bit of mask is set.
func (a Attr) Any(mask Attr) bool {
	return a&mask != 0
}

// Letters renders the fixed-width attribute column, '-' for clear bits.
func (a Attr) Letters() string {
	var b strings.Builder
	b.Grow(len(attrLetters))
	for _, al := range attrLetters {
		if a&al.attr != 0 {
			b.WriteByte(al.letter)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// AttrForLetter maps an attribute letter (case-insensitive) to its bit.
// 'D' selects directories, which have no column of their own.
func AttrForLetter(c byte) (Attr, bool) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c == 'D' {
		return AttrDirectory, true
	}
	for _, al := range attrLetters {
		if al.letter == c {
			return al.attr, true
		}
	}
	return 0, false
}

// FileEntry describes one filesystem object as seen by a single enumeration.
type FileEntry struct {
	CreationTime   time.Time
	LastAccessTime time.Time
	LastWriteTime  time.Time
	Name           string
	LinkTarget     string
	Size           uint64
	ReparseTag     uint32
	Attrs          Attr
}

// IsDir reports whether the entry is a directory (or a link to one).
func (e FileEntry) IsDir() bool {
	return e.Attrs&AttrDirectory != 0
}

// IsReparsePoint reports whether the entry is a link that must not be traversed.
func (e FileEntry) IsReparsePoint() bool {
	return e.Attrs&AttrReparsePoint != 0
}

// IsDotEntry reports whether the entry is "." or "..".
func (e FileEntry) IsDotEntry() bool {
	return e.Name == "." || e.Name == ".."
}

// Ext returns the extension including the dot, or "" when there is none.
// Dot-files such as ".profile" have no extension.
func (e FileEntry) Ext() string {
	ext := filepath.Ext(e.Name)
	if ext == e.Name {
		return ""
	}
	return ext
}
