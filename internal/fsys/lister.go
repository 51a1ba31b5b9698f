package fsys

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

const readDirBatch = 256

// Iterator yields the entries of one directory. Next returns io.EOF once
// the directory is exhausted. Reset restarts the enumeration from the first
// entry; Close releases the underlying handle and must always be called.
type Iterator interface {
	Next() (FileEntry, error)
	Reset() error
	Close() error
}

// Lister is the OS directory-listing primitive.
type Lister interface {
	// Open starts enumerating dir, yielding only entries whose name matches
	// pattern ("" or "*" yields everything).
	Open(dir, pattern string) (Iterator, error)

	// Stat describes a single path without following a final symlink.
	Stat(path string) (FileEntry, error)

	// Volume describes the volume holding path. Best effort; never fails.
	Volume(path string) DriveInfo
}

// Pattern is a compiled, case-insensitive filename glob (`*`, `?`, `[...]`).
type Pattern struct {
	g   glob.Glob
	raw string
	all bool
}

// maskQuoter escapes the glob syntax masks do not support: brace
// alternation and backslash escapes are literal characters in a filename.
var maskQuoter = strings.NewReplacer(`\`, `\\`, "{", `\{`, "}", `\}`)

// CompilePattern compiles a filename mask. Matching ignores case.
func CompilePattern(pattern string) (Pattern, error) {
	if pattern == "" || pattern == "*" || pattern == "*.*" {
		return Pattern{raw: pattern, all: true}, nil
	}
	g, err := glob.Compile(maskQuoter.Replace(strings.ToLower(pattern)))
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid mask %q: %w", pattern, err)
	}
	return Pattern{g: g, raw: pattern}, nil
}

// Match reports whether name matches the pattern.
func (p Pattern) Match(name string) bool {
	if p.all {
		return true
	}
	return p.g.Match(strings.ToLower(name))
}

func (p Pattern) String() string {
	return p.raw
}

// OSLister enumerates the local filesystem.
type OSLister struct{}

// NewOSLister returns a Lister backed by the local filesystem.
func NewOSLister() OSLister {
	return OSLister{}
}

// Open implements Lister.
func (OSLister) Open(dir, pattern string) (Iterator, error) {
	p, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	return &dirIterator{dir: dir, f: f, pattern: p}, nil
}

// Stat implements Lister.
func (OSLister) Stat(path string) (FileEntry, error) {
	return statEntry(path, filepath.Base(path))
}

// Volume implements Lister.
func (OSLister) Volume(path string) DriveInfo {
	return volumeInfo(path)
}

type dirIterator struct {
	f       *os.File
	dir     string
	pattern Pattern
	pending []os.DirEntry
	eof     bool
}

func (it *dirIterator) Next() (FileEntry, error) {
	for {
		if len(it.pending) == 0 {
			if it.eof {
				return FileEntry{}, io.EOF
			}
			batch, err := it.f.ReadDir(readDirBatch)
			if err != nil {
				if errors.Is(err, io.EOF) {
					it.eof = true
					continue
				}
				return FileEntry{}, fmt.Errorf("readdir %s: %w", it.dir, err)
			}
			it.pending = batch
			continue
		}

		de := it.pending[0]
		it.pending = it.pending[1:]
		if !it.pattern.Match(de.Name()) {
			continue
		}

		entry, err := statEntry(filepath.Join(it.dir, de.Name()), de.Name())
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Removed between readdir and stat.
				continue
			}
			return FileEntry{}, err
		}
		return entry, nil
	}
}

func (it *dirIterator) Reset() error {
	if _, err := it.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %s: %w", it.dir, err)
	}
	it.pending = nil
	it.eof = false
	return nil
}

func (it *dirIterator) Close() error {
	return it.f.Close()
}

// ReadAll drains an iterator. It does not close it.
func ReadAll(it Iterator) ([]FileEntry, error) {
	var entries []FileEntry
	for {
		e, err := it.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
}
