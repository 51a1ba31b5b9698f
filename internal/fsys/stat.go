package fsys

import (
	"os"
	"strings"
	"time"
)

// rawStat is the platform-neutral subset of a stat result.
type rawStat struct {
	atime  time.Time
	mtime  time.Time
	btime  time.Time
	mode   os.FileMode
	size   uint64
	blocks uint64 // 512-byte units
	extra  Attr   // attributes only the platform can report
}

func statEntry(path, name string) (FileEntry, error) {
	rs, err := lstat(path)
	if err != nil {
		return FileEntry{}, err
	}
	return buildEntry(path, name, rs), nil
}

func buildEntry(path, name string, rs rawStat) FileEntry {
	e := FileEntry{
		Name:           name,
		Size:           rs.size,
		CreationTime:   rs.btime,
		LastAccessTime: rs.atime,
		LastWriteTime:  rs.mtime,
		Attrs:          rs.extra,
	}

	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		e.Attrs |= AttrHidden
	}
	if rs.mode.Perm()&0o222 == 0 {
		e.Attrs |= AttrReadOnly
	}

	switch {
	case rs.mode&os.ModeSymlink != 0:
		e.Attrs |= AttrReparsePoint
		e.ReparseTag = ReparseTagSymlink
		if target, err := os.Readlink(path); err == nil {
			e.LinkTarget = target
		}
		// Links to directories are listed as directories but never expanded.
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			e.Attrs |= AttrDirectory
		}
	case rs.mode.IsDir():
		e.Attrs |= AttrDirectory
		e.Size = 0
	case rs.mode.IsRegular():
		if rs.size > 0 && rs.blocks*512 < rs.size {
			e.Attrs |= AttrSparse
		}
	default:
		// Devices, sockets and pipes.
		e.Attrs |= AttrSystem
	}

	return e
}
