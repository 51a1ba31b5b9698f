//go:build darwin

package fsys

import (
	"io/fs"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// BSD file flags from <sys/stat.h>.
const (
	ufCompressed = 0x00000020
	ufHidden     = 0x00008000
	sfArchived   = 0x00010000
	sfDataless   = 0x40000000
)

func lstat(path string) (rawStat, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return rawStat{}, &fs.PathError{Op: "lstat", Path: path, Err: err}
	}

	rs := rawStat{
		atime:  time.Unix(st.Atim.Sec, st.Atim.Nsec),
		mtime:  time.Unix(st.Mtim.Sec, st.Mtim.Nsec),
		btime:  time.Unix(st.Btim.Sec, st.Btim.Nsec),
		mode:   modeFromUnix(uint32(st.Mode)),
		size:   uint64(st.Size),   //nolint:gosec // G115: st_size is never negative
		blocks: uint64(st.Blocks), //nolint:gosec // G115: st_blocks is never negative
	}
	if st.Flags&ufHidden != 0 {
		rs.extra |= AttrHidden
	}
	if st.Flags&ufCompressed != 0 {
		rs.extra |= AttrCompressed
	}
	if st.Flags&sfArchived != 0 {
		rs.extra |= AttrArchive
	}
	if st.Flags&sfDataless != 0 {
		// iCloud placeholder whose contents are fetched on first read.
		rs.extra |= AttrOffline | AttrRecallOnDataAccess
	}
	return rs, nil
}

func modeFromUnix(m uint32) os.FileMode {
	mode := os.FileMode(m & 0o777)
	switch m & unix.S_IFMT {
	case unix.S_IFDIR:
		mode |= os.ModeDir
	case unix.S_IFLNK:
		mode |= os.ModeSymlink
	case unix.S_IFIFO:
		mode |= os.ModeNamedPipe
	case unix.S_IFSOCK:
		mode |= os.ModeSocket
	case unix.S_IFCHR:
		mode |= os.ModeDevice | os.ModeCharDevice
	case unix.S_IFBLK:
		mode |= os.ModeDevice
	}
	return mode
}
