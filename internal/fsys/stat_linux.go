//go:build linux

package fsys

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// lstat uses statx(2) for birth time and the compressed/encrypted attribute
// bits, falling back to lstat(2) on kernels without statx.
func lstat(path string) (rawStat, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW,
		unix.STATX_BASIC_STATS|unix.STATX_BTIME, &stx)
	if errors.Is(err, unix.ENOSYS) {
		return lstatFallback(path)
	}
	if err != nil {
		return rawStat{}, &fs.PathError{Op: "statx", Path: path, Err: err}
	}

	rs := rawStat{
		atime:  statxTime(stx.Atime),
		mtime:  statxTime(stx.Mtime),
		btime:  statxTime(stx.Ctime),
		mode:   modeFromUnix(uint32(stx.Mode)),
		size:   stx.Size,
		blocks: stx.Blocks,
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		rs.btime = statxTime(stx.Btime)
	}
	if stx.Attributes&unix.STATX_ATTR_COMPRESSED != 0 {
		rs.extra |= AttrCompressed
	}
	if stx.Attributes&unix.STATX_ATTR_ENCRYPTED != 0 {
		rs.extra |= AttrEncrypted
	}
	return rs, nil
}

func lstatFallback(path string) (rawStat, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return rawStat{}, &fs.PathError{Op: "lstat", Path: path, Err: err}
	}
	return rawStat{
		atime:  time.Unix(st.Atim.Sec, st.Atim.Nsec),
		mtime:  time.Unix(st.Mtim.Sec, st.Mtim.Nsec),
		btime:  time.Unix(st.Ctim.Sec, st.Ctim.Nsec),
		mode:   modeFromUnix(st.Mode),
		size:   uint64(st.Size),   //nolint:gosec // G115: st_size is never negative
		blocks: uint64(st.Blocks), //nolint:gosec // G115: st_blocks is never negative
	}, nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
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
