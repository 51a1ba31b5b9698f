//go:build darwin

package fsys

import (
	"bytes"

	"golang.org/x/sys/unix"
)

func volumeInfo(path string) DriveInfo {
	info := DriveInfo{Path: path}
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return info
	}
	name := st.Fstypename[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	info.FSType = string(name)
	bsize := uint64(st.Bsize)
	info.TotalBytes = st.Blocks * bsize
	info.FreeBytes = st.Bavail * bsize
	return info
}
