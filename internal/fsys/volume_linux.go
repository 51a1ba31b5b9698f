//go:build linux

package fsys

import "golang.org/x/sys/unix"

// Filesystem magic numbers from statfs(2).
var fsTypeNames = map[int64]string{
	0xEF53:     "ext4",
	0x9123683E: "btrfs",
	0x58465342: "xfs",
	0x01021994: "tmpfs",
	0x794C7630: "overlayfs",
	0x6969:     "nfs",
	0x2FC12FC1: "zfs",
	0x4D44:     "vfat",
	0x5346544E: "ntfs",
	0x65735546: "fuse",
	0xFF534D42: "cifs",
	0x9FA0:     "proc",
}

func volumeInfo(path string) DriveInfo {
	info := DriveInfo{Path: path}
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return info
	}
	info.FSType = fsTypeNames[int64(st.Type)] //nolint:unconvert // Type is int32 on some arches
	if info.FSType == "" {
		info.FSType = "unknown"
	}
	bsize := uint64(st.Bsize) //nolint:gosec // G115: block size is positive
	info.TotalBytes = st.Blocks * bsize
	info.FreeBytes = st.Bavail * bsize
	return info
}
