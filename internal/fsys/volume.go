package fsys

// DriveInfo describes the volume a listing lives on. The engine passes it
// through to displayers untouched.
type DriveInfo struct {
	Path       string
	Label      string
	FSType     string
	TotalBytes uint64
	FreeBytes  uint64
}

// HasLabel reports whether the volume carries a label.
func (d DriveInfo) HasLabel() bool {
	return d.Label != ""
}
