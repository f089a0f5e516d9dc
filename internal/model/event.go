package model

import "slices"

const (
	MaskCloseWrite = "IN_CLOSE_WRITE"
	MaskCreate     = "IN_CREATE"
	MaskIsDir      = "IN_ISDIR"
)

// WatchEvent is one inotify notification delivered on a channel.
type WatchEvent struct {
	// ID and Type come from the SSE envelope.
	ID   string
	Type string

	Mask         []string
	Name         string
	Subscription string
}

// IsCloseWrite reports whether the event is exactly a file close after write.
func (e WatchEvent) IsCloseWrite() bool {
	return maskIs(e.Mask, MaskCloseWrite)
}

// IsDirCreate reports whether the event is exactly a directory creation.
func (e WatchEvent) IsDirCreate() bool {
	return maskIs(e.Mask, MaskCreate, MaskIsDir)
}

func maskIs(mask []string, flags ...string) bool {
	if len(mask) != len(flags) {
		return false
	}
	for _, f := range flags {
		if !slices.Contains(mask, f) {
			return false
		}
	}
	return true
}
