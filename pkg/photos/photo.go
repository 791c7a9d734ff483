// Package photos imports local cabin photos and prepares web-sized copies of them.
package photos

import (
	"path"
	"path/filepath"
	"time"
)

// ThumbMeta describes a resized copy.
type ThumbMeta struct {
	X       int
	Y       int
	RelPath string
	Path    string
}

// Photo is a local image file with the metadata needed to order and caption it.
type Photo struct {
	InPath   string
	RelPath  string
	Property string
	ModTime  time.Time
	Taken    time.Time

	Title       string
	Description string

	Width  int64
	Height int64

	Resize map[string]ThumbMeta
}

// URL returns the path the named resize is served from, under prefix.
func (p *Photo) URL(prefix string, size string) string {
	t, ok := p.Resize[size]
	if !ok {
		return ""
	}
	return path.Join(prefix, filepath.ToSlash(t.RelPath))
}

// When returns the best known capture time.
func (p *Photo) When() time.Time {
	if !p.Taken.IsZero() {
		return p.Taken
	}
	return p.ModTime
}
