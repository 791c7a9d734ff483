package photos

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

// ModTimeFormat is part of resized file names so edits bust caches.
var ModTimeFormat = "20060102150405"

// ThumbOpts are resize options. A zero X or Y keeps the aspect ratio.
type ThumbOpts struct {
	X       int
	Y       int
	Quality int
}

// Sizes produced for every photo: Thumb for the gallery grid, View for the
// carousel and lightbox.
var Sizes = map[string]ThumbOpts{
	"Thumb": {Y: 180, Quality: 75},
	"View":  {X: 2048, Quality: 85},
}

// Resize writes every size of p under outDir, reusing up-to-date copies.
func Resize(p *Photo, outDir string) error {
	klog.V(1).Infof("resizing %s into %s", p.InPath, outDir)
	src, err := os.Stat(p.InPath)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	var img image.Image
	p.Resize = map[string]ThumbMeta{}

	for name, t := range Sizes {
		relPath := thumbRelPath(p, t)
		fullPath := filepath.Join(outDir, relPath)

		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}

		st, err := os.Stat(fullPath)
		if err == nil && st.Size() > int64(128) && !src.ModTime().After(st.ModTime()) {
			rt, err := readThumb(fullPath)
			if err == nil {
				rt.RelPath = relPath
				klog.V(1).Infof("found %s: %+v", name, *rt)
				p.Resize[name] = *rt
				continue
			}
			klog.Warningf("unable to read thumb: %v", err)
		}

		if img == nil {
			img, err = imgio.Open(p.InPath)
			if err != nil {
				return fmt.Errorf("imgio.Open: %w", err)
			}
		}

		ct, err := createThumb(img, fullPath, t)
		if err != nil {
			klog.Errorf("create failed: %v", err)
			return fmt.Errorf("create thumb: %w", err)
		}
		ct.RelPath = relPath
		p.Resize[name] = *ct
	}
	return nil
}

// ResizeAll resizes every photo, dropping the ones that fail.
func ResizeAll(found map[string][]*Photo, outDir string) map[string][]*Photo {
	out := map[string][]*Photo{}
	for prop, ps := range found {
		kept := []*Photo{}
		for _, p := range ps {
			if err := Resize(p, outDir); err != nil {
				klog.Errorf("skipping %s: %v", p.InPath, err)
				continue
			}
			kept = append(kept, p)
		}
		out[prop] = kept
	}
	return out
}

func createThumb(i image.Image, path string, t ThumbOpts) (*ThumbMeta, error) {
	klog.V(1).Infof("creating %dx%d thumb: %s - %+v", t.X, t.Y, path, i.Bounds())
	x := t.X
	y := t.Y

	if i.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("no Y for %+v", i.Bounds())
	}
	if i.Bounds().Dx() == 0 {
		return nil, fmt.Errorf("no X for %+v", i.Bounds())
	}

	if t.X == 0 {
		scale := float64(i.Bounds().Dy()) / float64(t.Y)
		x = max(1, int(float64(i.Bounds().Dx())/scale))
	}
	if t.Y == 0 {
		scale := float64(i.Bounds().Dx()) / float64(t.X)
		y = max(1, int(float64(i.Bounds().Dy())/scale))
	}

	// never upscale
	if x > i.Bounds().Dx() || y > i.Bounds().Dy() {
		x, y = i.Bounds().Dx(), i.Bounds().Dy()
	}

	rimg := transform.Resize(i, x, y, transform.Lanczos)
	if err := imgio.Save(path, rimg, imgio.JPEGEncoder(t.Quality)); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}

	return &ThumbMeta{X: rimg.Bounds().Dx(), Y: rimg.Bounds().Dy(), Path: path}, nil
}

func readThumb(path string) (*ThumbMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode: %w", err)
	}
	return &ThumbMeta{X: ic.Width, Y: ic.Height, Path: path}, nil
}

// thumbRelPath returns where a resize of p lives relative to the output directory.
func thumbRelPath(p *Photo, t ThumbOpts) string {
	base := filepath.Base(p.RelPath)
	noExt := strings.TrimSuffix(base, filepath.Ext(base))

	thumbDir := filepath.Join(filepath.Dir(p.RelPath), "_")
	dimensions := ""
	if t.X != 0 {
		dimensions = fmt.Sprintf("x%d", t.X)
	}
	if t.Y != 0 {
		dimensions = fmt.Sprintf("y%d", t.Y)
	}

	newBase := fmt.Sprintf("%s@%s_%s.jpg", noExt, dimensions, p.ModTime.Format(ModTimeFormat))
	return urlSafePath(filepath.Join(thumbDir, newBase))
}

// urlSafePath replaces characters that need escaping in URLs.
func urlSafePath(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '#', '?', '%', '&', '\'', '"':
			return '_'
		}
		return r
	}, s)
}
