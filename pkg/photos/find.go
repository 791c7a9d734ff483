package photos

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

var exifDate = "2006:01:02 15:04:05"

// extensions are the file types picked up from photo directories.
var extensions = []string{".jpg", ".jpeg"}

func read(path string, p *Photo, et *exiftool.Exiftool) error {
	fis := et.ExtractMetadata(path)
	fi := fis[0]
	if fi.Err != nil {
		return fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	for k, v := range fi.Fields {
		klog.V(3).Infof("%q=%v\n", k, v)
	}

	var err error
	p.Height, err = fi.GetInt("ImageHeight")
	if err != nil {
		klog.V(1).Infof("unable to get height for %s: %v", path, err)
	}

	p.Width, err = fi.GetInt("ImageWidth")
	if err != nil {
		klog.V(1).Infof("unable to get width for %s: %v", path, err)
	}

	p.Title, err = fi.GetString("Headline")
	if err != nil {
		klog.V(2).Infof("unable to get headline: %v", err)
	}

	p.Description, err = fi.GetString("ImageDescription")
	if err != nil {
		klog.V(2).Infof("unable to get description: %v", err)
	}

	ds, err := fi.GetString("DateTimeOriginal")
	if err != nil {
		klog.V(1).Infof("unable to get date time for %s: %v", path, err)
		return nil
	}

	p.Taken, err = time.Parse(exifDate, ds)
	if err != nil {
		return fmt.Errorf("parse time %q: %w", ds, err)
	}
	return nil
}

func isPhoto(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Find returns the photos under root/<property> for each property, newest first.
// Without an exiftool binary, photos are ordered by modification time.
func Find(root string, properties []string) (map[string][]*Photo, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		klog.Warningf("exiftool unavailable, photo metadata disabled: %v", err)
		et = nil
	}
	if et != nil {
		defer et.Close()
	}

	found := map[string][]*Photo{}
	for _, prop := range properties {
		dir := filepath.Join(root, prop)
		if _, err := os.Stat(dir); err != nil {
			klog.V(1).Infof("no photo directory for %s: %v", prop, err)
			continue
		}

		ps, err := walk(root, dir, prop, et)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}

		sort.SliceStable(ps, func(i, j int) bool {
			return ps[i].When().After(ps[j].When())
		})
		klog.Infof("found %d photos for %s", len(ps), prop)
		found[prop] = ps
	}
	return found, nil
}

func walk(root string, dir string, prop string, et *exiftool.Exiftool) ([]*Photo, error) {
	ps := []*Photo{}
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if filepath.Base(path)[0] == '.' {
				return godirwalk.SkipThis
			}
			// resized copies written next to the originals
			if de.IsDir() && filepath.Base(path) == "_" {
				return godirwalk.SkipThis
			}
			if !isPhoto(path) {
				return nil
			}

			klog.V(1).Infof("found %s", path)
			p := &Photo{InPath: path, Property: prop}
			if et != nil {
				if err := read(path, p, et); err != nil {
					klog.Errorf("read failure: %v", err)
					return err
				}
			}

			var err error
			p.RelPath, err = filepath.Rel(root, path)
			if err != nil {
				return err
			}

			fi, err := os.Stat(path)
			if err != nil {
				klog.Errorf("stat failure: %v", err)
				return err
			}
			p.ModTime = fi.ModTime()

			ps = append(ps, p)
			return nil
		},
	})
	return ps, err
}
