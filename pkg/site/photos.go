package site

import (
	"fmt"

	"github.com/tstromberg/smokypeaks/pkg/photos"
)

// PhotoPrefix is the URL path local photos are served from.
var PhotoPrefix = "/photos"

// LoadPhotos imports the cabin photos under the configured photo directory,
// resizes them into the output directory and makes them the first images
// of every new session.
func (srv *Server) LoadPhotos() error {
	if srv.cfg.PhotoDir == "" {
		return nil
	}
	if srv.cfg.OutDir == "" {
		return fmt.Errorf("an output directory is required to serve local photos")
	}

	found, err := photos.Find(srv.cfg.PhotoDir, PropertyIDs())
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	srv.SetPhotos(photoURLs(photos.ResizeAll(found, srv.cfg.OutDir)))
	return nil
}

func photoURLs(found map[string][]*photos.Photo) map[Property][]string {
	m := map[Property][]string{}
	for id, ps := range found {
		prop, ok := ParseProperty(id)
		if !ok {
			continue
		}
		for _, p := range ps {
			if u := p.URL(PhotoPrefix, "View"); u != "" {
				m[prop] = append(m[prop], u)
			}
		}
	}
	return m
}
