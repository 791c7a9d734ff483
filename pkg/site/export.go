package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// Export writes what a new visitor sees on every page as static HTML under outDir.
func (srv *Server) Export(outDir string) error {
	s := srv.sessions.New()
	defer s.Close()

	if err := copyAssets(srv.cfg.AssetDir, outDir); err != nil {
		return fmt.Errorf("copy assets: %w", err)
	}

	type target struct {
		page   Page
		postID string
	}
	targets := []target{}
	for _, p := range Pages {
		targets = append(targets, target{page: p})
	}
	for _, post := range srv.content.Posts {
		targets = append(targets, target{page: PageBlog, postID: post.ID})
	}

	klog.Infof("Writing out %d pages ...", len(targets))
	for _, t := range targets {
		s.Navigate(t.page, t.postID)
		v, err := srv.newView(s)
		if err != nil {
			return fmt.Errorf("view %s: %w", t.page, err)
		}
		v.Static = true

		bs, err := render(v)
		if err != nil {
			return fmt.Errorf("render %s: %w", t.page, err)
		}

		urlPath := t.page.Path()
		if t.postID != "" {
			urlPath = "/blog/" + t.postID
		}
		p := filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(urlPath, "/")), "index.html")
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		klog.V(1).Infof("Writing %s to %s", urlPath, p)
		if err := os.WriteFile(p, bs, 0o644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
	}

	css := filepath.Join(outDir, "_", "style.css")
	if err := os.MkdirAll(filepath.Dir(css), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return os.WriteFile(css, []byte(styleText), 0o644)
}

// copyAssets copies extra static files, such as a favicon or robots.txt, into the export root.
func copyAssets(inDir string, outDir string) error {
	if inDir == "" {
		return nil
	}
	klog.V(1).Infof("copying assets from %s", inDir)
	return copy.Copy(inDir, outDir, copy.Options{
		Skip: func(_ os.FileInfo, src, _ string) (bool, error) {
			return src != inDir && strings.HasPrefix(filepath.Base(src), "."), nil
		},
	})
}
