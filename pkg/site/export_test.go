package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	srv := newTestServer(t, fakeGuide{})
	assets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assets, "robots.txt"), []byte("User-agent: *\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(assets, ".DS_Store"), []byte("x"), 0o644))
	srv.cfg.AssetDir = assets

	out := t.TempDir()
	require.NoError(t, srv.Export(out))

	for _, p := range []string{
		"index.html",
		"cabins/angelheights/index.html",
		"cabins/angelrise/index.html",
		"blog/index.html",
		"blog/9/index.html",
		"blog/1/index.html",
		"planner/index.html",
		"contact/index.html",
		"_/style.css",
		"robots.txt",
	} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(p)))
	}
	assert.NoFileExists(t, filepath.Join(out, ".DS_Store"))

	bs, err := os.ReadFile(filepath.Join(out, "cabins", "angelrise", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(bs), "Angel Rise Cabin")
	assert.NotContains(t, string(bs), `class="upload"`)
	assert.NotContains(t, string(bs), "<script>")
	assert.NotContains(t, string(bs), `method="post"`, "a static host cannot take actions")
	assert.Contains(t, string(bs), `class="slide"`)
	assert.Equal(t, 0, srv.Sessions().Len(), "export does not register a visitor")
}
