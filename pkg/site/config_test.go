package site

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, s string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "smokypeaks.toml")
	require.NoError(t, os.WriteFile(p, []byte(s), 0o644))
	return p
}

func TestLoadConfig(t *testing.T) {
	p := writeConfig(t, `
addr = ":8080"
image_cap = 12
carousel_interval = "7s"
session_idle = "1h"
photos = " /srv/photos "

[smtp]
host = "smtp.example.com"
from = "site@example.com"
to = "owner@example.com"
`)
	c, err := LoadConfig(p, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 12, c.ImageCap)
	assert.Equal(t, 7*time.Second, c.CarouselInterval)
	assert.Equal(t, time.Hour, c.SessionIdle)
	assert.Equal(t, "/srv/photos", c.PhotoDir)
	assert.Equal(t, "smtp.example.com", c.SMTP.Host)

	// untouched keys keep their defaults
	assert.Equal(t, DefaultConfig().ContactTo, c.ContactTo)
	assert.Equal(t, DefaultConfig().ContactResetDelay, c.ContactResetDelay)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []string{
		`carousel_interval = "soon"`,
		`image_cap = 0`,
		`addr = `,
	}
	for _, tc := range tests {
		_, err := LoadConfig(writeConfig(t, tc), DefaultConfig())
		assert.Error(t, err, tc)
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), DefaultConfig())
	assert.Error(t, err)
}
