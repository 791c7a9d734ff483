package site

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeGuide struct {
	text string
	err  error
}

func (f fakeGuide) Itinerary(_ context.Context, interest string) (string, error) {
	return f.text, f.err
}

var errGuide = errors.New("guide unavailable")

func testConfig() Config {
	c := DefaultConfig()
	c.CarouselInterval = time.Hour
	c.ContactResetDelay = time.Hour
	return c
}

func newTestServer(t *testing.T, gen fakeGuide) *Server {
	t.Helper()
	content, err := LoadContent()
	require.NoError(t, err)
	srv := NewServer(testConfig(), content, gen, nil)
	t.Cleanup(srv.Close)
	return srv
}

// newClient starts srv and returns a client that keeps the session cookie.
func newClient(t *testing.T, srv *Server) (*httptest.Server, *http.Client) {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

// onlySession returns the single session created by a test client.
func onlySession(t *testing.T, srv *Server) *Session {
	t.Helper()
	ss := srv.Sessions()
	ss.mu.Lock()
	defer ss.mu.Unlock()
	require.Len(t, ss.m, 1)
	for _, s := range ss.m {
		return s
	}
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
