package gallery

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"io"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecode is returned for uploads that are not a readable image.
	ErrDecode = errors.New("unreadable image")
	// ErrTooLarge is returned for uploads over MaxUploadBytes.
	ErrTooLarge = errors.New("upload too large")
)

var (
	// MaxUploadBytes bounds the size of an accepted upload.
	MaxUploadBytes int64 = 20 << 20
	// MaxEdge is the longest edge kept inline; larger uploads are downscaled.
	MaxEdge = 2048
	// Quality is the JPEG quality of downscaled uploads.
	Quality = 85
)

// Decoder turns an uploaded file into an image reference.
type Decoder func(ctx context.Context, r io.Reader) (ImageRef, error)

// DecodeUpload reads an uploaded image and returns it as an inline data URL.
func DecodeUpload(ctx context.Context, r io.Reader) (ImageRef, error) {
	bs, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	if int64(len(bs)) > MaxUploadBytes {
		return "", ErrTooLarge
	}

	img, format, err := image.Decode(bytes.NewReader(bs))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mime := "image/" + format
	b := img.Bounds()
	if b.Dx() > MaxEdge || b.Dy() > MaxEdge {
		x, y := fit(b.Dx(), b.Dy(), MaxEdge)
		rimg := transform.Resize(img, x, y, transform.Lanczos)

		var buf bytes.Buffer
		if err := imgio.JPEGEncoder(Quality)(&buf, rimg); err != nil {
			return "", fmt.Errorf("encode: %w", err)
		}
		bs = buf.Bytes()
		mime = "image/jpeg"
	}

	return ImageRef("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(bs)), nil
}

// fit scales w x h so that the longest edge is edge. Neither result drops below 1.
func fit(w, h, edge int) (int, int) {
	if w >= h {
		return edge, max(1, edge*h/w)
	}
	return max(1, edge*w/h), edge
}
