// Package photo turns an uploaded picture into the base64 JPEG text that
// vision models accept in a data URI.
package photo

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// JPEGQuality matches the quality most image libraries use when none is given.
const JPEGQuality = 75

// Encoder decodes an upload, optionally shrinks it, and re-encodes it as
// base64 JPEG. The zero value encodes images at full size.
type Encoder struct {
	// MaxDimension caps the longest side in pixels. 0 disables downscaling.
	MaxDimension uint
}

func NewEncoder(maxDimension uint) *Encoder {
	return &Encoder{MaxDimension: maxDimension}
}

// Encode returns the base64 JPEG encoding of data, which must be a JPEG or
// PNG image.
func (e *Encoder) Encode(data []byte) (string, error) {
	img, _, err := Decode(data)
	if err != nil {
		return "", err
	}
	return EncodeBase64JPEG(Downscale(img, e.MaxDimension))
}

// Decode decodes JPEG or PNG bytes and reports the detected format name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// EncodeBase64JPEG JPEG-encodes img and returns it as standard, padded base64.
func EncodeBase64JPEG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Downscale shrinks img so its longest side is at most maxDim, keeping the
// aspect ratio. Images already within bounds, and maxDim == 0, pass through.
func Downscale(img image.Image, maxDim uint) image.Image {
	if maxDim == 0 {
		return img
	}
	b := img.Bounds()
	w, h := uint(b.Dx()), uint(b.Dy())
	if w <= maxDim && h <= maxDim {
		return img
	}
	// resize derives the zero dimension from the aspect ratio.
	if w >= h {
		return resize.Resize(maxDim, 0, img, resize.Lanczos3)
	}
	return resize.Resize(0, maxDim, img, resize.Lanczos3)
}

// DataURI wraps base64 JPEG text in a data URI.
func DataURI(encoded string) string {
	return "data:image/jpeg;base64," + encoded
}
