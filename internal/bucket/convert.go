package bucket

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"

	// decoders registered for image.Decode
	_ "image/gif"
	_ "image/png"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	blurHashX = 4
	blurHashY = 3
	// blurhash only needs a tiny sample
	blurHashSample = 32
)

// decodeDataURL splits "data:[<mediatype>];base64,<data>" and decodes the payload.
// A bare base64 string without the data prefix is accepted as well.
func decodeDataURL(raw string) ([]byte, error) {
	const base64Prefix = ";base64,"
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		parts := strings.SplitN(raw, base64Prefix, 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid base64 image format: expected 'data:[mediatype];base64,[data]'")
		}
		payload = parts[1]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, nil
}

func encodeJPG(w io.Writer, img image.Image, quality int) error {
	var rgba *image.RGBA
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Opaque() {
		rgba = &image.RGBA{
			Pix:    nrgba.Pix,
			Stride: nrgba.Stride,
			Rect:   nrgba.Rect,
		}
	}

	opts := &jpeg.Options{Quality: quality}
	if rgba != nil {
		return jpeg.Encode(w, rgba, opts)
	}
	return jpeg.Encode(w, img, opts)
}

// resize scales img to the given width keeping the aspect ratio. Images narrower
// than width are returned unchanged.
func resize(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width || b.Dx() == 0 {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height == 0 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func thumbnailJPG(img image.Image, width int) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJPG(&buf, resize(img, width), 80); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func blurHash(img image.Image) (string, error) {
	small := resize(img, blurHashSample)
	h, err := blurhash.Encode(blurHashX, blurHashY, small)
	if err != nil {
		return "", fmt.Errorf("failed to compute blurhash: %w", err)
	}
	return h, nil
}
