// Package imaging prepares reference images for transfer and encodes
// generated scenes.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// CanvasSize is the edge of the square canvas sent to AI services.
	CanvasSize  = 1024
	JPEGQuality = 85
)

var (
	ErrEmptyImage = errors.New("image has no pixels")

	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Decode accepts JPEG, PNG, GIF and WebP buffers.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Normalize returns an opaque CanvasSize square. The source is shrunk to
// fit when larger, never enlarged, and centred on white.
func Normalize(src image.Image) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrEmptyImage
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyImage
	}

	w, h := fitWithin(b.Dx(), b.Dy(), CanvasSize)
	x := (CanvasSize - w) / 2
	y := (CanvasSize - h) / 2
	target := image.Rect(x, y, x+w, y+h)

	dst := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: white}, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, target, src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, target, src, b, draw.Over, nil)
	}
	return dst, nil
}

func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		nh := h * max / w
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := w * max / h
	if nw < 1 {
		nw = 1
	}
	return nw, max
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ReferenceDataURL normalizes img and returns it as a base64 JPEG data URI.
func ReferenceDataURL(img image.Image) (string, error) {
	normalized, err := Normalize(img)
	if err != nil {
		return "", err
	}
	data, err := EncodeJPEG(normalized, JPEGQuality)
	if err != nil {
		return "", err
	}
	return DataURL("image/jpeg", data), nil
}

func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
