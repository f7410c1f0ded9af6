package imaging

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	placeholderFill = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	placeholderInk  = color.RGBA{R: 100, G: 100, B: 100, A: 255}
)

const placeholderDiagnosticRunes = 100

// Placeholder renders a CanvasSize grey square carrying the first
// hundred characters of diagnostic. It has the same size and colour
// model as a normalized scene.
func Placeholder(diagnostic string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: placeholderFill}, image.Point{}, draw.Src)

	text := "Image generation failed:\n" + truncateRunes(diagnostic, placeholderDiagnosticRunes) + "..."
	drawLines(img, 50, 500, text)
	return img
}

func drawLines(dst draw.Image, x, y int, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(placeholderInk),
		Face: face,
	}
	lineHeight := face.Metrics().Height.Ceil() + 4
	for i, line := range strings.Split(text, "\n") {
		d.Dot = fixed.P(x, y+i*lineHeight)
		d.DrawString(line)
	}
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
