// Package overlay draws numbered issue markers onto page screenshots.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
)

// Marker is one numbered box to draw.
type Marker struct {
	Number int
	Box    image.Rectangle
}

const (
	outlineWidth = 4
	badgeRadius  = 14
	digitScale   = 3
)

var (
	outlineColor = color.RGBA{255, 0, 0, 255}
	fillColor    = color.NRGBA{255, 0, 0, 38} // ~15% red
	badgeBorder  = color.RGBA{255, 255, 255, 255}
)

// badge is where a numbered label sits on its box, as fractions of the box
// height, and its colour.
type badge struct {
	yFrac float64
	right bool
	color color.RGBA
}

// badges spreads labels 1..10 around the box edges so that neighbouring
// numbers on one element do not cover each other.
var badges = []badge{
	{0, false, color.RGBA{0xff, 0x00, 0x00, 0xff}},
	{0, true, color.RGBA{0xff, 0x66, 0x00, 0xff}},
	{0.5, false, color.RGBA{0xff, 0xcc, 0x00, 0xff}},
	{0.5, true, color.RGBA{0x00, 0xcc, 0x00, 0xff}},
	{1, false, color.RGBA{0x00, 0x66, 0xff, 0xff}},
	{1, true, color.RGBA{0x66, 0x00, 0xff, 0xff}},
	{0.25, false, color.RGBA{0xff, 0x00, 0x66, 0xff}},
	{0.25, true, color.RGBA{0x00, 0xff, 0xff, 0xff}},
	{0.75, false, color.RGBA{0xff, 0x99, 0x00, 0xff}},
	{0.75, true, color.RGBA{0x99, 0x00, 0xff, 0xff}},
}

// BadgeColor returns the label colour used for issue number n.
func BadgeColor(n int) color.RGBA {
	return badgeFor(n).color
}

func badgeFor(n int) badge {
	if n < 1 || n > len(badges) {
		return badges[0]
	}
	return badges[n-1]
}

// Highlight returns a copy of src with every marker outlined, tinted and
// labelled. src is left untouched.
func Highlight(src image.Image, markers []Marker) *image.RGBA {
	bounds := src.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, src, bounds.Min, draw.Src)

	for _, m := range markers {
		box := m.Box.Intersect(bounds)
		if box.Empty() {
			continue
		}
		draw.Draw(result, box, image.NewUniform(fillColor), image.Point{}, draw.Over)
		drawOutline(result, box)
	}

	// Labels go on last so outlines of later markers never cover them.
	for _, m := range markers {
		if m.Box.Intersect(bounds).Empty() {
			continue
		}
		drawBadge(result, m)
	}
	return result
}

func drawOutline(img *image.RGBA, r image.Rectangle) {
	for i := 0; i < outlineWidth; i++ {
		x1, y1 := r.Min.X-i, r.Min.Y-i
		x2, y2 := r.Max.X-1+i, r.Max.Y-1+i
		drawLine(img, x1, y1, x2, y1, outlineColor)
		drawLine(img, x2, y1, x2, y2, outlineColor)
		drawLine(img, x2, y2, x1, y2, outlineColor)
		drawLine(img, x1, y2, x1, y1, outlineColor)
	}
}

// BadgeCenter returns where the label for m is drawn.
func BadgeCenter(m Marker) image.Point {
	b := badgeFor(m.Number)
	x := m.Box.Min.X
	if b.right {
		x = m.Box.Max.X
	}
	y := m.Box.Min.Y + int(math.Round(b.yFrac*float64(m.Box.Dy())))
	return image.Point{X: x, Y: y}
}

func drawBadge(img *image.RGBA, m Marker) {
	c := BadgeCenter(m)
	fillCircle(img, c.X, c.Y, badgeRadius+2, badgeBorder)
	fillCircle(img, c.X, c.Y, badgeRadius, badgeFor(m.Number).color)
	drawNumber(img, c.X, c.Y, m.Number, badgeBorder)
}

func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				setPixelSafe(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// digits is a 3x5 bitmap font, one row per string.
var digits = [10][5]string{
	{"###", "#.#", "#.#", "#.#", "###"},
	{".#.", "##.", ".#.", ".#.", "###"},
	{"###", "..#", "###", "#..", "###"},
	{"###", "..#", "###", "..#", "###"},
	{"#.#", "#.#", "###", "..#", "..#"},
	{"###", "#..", "###", "..#", "###"},
	{"###", "#..", "###", "#.#", "###"},
	{"###", "..#", "..#", "..#", "..#"},
	{"###", "#.#", "###", "#.#", "###"},
	{"###", "#.#", "###", "..#", "###"},
}

// drawNumber renders n centred on (cx, cy).
func drawNumber(img *image.RGBA, cx, cy, n int, c color.RGBA) {
	s := strconv.Itoa(n)
	glyphW := 3 * digitScale
	gap := digitScale
	width := len(s)*glyphW + (len(s)-1)*gap
	x0 := cx - width/2
	y0 := cy - 5*digitScale/2

	for i, ch := range s {
		if ch < '0' || ch > '9' {
			continue
		}
		glyph := digits[ch-'0']
		gx := x0 + i*(glyphW+gap)
		for row, line := range glyph {
			for col, px := range line {
				if px != '#' {
					continue
				}
				for sy := 0; sy < digitScale; sy++ {
					for sx := 0; sx < digitScale; sx++ {
						setPixelSafe(img, gx+col*digitScale+sx, y0+row*digitScale+sy, c)
					}
				}
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		setPixelSafe(img, x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func setPixelSafe(img *image.RGBA, x, y int, c color.RGBA) {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		img.SetRGBA(x, y, c)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// HighlightPNG decodes a PNG screenshot, highlights it and encodes the
// result as PNG again.
func HighlightPNG(data []byte, markers []Marker) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, Highlight(src, markers)); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
