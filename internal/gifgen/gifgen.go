// Package gifgen stitches run screenshots into an animated replay.
package gifgen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sort"
	"time"

	"github.com/nfnt/resize"
)

// ErrNoFrames is returned when none of the screenshots could be decoded.
var ErrNoFrames = errors.New("no frames to encode")

// Options configures replay generation
type Options struct {
	FrameDelay time.Duration // how long each screenshot stays up
	Width      uint
	Height     uint
}

func DefaultOptions() Options {
	return Options{FrameDelay: time.Second, Width: 800, Height: 600}
}

// Stats describes a written replay.
type Stats struct {
	Frames  int
	Skipped []string
	Size    int64
}

// Replay decodes the screenshots at paths, fits each into a Width x Height
// canvas and writes them as a looping GIF to outputPath. Screenshots that
// cannot be read are skipped and listed in Stats.
func Replay(paths []string, outputPath string, opts Options) (Stats, error) {
	var stats Stats
	var frames []image.Image
	for _, p := range paths {
		img, err := decode(p)
		if err != nil {
			stats.Skipped = append(stats.Skipped, p)
			continue
		}
		frames = append(frames, fit(img, opts))
	}
	if len(frames) == 0 {
		return stats, ErrNoFrames
	}

	size, err := Generate(frames, outputPath, opts)
	if err != nil {
		return stats, err
	}
	stats.Frames = len(frames)
	stats.Size = size
	return stats, nil
}

// Generate encodes already-sized frames as a GIF and returns the file size.
func Generate(frames []image.Image, outputPath string, opts Options) (int64, error) {
	if len(frames) == 0 {
		return 0, ErrNoFrames
	}

	// GIF delays are in 100ths of a second
	delay := max(1, int(opts.FrameDelay/(10*time.Millisecond)))

	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: 0,
	}

	palette := generatePalette(frames)
	for i, frame := range frames {
		paletted := image.NewPaletted(frame.Bounds(), palette)
		draw.FloydSteinberg.Draw(paletted, frame.Bounds(), frame, frame.Bounds().Min)
		g.Image[i] = paletted
		g.Delay[i] = delay
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := gif.EncodeAll(f, g); err != nil {
		return 0, fmt.Errorf("encode %s: %w", outputPath, err)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// fit scales img down to the canvas, keeping its aspect ratio, and centers
// it on a white background. Full-page screenshots are usually much taller
// than the viewport, so every frame ends up the same size.
func fit(img image.Image, opts Options) image.Image {
	w, h := opts.Width, opts.Height
	if w == 0 || h == 0 {
		d := DefaultOptions()
		w, h = d.Width, d.Height
	}

	scaled := resize.Thumbnail(w, h, img, resize.Lanczos3)
	canvas := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	sb := scaled.Bounds()
	offset := image.Pt((int(w)-sb.Dx())/2, (int(h)-sb.Dy())/2)
	draw.Draw(canvas, sb.Sub(sb.Min).Add(offset), scaled, sb.Min, draw.Over)
	return canvas
}

// generatePalette builds a 256-color palette from the most frequent colors
// across all frames.
func generatePalette(frames []image.Image) color.Palette {
	colorMap := make(map[color.RGBA]int)

	// Sample every 4th pixel for performance
	const step = 4
	for _, img := range frames {
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
			for x := bounds.Min.X; x < bounds.Max.X; x += step {
				r, g, b, _ := img.At(x, y).RGBA()
				colorMap[color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}]++
			}
		}
	}

	type colorCount struct {
		c     color.RGBA
		count int
	}
	colors := make([]colorCount, 0, len(colorMap))
	for c, count := range colorMap {
		colors = append(colors, colorCount{c, count})
	}
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].count != colors[j].count {
			return colors[i].count > colors[j].count
		}
		a, b := colors[i].c, colors[j].c
		return uint32(a.R)<<16|uint32(a.G)<<8|uint32(a.B) < uint32(b.R)<<16|uint32(b.G)<<8|uint32(b.B)
	})

	palette := make(color.Palette, 0, 256)
	for i := 0; i < len(colors) && len(palette) < 256; i++ {
		palette = append(palette, colors[i].c)
	}

	// pad with grayscale
	for len(palette) < 256 {
		gray := uint8(len(palette))
		palette = append(palette, color.RGBA{gray, gray, gray, 255})
	}
	return palette
}
