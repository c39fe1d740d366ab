package visual

import (
	"context"
	"image"
	"math"

	"github.com/v0xg/pagescout/internal/browser"
	"github.com/v0xg/pagescout/internal/markup"
	"github.com/v0xg/pagescout/internal/overlay"
)

// Bounder resolves a selector to its box on the page.
type Bounder interface {
	Bounds(ctx context.Context, selector string) (browser.Rect, bool, error)
}

// Markers places every highlighted issue on the page. Issues that carry
// bounds use them; the rest are looked up through selectors derived from
// their markup. Issues that cannot be located are left off the image but
// keep their number.
func Markers(ctx context.Context, b Bounder, issues []HighlightedIssue) []overlay.Marker {
	var markers []overlay.Marker
	for _, is := range issues {
		r, ok := locate(ctx, b, is.Issue)
		if !ok {
			continue
		}
		markers = append(markers, overlay.Marker{Number: is.IssueNumber, Box: toRectangle(r)})
	}
	return markers
}

func locate(ctx context.Context, b Bounder, is Issue) (Rect, bool) {
	if is.Bounds != nil && is.Bounds.Area() > 0 {
		return *is.Bounds, true
	}
	for _, sel := range markup.Selectors(is.Element) {
		r, ok, err := b.Bounds(ctx, sel)
		if err != nil || !ok || r.Width <= 0 || r.Height <= 0 {
			continue
		}
		return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}, true
	}
	return Rect{}, false
}

func toRectangle(r Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	)
}
