package browser

import (
	"context"
	"time"
)

// Evaluator runs a JavaScript function in the page and decodes its JSON
// result into out.
type Evaluator interface {
	Evaluate(ctx context.Context, js string, out any, args ...any) error
}

// Location is the page URL and document title at one point in time.
type Location struct {
	URL   string
	Title string
}

// Changed reports whether either the URL or the title differs. It is the
// heuristic used to decide that an interaction navigated somewhere; a
// cosmetic title change counts as navigation.
func (l Location) Changed(o Location) bool {
	return l.URL != o.URL || l.Title != o.Title
}

// Driver is the set of page operations the explorer and executor need. All
// calls target one shared page and must be issued sequentially.
type Driver interface {
	Evaluator

	Location(ctx context.Context) (Location, error)
	Navigate(ctx context.Context, url string) error
	Back(ctx context.Context) error
	WaitLoad(ctx context.Context, timeout time.Duration) error

	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string) error
	// ClickFirst clicks the first element matching selector without waiting
	// and reports whether one existed.
	ClickFirst(ctx context.Context, selector string) (bool, error)
	Fill(ctx context.Context, selector, value string) error
	Value(ctx context.Context, selector string) (string, error)
	Blur(ctx context.Context, selector string) error
	PressEnter(ctx context.Context) error
	Texts(ctx context.Context, selector string) ([]string, error)
	// Bounds returns the box of the first element matching selector.
	Bounds(ctx context.Context, selector string) (Rect, bool, error)

	// WatchNavigation runs action and reports whether the main frame
	// navigated within timeout of it starting.
	WatchNavigation(ctx context.Context, timeout time.Duration, action func() error) (bool, error)

	// Screenshot writes a full-page PNG to path.
	Screenshot(ctx context.Context, path string) error
	// Capture returns a full-page PNG.
	Capture(ctx context.Context) ([]byte, error)
}

// Rect is an element box in CSS pixels relative to the document.
type Rect struct {
	X, Y, Width, Height float64
}
