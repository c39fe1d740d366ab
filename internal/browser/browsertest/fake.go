// Package browsertest provides an in-memory browser.Driver for tests.
package browsertest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/v0xg/pagescout/internal/browser"
)

// Element is a fake DOM element.
type Element struct {
	Hidden      bool
	Value       string
	NavigatesTo string // clicking loads this URL
	SetsTitle   string // clicking changes the title without navigating
	ClickErr    error
	Errors      []string // texts shown by error selectors after a blur
	Rect        browser.Rect
}

// Page is a fake document reachable at a URL.
type Page struct {
	Title    string
	Elements map[string]*Element
	// SubmitTo is loaded when Enter is pressed or a submit button is clicked.
	SubmitTo string
	// ErrorSelector is the selector whose Texts are reported after a blur.
	ErrorSelector string
}

// Driver is a scripted browser.Driver. Navigation is a history stack.
type Driver struct {
	mu          sync.Mutex
	Pages       map[string]*Page
	History     []string
	Screenshots []string
	Calls       []string
	// Eval answers Evaluate calls; its result is JSON round-tripped into out.
	Eval func(js string, args []any) (any, error)
	// BrokenBack makes Back a no-op, as when history is unavailable.
	BrokenBack bool
	// LocationErr, when set, fails Location calls while the current URL
	// is the key.
	LocationErr map[string]error

	blurred map[string]bool
}

var _ browser.Driver = (*Driver)(nil)

// New returns a driver whose current page is start.
func New(start string, pages map[string]*Page) *Driver {
	return &Driver{Pages: pages, History: []string{start}, blurred: map[string]bool{}}
}

var ErrNotFound = errors.New("element not found")

func (d *Driver) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Driver) current() (string, *Page) {
	url := d.History[len(d.History)-1]
	p := d.Pages[url]
	if p == nil {
		p = &Page{}
	}
	return url, p
}

func (d *Driver) lookup(selector string) (*Element, error) {
	_, p := d.current()
	el, ok := p.Elements[selector]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return el, nil
}

// URL returns the current URL.
func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, _ := d.current()
	return u
}

func (d *Driver) Evaluate(_ context.Context, js string, out any, args ...any) error {
	d.mu.Lock()
	eval := d.Eval
	d.mu.Unlock()
	if eval == nil {
		return errors.New("no evaluator scripted")
	}
	v, err := eval(js, args)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (d *Driver) Location(context.Context) (browser.Location, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, p := d.current()
	if err := d.LocationErr[u]; err != nil {
		return browser.Location{}, err
	}
	return browser.Location{URL: u, Title: p.Title}, nil
}

func (d *Driver) Navigate(_ context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("navigate %s", url)
	d.History = append(d.History, url)
	return nil
}

func (d *Driver) Back(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("back")
	if d.BrokenBack || len(d.History) < 2 {
		return nil
	}
	d.History = d.History[:len(d.History)-1]
	return nil
}

func (d *Driver) WaitLoad(context.Context, time.Duration) error { return nil }

func (d *Driver) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.lookup(selector)
	if err != nil {
		return err
	}
	if el.Hidden {
		return fmt.Errorf("element not visible: %s", selector)
	}
	return nil
}

func (d *Driver) Click(_ context.Context, selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("click %s", selector)
	el, err := d.lookup(selector)
	if err != nil {
		return err
	}
	if el.ClickErr != nil {
		return el.ClickErr
	}
	d.activate(el)
	return nil
}

func (d *Driver) activate(el *Element) {
	if el.NavigatesTo != "" {
		d.History = append(d.History, el.NavigatesTo)
		return
	}
	if el.SetsTitle != "" {
		_, p := d.current()
		p.Title = el.SetsTitle
	}
}

func (d *Driver) ClickFirst(_ context.Context, selector string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, p := d.current()
	for _, part := range strings.Split(selector, ",") {
		if el, ok := p.Elements[strings.TrimSpace(part)]; ok {
			d.record("click %s", strings.TrimSpace(part))
			if el.NavigatesTo == "" && p.SubmitTo != "" {
				d.History = append(d.History, p.SubmitTo)
				return true, nil
			}
			d.activate(el)
			return true, nil
		}
	}
	return false, nil
}

func (d *Driver) Fill(_ context.Context, selector, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("fill %s %q", selector, value)
	el, err := d.lookup(selector)
	if err != nil {
		return err
	}
	el.Value = value
	return nil
}

func (d *Driver) Value(_ context.Context, selector string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.lookup(selector)
	if err != nil {
		return "", err
	}
	return el.Value, nil
}

func (d *Driver) Blur(_ context.Context, selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("blur %s", selector)
	if _, err := d.lookup(selector); err != nil {
		return err
	}
	d.blurred[selector] = true
	return nil
}

func (d *Driver) PressEnter(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("enter")
	_, p := d.current()
	if p.SubmitTo != "" {
		d.History = append(d.History, p.SubmitTo)
	}
	return nil
}

func (d *Driver) Texts(_ context.Context, selector string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, p := d.current()
	if selector != p.ErrorSelector && p.ErrorSelector != "" {
		return nil, nil
	}
	var texts []string
	for sel, el := range p.Elements {
		if d.blurred[sel] {
			texts = append(texts, el.Errors...)
		}
	}
	return texts, nil
}

func (d *Driver) Bounds(_ context.Context, selector string) (browser.Rect, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, err := d.lookup(selector)
	if err != nil {
		return browser.Rect{}, false, nil
	}
	return el.Rect, true, nil
}

func (d *Driver) WatchNavigation(_ context.Context, _ time.Duration, action func() error) (bool, error) {
	d.mu.Lock()
	before := len(d.History)
	d.mu.Unlock()

	if err := action(); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.History) > before, nil
}

func (d *Driver) Screenshot(_ context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Screenshots = append(d.Screenshots, path)
	return nil
}

func (d *Driver) Capture(context.Context) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
