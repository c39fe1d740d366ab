// Package navigator clicks and fills the first few interactive elements of a
// page and records how the page reacted.
package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/v0xg/pagescout/internal/browser"
	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/logger"
)

// Result is one exercised element.
type Result struct {
	ElementType    string `json:"elementType"`
	Selector       string `json:"selector"`
	Action         string `json:"action"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	URLBefore      string `json:"urlBefore"`
	URLAfter       string `json:"urlAfter,omitempty"`
	TitleBefore    string `json:"titleBefore"`
	TitleAfter     string `json:"titleAfter,omitempty"`
	ScreenshotPath string `json:"screenshotPath,omitempty"`
	InputValue     string `json:"inputValue,omitempty"`
	ResponseTime   int64  `json:"responseTime,omitempty"` // ms
}

type Options struct {
	MaxInteractions int // total across inputs and clicks
	MaxInputs       int
	VisibleTimeout  time.Duration
	InputSettle     time.Duration
	ClickSettle     time.Duration
	ScreenshotDir   string
	Logger          *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		MaxInteractions: 5,
		MaxInputs:       2,
		VisibleTimeout:  5 * time.Second,
		InputSettle:     500 * time.Millisecond,
		ClickSettle:     2 * time.Second,
	}
}

// Explorer exercises elements on one page. It does not navigate back after
// a click, so later clicks run on whatever page the previous one left.
type Explorer struct {
	drv  browser.Driver
	opts Options
	log  *slog.Logger
}

func New(drv browser.Driver, opts Options) *Explorer {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Explorer{drv: drv, opts: opts, log: log}
}

// Exploration is what Explore found and did.
type Exploration struct {
	Clickables int
	Inputs     int
	Results    []Result
}

// Explore detects elements on the current page and exercises them.
func (x *Explorer) Explore(ctx context.Context) (*Exploration, error) {
	clickables, err := crawler.DetectClickable(ctx, x.drv)
	if err != nil {
		return nil, fmt.Errorf("detect clickable elements: %w", err)
	}
	inputs, err := crawler.DetectInputs(ctx, x.drv)
	if err != nil {
		return nil, fmt.Errorf("detect input fields: %w", err)
	}
	x.log.Info("elements detected", "clickable", len(clickables), "inputs", len(inputs))

	results := x.Run(ctx, clickables, inputs)
	if results == nil {
		results = []Result{}
	}
	return &Exploration{Clickables: len(clickables), Inputs: len(inputs), Results: results}, nil
}

// Run fills up to MaxInputs fields, then clicks elements until
// MaxInteractions have been recorded. Nothing is retried.
func (x *Explorer) Run(ctx context.Context, clickables []crawler.ClickableElement, inputs []crawler.InputField) []Result {
	var results []Result

	for i, field := range inputs {
		if i == x.opts.MaxInputs || len(results) >= x.opts.MaxInteractions || ctx.Err() != nil {
			break
		}
		r, err := x.fill(ctx, field)
		if err != nil {
			r = x.failure(ctx, "input", field.Selector, "input", err)
		}
		results = append(results, r)
	}

	for _, el := range clickables {
		if len(results) >= x.opts.MaxInteractions || ctx.Err() != nil {
			break
		}
		r, err := x.click(ctx, el)
		if err != nil {
			r = x.failure(ctx, string(el.Type), el.Selector, "click", err)
		}
		results = append(results, r)
	}
	return results
}

func (x *Explorer) fill(ctx context.Context, field crawler.InputField) (Result, error) {
	before, err := x.drv.Location(ctx)
	if err != nil {
		return Result{}, err
	}
	start := time.Now()

	value := Value(field.Type)
	if err := x.drv.Fill(ctx, field.Selector, value); err != nil {
		return Result{}, err
	}
	if err := sleep(ctx, x.opts.InputSettle); err != nil {
		return Result{}, err
	}

	x.log.Debug("filled input", "selector", field.Selector, "value", value)
	return Result{
		ElementType:  "input",
		Selector:     field.Selector,
		Action:       "input",
		Success:      true,
		URLBefore:    before.URL,
		TitleBefore:  before.Title,
		InputValue:   value,
		ResponseTime: time.Since(start).Milliseconds(),
	}, nil
}

func (x *Explorer) click(ctx context.Context, el crawler.ClickableElement) (Result, error) {
	before, err := x.drv.Location(ctx)
	if err != nil {
		return Result{}, err
	}
	start := time.Now()

	if err := x.drv.WaitVisible(ctx, el.Selector, x.opts.VisibleTimeout); err != nil {
		return Result{}, err
	}
	if err := x.drv.Click(ctx, el.Selector); err != nil {
		return Result{}, err
	}
	if err := sleep(ctx, x.opts.ClickSettle); err != nil {
		return Result{}, err
	}

	after, err := x.drv.Location(ctx)
	if err != nil {
		return Result{}, err
	}
	r := Result{
		ElementType:  string(el.Type),
		Selector:     el.Selector,
		Action:       "click",
		Success:      before.Changed(after),
		URLBefore:    before.URL,
		URLAfter:     after.URL,
		TitleBefore:  before.Title,
		TitleAfter:   after.Title,
		ResponseTime: time.Since(start).Milliseconds(),
	}

	if x.opts.ScreenshotDir != "" {
		path := filepath.Join(x.opts.ScreenshotDir, fmt.Sprintf("navigation-%s-%d.png", el.Type, time.Now().UnixMilli()))
		if err := x.drv.Screenshot(ctx, path); err != nil {
			x.log.Warn("screenshot failed", "selector", el.Selector, "error", err)
		} else {
			r.ScreenshotPath = path
		}
	}

	x.log.Debug("clicked element", "selector", el.Selector, "changed", r.Success)
	return r, nil
}

// failure records err with the page's current location, or "unknown" when
// even that cannot be read.
func (x *Explorer) failure(ctx context.Context, elementType, selector, action string, err error) Result {
	x.log.Warn("interaction failed", "selector", selector, "action", action, "error", err)
	r := Result{
		ElementType: elementType,
		Selector:    selector,
		Action:      action,
		Error:       err.Error(),
		URLBefore:   "unknown",
		TitleBefore: "unknown",
	}
	if loc, lerr := x.drv.Location(ctx); lerr == nil {
		r.URLBefore, r.TitleBefore = loc.URL, loc.Title
	}
	return r
}

// Value is the text typed into a field of the given type.
func Value(fieldType string) string {
	switch strings.ToLower(fieldType) {
	case "email":
		return "test@example.com"
	case "password":
		return "testpassword123"
	case "tel":
		return "090-1234-5678"
	case "url":
		return "https://example.com"
	case "number":
		return "123"
	case "search":
		return "test search"
	}
	return "test input"
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
