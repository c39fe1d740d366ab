// Package executor runs generated test cases against the live page.
package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/v0xg/pagescout/internal/browser"
	"github.com/v0xg/pagescout/internal/logger"
	"github.com/v0xg/pagescout/internal/testgen"
)

// Options configures execution behavior
type Options struct {
	VisibleTimeout   time.Duration // wait for the target element
	ClickNavTimeout  time.Duration // wait for a navigation after a click
	SearchNavTimeout time.Duration // wait for a navigation after submitting a search
	LoadTimeout      time.Duration // wait for a navigated page to load

	ClickSettle      time.Duration
	SearchSettle     time.Duration
	InputSettle      time.Duration
	ValidationSettle time.Duration

	// ScreenshotDir receives full-page screenshots; empty disables them.
	ScreenshotDir string

	Logger *slog.Logger
	// Progress, when set, receives one line per case.
	Progress io.Writer
}

// DefaultOptions returns the stock timeouts and settle delays.
func DefaultOptions() Options {
	return Options{
		VisibleTimeout:   5 * time.Second,
		ClickNavTimeout:  10 * time.Second,
		SearchNavTimeout: 15 * time.Second,
		LoadTimeout:      10 * time.Second,
		ClickSettle:      2 * time.Second,
		SearchSettle:     3 * time.Second,
		InputSettle:      500 * time.Millisecond,
		ValidationSettle: time.Second,
	}
}

// Result is the outcome of one test case.
type Result struct {
	TestCaseID          string `json:"testCaseId"`
	TestCaseDescription string `json:"testCaseDescription"`
	Success             bool   `json:"success"`
	Error               string `json:"error,omitempty"`
	ExecutionTime       int64  `json:"executionTime"` // ms
	ScreenshotPath      string `json:"screenshotPath,omitempty"`
	URLBefore           string `json:"urlBefore"`
	URLAfter            string `json:"urlAfter,omitempty"`
	TitleBefore         string `json:"titleBefore"`
	TitleAfter          string `json:"titleAfter,omitempty"`
	ActualResult        string `json:"actualResult,omitempty"`
}

// Executor drives one page through a list of test cases. Cases share the
// page, so they run strictly one after another.
type Executor struct {
	drv  browser.Driver
	opts Options
	log  *slog.Logger
}

func New(drv browser.Driver, opts Options) *Executor {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Executor{drv: drv, opts: opts, log: log}
}

// Run executes every case in order. A failing case is recorded and the run
// continues with the next one.
func (e *Executor) Run(ctx context.Context, cases []testgen.TestCase) []Result {
	results := make([]Result, 0, len(cases))
	for i, tc := range cases {
		if ctx.Err() != nil {
			break
		}
		if e.opts.Progress != nil {
			fmt.Fprintf(e.opts.Progress, "  [%d/%d] %s %s", i+1, len(cases), tc.Action, tc.ElementSelector)
		}

		r := e.Execute(ctx, tc)
		results = append(results, r)

		if e.opts.Progress != nil {
			if r.Success {
				fmt.Fprintln(e.opts.Progress, " ✓")
			} else if r.Error != "" {
				fmt.Fprintf(e.opts.Progress, " ✗ (%s)\n", r.Error)
			} else {
				fmt.Fprintln(e.opts.Progress, " ✗")
			}
		}
	}
	return results
}

// Execute runs a single test case.
func (e *Executor) Execute(ctx context.Context, tc testgen.TestCase) Result {
	start := time.Now()
	r := Result{
		TestCaseID:          tc.ID,
		TestCaseDescription: tc.Description,
		URLBefore:           "unknown",
		TitleBefore:         "unknown",
	}

	before, err := e.drv.Location(ctx)
	if err == nil {
		r.URLBefore, r.TitleBefore = before.URL, before.Title
	}

	if err == nil {
		err = e.dispatch(ctx, tc, before, &r)
	}
	if err != nil {
		r.Success = false
		r.Error = err.Error()
		e.log.Warn("test case failed", "id", tc.ID, "action", tc.Action, "selector", tc.ElementSelector, "error", err)
	} else {
		e.log.Debug("test case finished", "id", tc.ID, "success", r.Success, "actual", r.ActualResult)
	}

	r.ExecutionTime = time.Since(start).Milliseconds()
	return r
}

func (e *Executor) dispatch(ctx context.Context, tc testgen.TestCase, before browser.Location, r *Result) error {
	switch tc.Action {
	case testgen.ActionClick:
		return e.click(ctx, tc, before, r)
	case testgen.ActionInput:
		return e.input(ctx, tc, r)
	case testgen.ActionInputAndSearch:
		return e.inputAndSearch(ctx, tc, before, r)
	case testgen.ActionValidation:
		return e.validation(ctx, tc, r)
	default:
		return fmt.Errorf("unknown action: %s", tc.Action)
	}
}
