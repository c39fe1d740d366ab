package executor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/v0xg/pagescout/internal/browser"
	"github.com/v0xg/pagescout/internal/testgen"
)

const (
	searchSubmitSelector = `input[type="submit"], button[type="submit"], .search-button`
	errorMessageSelector = `[class*="error"], [class*="invalid"], .error-message, .validation-error`
)

// click performs a click and follows any navigation it causes
func (e *Executor) click(ctx context.Context, tc testgen.TestCase, before browser.Location, r *Result) error {
	if err := e.drv.WaitVisible(ctx, tc.ElementSelector, e.opts.VisibleTimeout); err != nil {
		return err
	}

	navigated, err := e.drv.WatchNavigation(ctx, e.opts.ClickNavTimeout, func() error {
		return e.drv.Click(ctx, tc.ElementSelector)
	})
	if err != nil {
		return err
	}

	if navigated {
		after, err := e.followNavigation(ctx, tc, "click-navigation", before, r)
		if err != nil {
			return err
		}
		if before.Changed(after) {
			r.ActualResult = fmt.Sprintf("Navigated: %s → %s", before.URL, after.URL)
		} else {
			r.ActualResult = "No page transition happened"
		}
		return nil
	}

	after, err := e.settleAndCapture(ctx, tc, "click-no-navigation", e.opts.ClickSettle, r)
	if err != nil {
		return err
	}
	r.Success = before.Changed(after)
	if r.Success {
		r.ActualResult = "The page changed"
	} else {
		r.ActualResult = "No page transition happened"
	}
	return nil
}

// input fills a field and reads the value back
func (e *Executor) input(ctx context.Context, tc testgen.TestCase, r *Result) error {
	if err := e.drv.WaitVisible(ctx, tc.ElementSelector, e.opts.VisibleTimeout); err != nil {
		return err
	}
	if err := e.drv.Fill(ctx, tc.ElementSelector, tc.InputValue); err != nil {
		return err
	}
	if err := sleep(ctx, e.opts.InputSettle); err != nil {
		return err
	}

	value, err := e.drv.Value(ctx, tc.ElementSelector)
	if err != nil {
		return err
	}
	r.Success = value == tc.InputValue
	if r.Success {
		r.ActualResult = "The input value was kept"
	} else {
		r.ActualResult = fmt.Sprintf("The field holds %q instead of the input value", value)
	}
	return nil
}

// inputAndSearch types a query and submits it with the page's submit
// control, or Enter when there is none
func (e *Executor) inputAndSearch(ctx context.Context, tc testgen.TestCase, before browser.Location, r *Result) error {
	if err := e.drv.WaitVisible(ctx, tc.ElementSelector, e.opts.VisibleTimeout); err != nil {
		return err
	}
	if err := e.drv.Fill(ctx, tc.ElementSelector, tc.InputValue); err != nil {
		return err
	}

	navigated, err := e.drv.WatchNavigation(ctx, e.opts.SearchNavTimeout, func() error {
		clicked, err := e.drv.ClickFirst(ctx, searchSubmitSelector)
		if err != nil || clicked {
			return err
		}
		return e.drv.PressEnter(ctx)
	})
	if err != nil {
		return err
	}

	if navigated {
		after, err := e.followNavigation(ctx, tc, "search-navigation", before, r)
		if err != nil {
			return err
		}
		if before.Changed(after) {
			r.ActualResult = fmt.Sprintf("Search ran and navigated: %s → %s", before.URL, after.URL)
		} else {
			r.ActualResult = "Search ran without a page transition"
		}
		return nil
	}

	after, err := e.settleAndCapture(ctx, tc, "search-no-navigation", e.opts.SearchSettle, r)
	if err != nil {
		return err
	}
	r.Success = looksLikeSearch(after)
	if r.Success {
		r.ActualResult = "Search ran"
	} else {
		r.ActualResult = "Search did not run"
	}
	return nil
}

func looksLikeSearch(loc browser.Location) bool {
	title := strings.ToLower(loc.Title)
	return strings.Contains(strings.ToLower(loc.URL), "search") ||
		strings.Contains(title, "search") || strings.Contains(title, "検索")
}

// validation empties a field, blurs it and looks for error messages
func (e *Executor) validation(ctx context.Context, tc testgen.TestCase, r *Result) error {
	if err := e.drv.WaitVisible(ctx, tc.ElementSelector, e.opts.VisibleTimeout); err != nil {
		return err
	}
	if err := e.drv.Fill(ctx, tc.ElementSelector, ""); err != nil {
		return err
	}
	if err := e.drv.Blur(ctx, tc.ElementSelector); err != nil {
		return err
	}
	if err := sleep(ctx, e.opts.ValidationSettle); err != nil {
		return err
	}

	messages, err := e.drv.Texts(ctx, errorMessageSelector)
	if err != nil {
		return err
	}
	r.Success = len(messages) > 0
	if r.Success {
		r.ActualResult = fmt.Sprintf("Validation error shown: %s", messages[0])
	} else {
		r.ActualResult = "No validation error was shown"
	}
	return nil
}

// followNavigation records where a navigation landed, then returns the page
// to before.URL so the next case starts from the same place.
func (e *Executor) followNavigation(ctx context.Context, tc testgen.TestCase, kind string, before browser.Location, r *Result) (browser.Location, error) {
	if err := e.drv.WaitLoad(ctx, e.opts.LoadTimeout); err != nil {
		e.log.Debug("navigated page did not finish loading", "id", tc.ID, "error", err)
	}
	after, err := e.drv.Location(ctx)
	if err != nil {
		if rerr := e.restore(ctx, before.URL); rerr != nil {
			err = errors.Join(err, fmt.Errorf("return to %s: %w", before.URL, rerr))
		}
		return after, err
	}
	r.URLAfter, r.TitleAfter = after.URL, after.Title
	r.Success = before.Changed(after)
	r.ScreenshotPath = e.screenshot(ctx, tc, kind)

	if err := e.restore(ctx, before.URL); err != nil {
		return after, fmt.Errorf("return to %s: %w", before.URL, err)
	}
	return after, nil
}

// restore goes back in history and falls back to loading url directly when
// history did not lead there.
func (e *Executor) restore(ctx context.Context, url string) error {
	if err := e.drv.Back(ctx); err != nil {
		e.log.Debug("history back failed", "error", err)
	} else if err := e.drv.WaitLoad(ctx, e.opts.LoadTimeout); err != nil {
		e.log.Debug("page did not load after going back", "error", err)
	}

	loc, err := e.drv.Location(ctx)
	if err == nil && loc.URL == url {
		return nil
	}

	e.log.Debug("history did not restore the page, navigating directly", "url", url)
	if err := e.drv.Navigate(ctx, url); err != nil {
		return err
	}
	return e.drv.WaitLoad(ctx, e.opts.LoadTimeout)
}

func (e *Executor) settleAndCapture(ctx context.Context, tc testgen.TestCase, kind string, settle time.Duration, r *Result) (browser.Location, error) {
	if err := sleep(ctx, settle); err != nil {
		return browser.Location{}, err
	}
	after, err := e.drv.Location(ctx)
	if err != nil {
		if rerr := e.restore(ctx, before.URL); rerr != nil {
			err = errors.Join(err, fmt.Errorf("return to %s: %w", before.URL, rerr))
		}
		return after, err
	}
	r.URLAfter, r.TitleAfter = after.URL, after.Title
	r.ScreenshotPath = e.screenshot(ctx, tc, kind)
	return after, nil
}

// screenshot saves a full-page capture. Failures are logged, not fatal.
func (e *Executor) screenshot(ctx context.Context, tc testgen.TestCase, kind string) string {
	if e.opts.ScreenshotDir == "" {
		return ""
	}
	path := filepath.Join(e.opts.ScreenshotDir, fmt.Sprintf("test-case-%s-%s-%d.png", tc.ID, kind, time.Now().UnixMilli()))
	if err := e.drv.Screenshot(ctx, path); err != nil {
		e.log.Warn("screenshot failed", "id", tc.ID, "error", err)
		return ""
	}
	return path
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
