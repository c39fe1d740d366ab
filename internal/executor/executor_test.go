package executor

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/pagescout/internal/browser/browsertest"
	"github.com/v0xg/pagescout/internal/testgen"
)

const home = "https://shop.example.com/"

// fastOptions keeps the stock behavior without real waiting.
func fastOptions() Options {
	return Options{ScreenshotDir: "shots"}
}

func site() *browsertest.Driver {
	return browsertest.New(home, map[string]*browsertest.Page{
		home: {
			Title: "Shop",
			Elements: map[string]*browsertest.Element{
				"a.about":     {NavigatesTo: home + "about"},
				"#tab":        {SetsTitle: "Shop - Reviews"},
				"#noop":       {},
				"#broken":     {ClickErr: errors.New("element is covered")},
				"#q":          {},
				"#email":      {Errors: []string{"Email is required"}},
				"#nickname":   {},
				"#hidden-cta": {Hidden: true},
			},
			SubmitTo: home + "search?q=test+search+query",
		},
		home + "about":                      {Title: "About us"},
		home + "search?q=test+search+query": {Title: "Results"},
	})
}

func tc(id string, action testgen.Action, sel, value string) testgen.TestCase {
	return testgen.TestCase{ID: id, Description: id + " case", ElementSelector: sel, Action: action, InputValue: value}
}

func TestClickWithNavigationReturnsToStart(t *testing.T) {
	d := site()
	r := New(d, fastOptions()).Execute(context.Background(), tc("TC1", testgen.ActionClick, "a.about", ""))

	assert.True(t, r.Success, r.Error)
	assert.Equal(t, home, r.URLBefore)
	assert.Equal(t, "Shop", r.TitleBefore)
	assert.Equal(t, home+"about", r.URLAfter)
	assert.Equal(t, "About us", r.TitleAfter)
	assert.Equal(t, "Navigated: "+home+" → "+home+"about", r.ActualResult)
	assert.Equal(t, home, d.URL(), "page is back where the case started")
	assert.Contains(t, d.Calls, "back")

	require.Len(t, d.Screenshots, 1)
	assert.Equal(t, d.Screenshots[0], r.ScreenshotPath)
	assert.True(t, strings.HasPrefix(filepath.Base(r.ScreenshotPath), "test-case-TC1-click-navigation-"))
}

func TestClickRestoresByURLWhenHistoryFails(t *testing.T) {
	d := site()
	d.BrokenBack = true

	r := New(d, fastOptions()).Execute(context.Background(), tc("TC1", testgen.ActionClick, "a.about", ""))

	assert.True(t, r.Success)
	assert.Equal(t, home, d.URL())
	assert.Contains(t, d.Calls, "navigate "+home)
}

func TestClickReturnsToStartWhenLandingPageIsUnreadable(t *testing.T) {
	d := site()
	d.LocationErr = map[string]error{home + "about": errors.New("target closed")}

	r := New(d, fastOptions()).Execute(context.Background(), tc("TC1", testgen.ActionClick, "a.about", ""))

	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "target closed")
	assert.Equal(t, home, d.URL(), "page is back where the case started")
	assert.Contains(t, d.Calls, "back")
}

func TestClickWithoutNavigation(t *testing.T) {
	d := site()
	e := New(d, fastOptions())

	r := e.Execute(context.Background(), tc("TC1", testgen.ActionClick, "#tab", ""))
	assert.True(t, r.Success, "a title change counts as a transition")
	assert.Equal(t, "Shop - Reviews", r.TitleAfter)
	assert.NotContains(t, d.Calls, "back")

	r = e.Execute(context.Background(), tc("TC2", testgen.ActionClick, "#noop", ""))
	assert.False(t, r.Success)
	assert.Empty(t, r.Error)
	assert.Equal(t, "No page transition happened", r.ActualResult)
	assert.True(t, strings.HasPrefix(filepath.Base(r.ScreenshotPath), "test-case-TC2-click-no-navigation-"))
}

func TestInput(t *testing.T) {
	r := New(site(), fastOptions()).Execute(context.Background(), tc("TC1", testgen.ActionInput, "#nickname", "test input value"))
	assert.True(t, r.Success)
	assert.Equal(t, "The input value was kept", r.ActualResult)
}

func TestInputAndSearchPressesEnter(t *testing.T) {
	d := site()
	r := New(d, fastOptions()).Execute(context.Background(), tc("TC1", testgen.ActionInputAndSearch, "#q", "test search query"))

	assert.True(t, r.Success, r.Error)
	assert.Equal(t, home+"search?q=test+search+query", r.URLAfter)
	assert.Contains(t, d.Calls, "enter")
	assert.Equal(t, home, d.URL())
}

func TestInputAndSearchClicksSubmitButton(t *testing.T) {
	d := site()
	d.Pages[home].Elements[`button[type="submit"]`] = &browsertest.Element{}

	r := New(d, fastOptions()).Execute(context.Background(), tc("TC1", testgen.ActionInputAndSearch, "#q", "shoes"))

	assert.True(t, r.Success)
	assert.Contains(t, d.Calls, `click button[type="submit"]`)
	assert.NotContains(t, d.Calls, "enter")
}

func TestInputAndSearchWithoutNavigation(t *testing.T) {
	d := browsertest.New(home, map[string]*browsertest.Page{
		home: {Title: "サイト内検索", Elements: map[string]*browsertest.Element{"#q": {}}},
	})
	r := New(d, fastOptions()).Execute(context.Background(), tc("TC1", testgen.ActionInputAndSearch, "#q", "x"))
	assert.True(t, r.Success)
	assert.Equal(t, "Search ran", r.ActualResult)

	d.Pages[home].Title = "Home"
	r = New(d, fastOptions()).Execute(context.Background(), tc("TC2", testgen.ActionInputAndSearch, "#q", "x"))
	assert.False(t, r.Success)
}

func TestValidation(t *testing.T) {
	e := New(site(), fastOptions())

	r := e.Execute(context.Background(), tc("TC1", testgen.ActionValidation, "#email", ""))
	assert.True(t, r.Success)
	assert.Equal(t, "Validation error shown: Email is required", r.ActualResult)

	r = New(site(), fastOptions()).Execute(context.Background(), tc("TC2", testgen.ActionValidation, "#nickname", ""))
	assert.False(t, r.Success)
	assert.Equal(t, "No validation error was shown", r.ActualResult)
}

func TestRunContinuesAfterFailures(t *testing.T) {
	d := site()
	var progress bytes.Buffer
	opts := fastOptions()
	opts.Progress = &progress

	results := New(d, opts).Run(context.Background(), []testgen.TestCase{
		tc("TC1", testgen.ActionClick, "#missing", ""),
		tc("TC2", testgen.ActionClick, "#broken", ""),
		tc("TC3", testgen.ActionClick, "#hidden-cta", ""),
		tc("TC4", "hover", "#noop", ""),
		tc("TC5", testgen.ActionClick, "a.about", ""),
	})

	require.Len(t, results, 5)
	assert.Contains(t, results[0].Error, "element not found")
	assert.Equal(t, "element is covered", results[1].Error)
	assert.Contains(t, results[2].Error, "not visible")
	assert.Equal(t, "unknown action: hover", results[3].Error)
	for _, r := range results[:4] {
		assert.False(t, r.Success)
		assert.Equal(t, home, r.URLBefore)
	}
	assert.True(t, results[4].Success)
	assert.Equal(t, "TC5", results[4].TestCaseID)
	assert.Equal(t, "TC5 case", results[4].TestCaseDescription)

	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "  [4/5] hover #noop ✗ (unknown action: hover)", lines[3])
	assert.Equal(t, "  [5/5] click a.about ✓", lines[4])
}

func TestNavigationContractHoldsAcrossRun(t *testing.T) {
	d := site()
	e := New(d, fastOptions())

	for _, c := range []testgen.TestCase{
		tc("TC1", testgen.ActionClick, "a.about", ""),
		tc("TC2", testgen.ActionInputAndSearch, "#q", "q"),
		tc("TC3", testgen.ActionClick, "a.about", ""),
	} {
		r := e.Execute(context.Background(), c)
		require.True(t, r.Success, c.ID)
		assert.Equal(t, r.URLBefore, d.URL(), c.ID)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := New(site(), fastOptions()).Run(ctx, []testgen.TestCase{tc("TC1", testgen.ActionClick, "#noop", "")})
	assert.Empty(t, results)
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, "5s", o.VisibleTimeout.String())
	assert.Equal(t, "10s", o.ClickNavTimeout.String())
	assert.Equal(t, "15s", o.SearchNavTimeout.String())
	assert.Equal(t, "2s", o.ClickSettle.String())
	assert.Equal(t, "3s", o.SearchSettle.String())
	assert.Equal(t, "500ms", o.InputSettle.String())
	assert.Equal(t, "1s", o.ValidationSettle.String())
}
