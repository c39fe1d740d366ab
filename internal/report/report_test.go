package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/executor"
	"github.com/v0xg/pagescout/internal/navigator"
	"github.com/v0xg/pagescout/internal/testgen"
	"github.com/v0xg/pagescout/internal/visual"
)

func fixedStore(dir string, at time.Time) *Store {
	s := NewStore(dir)
	s.now = func() time.Time { return at }
	return s
}

func TestTimestamp(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 67*int(time.Millisecond), time.Local)
	assert.Equal(t, "20250102030405067", Timestamp(at))
	assert.Equal(t, "navigation-results-20250102030405067.json", KindNavigation.FileName(at))
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"visual":     KindVisual,
		"Navigation": KindNavigation,
		"testcases":  KindTestCases,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("perf")
	assert.Error(t, err)
}

func TestKindMatches(t *testing.T) {
	assert.True(t, KindVisual.Matches("visual-issues-20250101000000000.json"))
	assert.False(t, KindVisual.Matches("visual-issues-20250101000000000.png"))
	assert.False(t, KindVisual.Matches(".tmp-visual-issues-1.json123"))
	assert.False(t, KindTestCases.Matches("navigation-results-1.json"))
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 5, 6, 7, 8, 9, 0, time.Local)

	in := &NavigationReport{
		Header:            NewHeader("https://example.com/", "Example", at),
		ClickableElements: 4,
		InputFields:       1,
		NavigationTests:   1,
		Results:           []navigator.Result{{ElementType: "link", Selector: "a.next", Action: "click", Success: true}},
	}
	path, err := fixedStore(dir, at).Save(KindNavigation, in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "navigation-results-20250506070809000.json"), path)

	var out NavigationReport
	require.NoError(t, Load(path, &out))
	assert.Equal(t, in.RunID, out.RunID)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "Example", out.Title)
	assert.Equal(t, 4, out.ClickableElements)
	assert.Equal(t, in.Results, out.Results)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"runId"`)
	assert.Contains(t, string(data), `"clickableElements": 4`)
}

func TestSaveFallsBack(t *testing.T) {
	base := t.TempDir()
	blocked := filepath.Join(base, "not-a-dir")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	s := fixedStore(blocked, time.Now())
	s.FallbackDir = filepath.Join(base, "fallback")

	path, err := s.Save(KindVisual, &VisualReport{})
	require.NoError(t, err)
	assert.Equal(t, s.FallbackDir, filepath.Dir(path))
	assert.FileExists(t, path)
}

func TestSaveFailsLoudly(t *testing.T) {
	base := t.TempDir()
	blocked := filepath.Join(base, "not-a-dir")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	s := fixedStore(blocked, time.Now())
	s.FallbackDir = filepath.Join(blocked, "nested")

	_, err := s.Save(KindVisual, &VisualReport{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback")
}

func TestPrepare(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "outputs"))
	require.NoError(t, s.Prepare())
	assert.DirExists(t, s.ScreenshotDir())
	assert.DirExists(t, s.GeneratedDir())
}

func TestLatestByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"navigation-results-20250101000000000.json",
		"navigation-results-20250301000000000.json",
		"navigation-results-20250201000000000.json",
		"visual-issues-20251201000000000.json",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}

	path, err := Latest(dir, KindNavigation)
	require.NoError(t, err)
	assert.Equal(t, "navigation-results-20250301000000000.json", filepath.Base(path))
}

func TestLatestVisualByModTime(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "visual-issues-20250901000000000.json")
	newer := filepath.Join(dir, "visual-issues-20250101000000000.json")
	require.NoError(t, os.WriteFile(older, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("{}"), 0o644))

	now := time.Now()
	require.NoError(t, os.Chtimes(older, now, now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(newer, now, now))

	path, err := Latest(dir, KindVisual)
	require.NoError(t, err)
	assert.Equal(t, newer, path)
}

func TestLatestWithoutReports(t *testing.T) {
	_, err := Latest(t.TempDir(), KindTestCases)
	assert.True(t, errors.Is(err, ErrNoReports))

	_, err = Latest(filepath.Join(t.TempDir(), "missing"), KindTestCases)
	assert.True(t, errors.Is(err, ErrNoReports))
}

func TestWatcherSeesNewReports(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, KindTestCases)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	found := make(chan string, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(path string) { found <- path }) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "visual-issues-1.json"), []byte("{}"), 0o644))
	path, err := fixedStore(dir, time.Now()).Save(KindTestCases, &TestCaseReport{})
	require.NoError(t, err)

	select {
	case got := <-found:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the new file")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestSuccessRateAndTiming(t *testing.T) {
	assert.Equal(t, 0, SuccessRate(0, 0))
	assert.Equal(t, 67, SuccessRate(2, 3))
	assert.Equal(t, 100, SuccessRate(4, 4))

	_, ok := Timing(nil)
	assert.False(t, ok)

	stats, ok := Timing([]executor.Result{{ExecutionTime: 100}, {ExecutionTime: 250}, {ExecutionTime: 40}})
	require.True(t, ok)
	assert.Equal(t, TimingStats{Avg: 130, Min: 40, Max: 250}, stats)
}

func TestElementTypeStats(t *testing.T) {
	stats := ElementTypeStats([]navigator.Result{
		{ElementType: "input", Success: true},
		{ElementType: "link", Success: true},
		{ElementType: "link", Success: false},
		{ElementType: "input", Success: true},
	})
	assert.Equal(t, []TypeStats{
		{Type: "input", Total: 2, Passed: 2},
		{Type: "link", Total: 2, Passed: 1},
	}, stats)
}

func TestVisualRecommendations(t *testing.T) {
	assert.Equal(t, []string{"No visual issues found"}, VisualRecommendations(nil))

	recs := VisualRecommendations(map[visual.Category]int{visual.CategoryFont: 1, visual.CategoryOverlap: 3})
	require.Len(t, recs, 2)
	assert.Contains(t, recs[0], "overlapping elements (3)")
	assert.Contains(t, recs[1], "font sizes (1)")
}

func TestPrintVisual(t *testing.T) {
	var buf bytes.Buffer
	issues := []visual.Issue{
		{Type: "element-overlap", Category: visual.CategoryOverlap, Severity: visual.SeverityHigh, Description: "Elements overlap by 70%", Element: `<div id="promo" class="banner sticky">Sale</div>`},
		{Type: "font-inconsistency", Category: visual.CategoryFont, Severity: visual.SeverityLow, Description: "Font sizes vary"},
	}
	NewPrinter(&buf).Visual(&VisualReport{
		Header:            Header{URL: "https://example.com/", Title: "Example", Screenshots: []string{"shot.png"}},
		VisualIssues:      issues,
		HighlightedIssues: visual.SelectHighlights(issues),
	}, "/out/visual-issues-1.json")

	out := buf.String()
	assert.Contains(t, out, "Issues found: 2")
	assert.Contains(t, out, "visual-issues-1.json")
	assert.Contains(t, out, "- overlap: 1")
	assert.Contains(t, out, "- layout-shift: 0")
	assert.Contains(t, out, "Elements overlap by 70%")
	assert.Contains(t, out, "element: div#promo.banner.sticky")
	assert.Contains(t, out, "1. shot.png")
	assert.Contains(t, out, "Unify font sizes (1)")
}

func TestPrintNavigation(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Navigation(&NavigationReport{
		Header: Header{Title: "Example"},
		Results: []navigator.Result{
			{ElementType: "link", Selector: "a.next", Success: true, URLBefore: "https://a/", URLAfter: "https://a/next"},
			{ElementType: "button", Selector: "#buy", Error: "element not found"},
		},
	}, "")

	out := buf.String()
	assert.Contains(t, out, "Success rate: 50%")
	assert.Contains(t, out, "LINK: a.next")
	assert.Contains(t, out, "url: https://a/ → https://a/next")
	assert.Contains(t, out, "element not found")
	assert.Contains(t, out, "BUTTON: 1 total, 0 passed, 1 failed (0%)")
	assert.Contains(t, out, "Target URL: N/A")
}

func TestPrintTestCases(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).TestCases(&TestCaseReport{
		Header: Header{Title: "Shop"},
		PageAnalysis: &crawler.PageAnalysis{
			Elements:  []crawler.PageElement{{TagName: "a"}, {TagName: "input"}, {TagName: "a"}},
			FormCount: 1,
		},
		TestCases: []testgen.TestCase{
			{ID: "TC1", Description: "Search test", ElementSelector: "#q", Action: testgen.ActionInputAndSearch, Priority: testgen.PriorityHigh, Category: testgen.CategoryInput},
			{ID: "TC2", Description: "Footer link", ElementSelector: "a.f", Action: testgen.ActionClick, Priority: testgen.PriorityLow, Category: testgen.CategoryNavigation, Source: testgen.SourceAI},
		},
		ExecutionResults: []executor.Result{
			{TestCaseID: "TC1", TestCaseDescription: "Search test", Success: true, ExecutionTime: 1200, ActualResult: "Search ran"},
			{TestCaseID: "TC2", TestCaseDescription: "Footer link", ExecutionTime: 800, Error: "element not found"},
		},
		GeneratedTestCode: &GeneratedCode{FilePath: "outputs/generated/ai_generated_1_test.go", Description: "Generated tests for Shop"},
		RejectedCases:     []string{`test case "TC9": empty selector`},
	}, "")

	out := buf.String()
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "input: 1")
	assert.Contains(t, out, "navigation: 1")
	assert.Contains(t, out, "Execution time: avg 1000ms, min 800ms, max 1200ms")
	assert.Contains(t, out, "Success rate: 50%")
	assert.Contains(t, out, "result: Search ran")
	assert.Contains(t, out, "suggested by AI")
	assert.Contains(t, out, "a: 2")
	assert.Contains(t, out, "ai_generated_1_test.go")
	assert.Contains(t, out, "empty selector")
}
