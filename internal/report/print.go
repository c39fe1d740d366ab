package report

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/executor"
	"github.com/v0xg/pagescout/internal/markup"
	"github.com/v0xg/pagescout/internal/navigator"
	"github.com/v0xg/pagescout/internal/testgen"
	"github.com/v0xg/pagescout/internal/visual"
)

const rule = "--------------------------------------------------"

// Printer renders reports for a terminal. Colors are dropped automatically
// when w is not a TTY.
type Printer struct {
	w io.Writer

	title   lipgloss.Style
	section lipgloss.Style
	ok      lipgloss.Style
	bad     lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		section: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("42")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("196")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

func (p *Printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) heading(s string) {
	p.line("")
	p.line("%s", p.section.Render(s))
	p.line("%s", p.dim.Render(rule))
}

func (p *Printer) header(title string, h Header, file string) {
	p.line("%s", p.title.Render(title))
	p.line("%s", p.dim.Render(strings.Repeat("=", len(rule))))
	p.line("Page title: %s", orNA(h.Title))
	p.line("Target URL: %s", orNA(h.URL))
	p.line("Run at:     %s", h.Timestamp.Local().Format(time.DateTime))
	if h.RunID != "" {
		p.line("Run ID:     %s", h.RunID)
	}
	if file != "" {
		p.line("File:       %s", filepath.Base(file))
	}
}

func (p *Printer) screenshots(paths []string) {
	if len(paths) == 0 {
		return
	}
	p.heading("Screenshots")
	for i, s := range paths {
		p.line("%d. %s", i+1, s)
	}
}

func (p *Printer) outcome(success, failed int) {
	p.line("%s %d", p.ok.Render("Passed:"), success)
	p.line("%s %d", p.bad.Render("Failed:"), failed)
	p.line("Success rate: %d%%", SuccessRate(success, success+failed))
}

func (p *Printer) severity(s visual.Severity) string {
	switch s {
	case visual.SeverityCritical, visual.SeverityHigh:
		return p.bad.Render(string(s))
	case visual.SeverityMedium:
		return p.warn.Render(string(s))
	}
	return p.ok.Render(string(s))
}

func (p *Printer) priority(pr testgen.Priority) string {
	switch pr {
	case testgen.PriorityHigh:
		return p.bad.Render(string(pr))
	case testgen.PriorityMedium:
		return p.warn.Render(string(pr))
	}
	return p.ok.Render(string(pr))
}

// Visual prints a visual issue report.
func (p *Printer) Visual(r *VisualReport, file string) {
	p.header("Visual issue summary", r.Header, file)

	var high, medium, low int
	for _, is := range r.VisualIssues {
		switch {
		case is.Severity.Urgent():
			high++
		case is.Severity == visual.SeverityMedium:
			medium++
		default:
			low++
		}
	}
	p.line("")
	p.line("Issues found: %d", len(r.VisualIssues))
	p.line("  %s %d", p.bad.Render("high:  "), high)
	p.line("  %s %d", p.warn.Render("medium:"), medium)
	p.line("  %s %d", p.ok.Render("low:   "), low)

	p.screenshots(r.Screenshots)

	counts := visual.CountByCategory(r.VisualIssues)
	p.heading("By category")
	for _, c := range visual.Categories {
		p.line("  - %s: %d", c, counts[c])
	}

	if len(r.HighlightedIssues) > 0 {
		p.heading("Highlighted issues (numbered on the screenshot)")
		for _, is := range r.HighlightedIssues {
			p.line("#%d [%s] %s", is.IssueNumber, p.severity(is.Severity), is.Description)
			p.line("   type: %s", is.Type)
			if is.Element != "" {
				p.line("   element: %s", markup.Summarize(is.Element))
			}
			if is.Suggestion != "" {
				p.line("   suggestion: %s", is.Suggestion)
			}
		}
	}

	var urgent []visual.Issue
	for _, is := range r.VisualIssues {
		if is.Severity.Urgent() {
			urgent = append(urgent, is)
		}
	}
	if len(urgent) > 0 {
		p.heading("High priority issues")
		for i, is := range urgent[:min(5, len(urgent))] {
			p.line("%d. [%s] %s", i+1, p.severity(is.Severity), is.Description)
			if is.Suggestion != "" {
				p.line("   suggestion: %s", is.Suggestion)
			}
		}
		if len(urgent) > 5 {
			p.line("   ... and %d more", len(urgent)-5)
		}
	}

	p.heading("Recommended actions")
	for i, rec := range VisualRecommendations(counts) {
		p.line("%d. %s", i+1, rec)
	}
}

// VisualRecommendations lists one fix per category that has issues.
func VisualRecommendations(counts map[visual.Category]int) []string {
	advice := map[visual.Category]string{
		visual.CategoryOverlap:     "Fix overlapping elements (%d): adjust positions or z-index",
		visual.CategoryLayoutShift: "Fix layout shifts (%d): reserve space for images and late content",
		visual.CategoryOverflow:    "Fix overflowing content (%d): constrain widths or allow wrapping",
		visual.CategorySpacing:     "Unify padding and margins (%d)",
		visual.CategoryFont:        "Unify font sizes (%d)",
	}
	var out []string
	for _, c := range visual.Categories {
		if counts[c] > 0 {
			out = append(out, fmt.Sprintf(advice[c], counts[c]))
		}
	}
	if len(out) == 0 {
		out = append(out, "No visual issues found")
	}
	return out
}

// Navigation prints a navigation exploration report.
func (p *Printer) Navigation(r *NavigationReport, file string) {
	p.header("Navigation summary", r.Header, file)

	p.line("")
	p.line("Clickable elements: %d", r.ClickableElements)
	p.line("Input fields:       %d", r.InputFields)
	p.line("Interactions run:   %d", r.NavigationTests)

	var passed, failed []navigator.Result
	for _, res := range r.Results {
		if res.Success {
			passed = append(passed, res)
		} else {
			failed = append(failed, res)
		}
	}
	p.line("")
	p.outcome(len(passed), len(failed))

	if len(passed) > 0 {
		p.heading("Successful interactions")
		for i, res := range passed {
			p.line("%d. %s: %s", i+1, strings.ToUpper(res.ElementType), res.Selector)
			if res.URLAfter != "" && res.URLAfter != res.URLBefore {
				p.line("   url: %s → %s", res.URLBefore, res.URLAfter)
			}
			if res.TitleAfter != "" && res.TitleAfter != res.TitleBefore {
				p.line("   title: %s → %s", res.TitleBefore, res.TitleAfter)
			}
			if res.InputValue != "" {
				p.line("   value: %s", res.InputValue)
			}
			if res.ResponseTime > 0 {
				p.line("   response: %dms", res.ResponseTime)
			}
			if res.ScreenshotPath != "" {
				p.line("   screenshot: %s", res.ScreenshotPath)
			}
		}
	}

	if len(failed) > 0 {
		p.heading("Failed interactions")
		for i, res := range failed {
			p.line("%d. %s: %s", i+1, strings.ToUpper(res.ElementType), res.Selector)
			if res.Error != "" {
				p.line("   %s %s", p.bad.Render("error:"), res.Error)
			}
		}
	}

	if stats := ElementTypeStats(r.Results); len(stats) > 0 {
		p.heading("By element type")
		for _, s := range stats {
			p.line("%s: %d total, %d passed, %d failed (%d%%)",
				strings.ToUpper(s.Type), s.Total, s.Passed, s.Total-s.Passed, SuccessRate(s.Passed, s.Total))
		}
	}

	p.heading("Recommended actions")
	for i, rec := range recommendations(len(passed), len(failed), "interactions") {
		p.line("%d. %s", i+1, rec)
	}

	p.screenshots(r.Screenshots)
}

// TestCases prints a generated test case report.
func (p *Printer) TestCases(r *TestCaseReport, file string) {
	p.header("Generated test case summary", r.Header, file)

	if a := r.PageAnalysis; a != nil {
		p.heading("Page analysis")
		p.line("Elements:    %d", len(a.Elements))
		p.line("Forms:       %d", a.FormCount)
		p.line("Buttons:     %d", a.ButtonCount)
		p.line("Links:       %d", a.LinkCount)
		p.line("Inputs:      %d", a.InputCount)
		p.line("Interactive: %d", len(a.InteractiveElements))
		if a.IsSPA {
			p.line("Single-page application detected")
		}
	}

	p.heading("Generated test cases")
	p.line("Total: %d", len(r.TestCases))
	for _, c := range CountBy(r.TestCases, func(tc testgen.TestCase) string { return string(tc.Category) }) {
		p.line("  %s: %d", c.Key, c.Count)
	}
	p.line("By priority:")
	for _, c := range CountBy(r.TestCases, func(tc testgen.TestCase) string { return string(tc.Priority) }) {
		p.line("  %s: %d", p.priority(testgen.Priority(c.Key)), c.Count)
	}

	var passed, failed []executor.Result
	for _, res := range r.ExecutionResults {
		if res.Success {
			passed = append(passed, res)
		} else {
			failed = append(failed, res)
		}
	}
	p.heading("Execution")
	p.outcome(len(passed), len(failed))
	if t, ok := Timing(r.ExecutionResults); ok {
		p.line("Execution time: avg %dms, min %dms, max %dms", t.Avg, t.Min, t.Max)
	}

	p.heading("Test case details")
	for i, tc := range r.TestCases {
		p.line("%d. [%s] %s", i+1, p.priority(tc.Priority), tc.Description)
		p.line("   action: %s", tc.Action)
		p.line("   element: %s", tc.ElementSelector)
		p.line("   category: %s", tc.Category)
		if tc.InputValue != "" {
			p.line("   value: %s", tc.InputValue)
		}
		if tc.ExpectedResult != "" {
			p.line("   expected: %s", tc.ExpectedResult)
		}
		if tc.Source == testgen.SourceAI {
			p.line("   %s", p.dim.Render("suggested by AI"))
		}
	}

	if len(passed) > 0 {
		p.heading("Passed test cases")
		for i, res := range passed {
			p.line("%d. %s", i+1, res.TestCaseDescription)
			p.line("   time: %dms", res.ExecutionTime)
			if res.ActualResult != "" {
				p.line("   result: %s", res.ActualResult)
			}
			if res.URLAfter != "" && res.URLAfter != res.URLBefore {
				p.line("   url: %s → %s", res.URLBefore, res.URLAfter)
			}
			if res.ScreenshotPath != "" {
				p.line("   screenshot: %s", res.ScreenshotPath)
			}
		}
	}

	if len(failed) > 0 {
		p.heading("Failed test cases")
		for i, res := range failed {
			p.line("%d. %s", i+1, res.TestCaseDescription)
			if res.Error != "" {
				p.line("   %s %s", p.bad.Render("error:"), res.Error)
			} else if res.ActualResult != "" {
				p.line("   result: %s", res.ActualResult)
			}
			p.line("   time: %dms", res.ExecutionTime)
		}
	}

	if len(r.RejectedCases) > 0 {
		p.heading("Rejected AI suggestions")
		for _, reason := range r.RejectedCases {
			p.line("- %s", reason)
		}
	}

	if a := r.PageAnalysis; a != nil && len(a.Elements) > 0 {
		p.heading("Detected elements by tag")
		for _, c := range CountElements(a.Elements) {
			p.line("  %s: %d", c.Key, c.Count)
		}
	}

	if g := r.GeneratedTestCode; g != nil {
		p.heading("Generated test file")
		p.line("%s", g.FilePath)
		p.line("%s", p.dim.Render(g.Description))
	}
	if r.Replay != "" {
		p.line("")
		p.line("Replay: %s", r.Replay)
	}

	p.heading("Recommended actions")
	for i, rec := range recommendations(len(passed), len(failed), "test cases") {
		p.line("%d. %s", i+1, rec)
	}

	p.screenshots(r.Screenshots)
}

func recommendations(passed, failed int, what string) []string {
	var out []string
	if failed > 0 {
		out = append(out, fmt.Sprintf("Fix the failed %s (%d): check selectors, visibility and script errors", what, failed))
	}
	if passed > 0 {
		out = append(out, fmt.Sprintf("Tune the passing %s (%d): response time and usability", what, passed))
	}
	return append(out, "Cover more elements and edge cases")
}

// SuccessRate is passed/total as a rounded percentage, 0 for an empty run.
func SuccessRate(passed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(passed) * 100 / float64(total)))
}

// TimingStats summarizes execution times in milliseconds.
type TimingStats struct {
	Avg, Min, Max int64
}

// Timing is false when there are no results.
func Timing(results []executor.Result) (TimingStats, bool) {
	if len(results) == 0 {
		return TimingStats{}, false
	}
	t := TimingStats{Min: results[0].ExecutionTime, Max: results[0].ExecutionTime}
	var sum int64
	for _, r := range results {
		sum += r.ExecutionTime
		t.Min = min(t.Min, r.ExecutionTime)
		t.Max = max(t.Max, r.ExecutionTime)
	}
	t.Avg = int64(math.Round(float64(sum) / float64(len(results))))
	return t, true
}

// TypeStats is the outcome tally for one element type.
type TypeStats struct {
	Type   string
	Total  int
	Passed int
}

// ElementTypeStats groups navigation results by element type, in order of
// first appearance.
func ElementTypeStats(results []navigator.Result) []TypeStats {
	var out []TypeStats
	index := make(map[string]int)
	for _, r := range results {
		i, ok := index[r.ElementType]
		if !ok {
			i = len(out)
			index[r.ElementType] = i
			out = append(out, TypeStats{Type: r.ElementType})
		}
		out[i].Total++
		if r.Success {
			out[i].Passed++
		}
	}
	return out
}

// Count is one bucket of a tally.
type Count struct {
	Key   string
	Count int
}

// CountBy tallies test cases by key, sorted by key.
func CountBy(cases []testgen.TestCase, key func(testgen.TestCase) string) []Count {
	m := make(map[string]int)
	for _, tc := range cases {
		m[key(tc)]++
	}
	return sortedCounts(m)
}

// CountElements tallies detected elements by tag name.
func CountElements(elements []crawler.PageElement) []Count {
	m := make(map[string]int)
	for _, e := range elements {
		m[e.TagName]++
	}
	return sortedCounts(m)
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
