// Package report persists run results as JSON and prints them back as
// styled summaries.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/executor"
	"github.com/v0xg/pagescout/internal/navigator"
	"github.com/v0xg/pagescout/internal/testgen"
	"github.com/v0xg/pagescout/internal/visual"
)

// Kind identifies a report family by its file name prefix.
type Kind string

const (
	KindVisual     Kind = "visual-issues"
	KindNavigation Kind = "navigation-results"
	KindTestCases  Kind = "ai-test-case-results"
)

// ParseKind maps the CLI names visual, navigation and testcases to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "visual":
		return KindVisual, nil
	case "navigation":
		return KindNavigation, nil
	case "testcases", "test-cases":
		return KindTestCases, nil
	}
	return "", fmt.Errorf("unknown report kind %q (want visual, navigation or testcases)", s)
}

// FileName is the report file name for a run at t.
func (k Kind) FileName(t time.Time) string {
	return fmt.Sprintf("%s-%s.json", k, Timestamp(t))
}

// Matches reports whether name is a report file of this kind.
func (k Kind) Matches(name string) bool {
	return strings.HasPrefix(name, string(k)+"-") && strings.HasSuffix(name, ".json")
}

// Visual reports are picked by modification time, the others by name.
func (k Kind) byModTime() bool {
	return k == KindVisual
}

// Timestamp formats t in local time as YYYYMMDDhhmmssSSS.
func Timestamp(t time.Time) string {
	t = t.Local()
	return fmt.Sprintf("%s%03d", t.Format("20060102150405"), t.Nanosecond()/int(time.Millisecond))
}

// Header is shared by every report.
type Header struct {
	RunID       string    `json:"runId"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Timestamp   time.Time `json:"timestamp"`
	Screenshots []string  `json:"screenshots"`
}

// NewHeader stamps a new run with a random ID.
func NewHeader(url, title string, now time.Time) Header {
	return Header{
		RunID:       uuid.NewString(),
		URL:         url,
		Title:       title,
		Timestamp:   now,
		Screenshots: []string{},
	}
}

type VisualReport struct {
	Header
	VisualIssues      []visual.Issue            `json:"visualIssues"`
	HighlightedIssues []visual.HighlightedIssue `json:"highlightedIssues"`
}

type NavigationReport struct {
	Header
	ClickableElements int                `json:"clickableElements"`
	InputFields       int                `json:"inputFields"`
	NavigationTests   int                `json:"navigationTests"`
	Results           []navigator.Result `json:"results"`
}

// GeneratedCode points at the test file written for a run.
type GeneratedCode struct {
	FileName    string `json:"fileName"`
	FilePath    string `json:"filePath"`
	Description string `json:"description"`
}

type TestCaseReport struct {
	Header
	PageAnalysis      *crawler.PageAnalysis `json:"pageAnalysis"`
	TestCases         []testgen.TestCase    `json:"testCases"`
	ExecutionResults  []executor.Result     `json:"executionResults"`
	GeneratedTestCode *GeneratedCode        `json:"generatedTestCode,omitempty"`
	RejectedCases     []string              `json:"rejectedCases,omitempty"`
	Replay            string                `json:"replay,omitempty"`
}
