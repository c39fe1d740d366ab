// Package codegen renders executed test cases as a standalone go-rod test
// file that can be kept next to a project and rerun by hand.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/v0xg/pagescout/internal/testgen"
)

const (
	defaultExpected = "Works as expected"
	defaultInput    = "test input value"
	defaultQuery    = "test search query"
)

// TestCaseInfo is the slice of a test case the generated file needs.
type TestCaseInfo struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Selector       string `json:"selector"`
	Action         string `json:"action"`
	InputValue     string `json:"inputValue,omitempty"`
	ExpectedResult string `json:"expectedResult"`
}

// GeneratedFile is a rendered test file and the cases it covers.
type GeneratedFile struct {
	FileName    string         `json:"fileName"`
	Code        string         `json:"code"`
	Description string         `json:"description"`
	TestCases   []TestCaseInfo `json:"testCases"`
}

// FromTestCases names cases testCase1, testCase2, ... in order.
func FromTestCases(cases []testgen.TestCase) []TestCaseInfo {
	infos := make([]TestCaseInfo, 0, len(cases))
	for i, tc := range cases {
		expected := tc.ExpectedResult
		if expected == "" {
			expected = defaultExpected
		}
		infos = append(infos, TestCaseInfo{
			Name:           fmt.Sprintf("testCase%d", i+1),
			Description:    tc.Description,
			Selector:       tc.ElementSelector,
			Action:         string(tc.Action),
			InputValue:     tc.InputValue,
			ExpectedResult: expected,
		})
	}
	return infos
}

// Generate renders the test file for a page. now only names the file.
func Generate(title, url string, cases []testgen.TestCase, now time.Time) (*GeneratedFile, error) {
	infos := FromTestCases(cases)

	var buf bytes.Buffer
	err := fileTemplate.Execute(&buf, struct {
		Title, URL string
		Cases      []TestCaseInfo
	}{title, url, infos})
	if err != nil {
		return nil, fmt.Errorf("render test file: %w", err)
	}

	code, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format test file: %w", err)
	}

	return &GeneratedFile{
		FileName:    fmt.Sprintf("ai_generated_%s_test.go", now.Format("20060102150405")),
		Code:        string(code),
		Description: fmt.Sprintf("Generated tests for %s", title),
		TestCases:   infos,
	}, nil
}

// Save writes the file into dir, creating it if needed, and returns the path.
func (f *GeneratedFile) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, f.FileName)
	if err := os.WriteFile(path, []byte(f.Code), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// funcName turns testCase3 into TestCase3.
func funcName(name string) string {
	r := []rune(name)
	if len(r) == 0 {
		return "TestUnnamed"
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// slug keeps ASCII letters and digits and replaces everything else with '-'.
func slug(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '-'
	}, s)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var fileTemplate = template.Must(template.New("file").Funcs(template.FuncMap{
	"quote":    strconv.Quote,
	"funcName": funcName,
	"slug":     slug,
	"input":    func(s string) string { return orDefault(s, defaultInput) },
	"query":    func(s string) string { return orDefault(s, defaultQuery) },
	"oneLine":  func(s string) string { return strings.Join(strings.Fields(s), " ") },
}).Parse(fileSource))
