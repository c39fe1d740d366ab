package codegen

// fileSource is formatted with go/format after rendering, so indentation
// here only needs to be valid.
const fileSource = `//go:build exploration

// Code generated by pagescout. DO NOT EDIT.

package generated

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
)

const (
	pageTitle  = {{quote .Title}}
	pageURL    = {{quote .URL}}
	resultsDir = "./outputs"

	errorMessageSelector = ` + "`" + `[class*="error"], [class*="invalid"], .error-message, .validation-error` + "`" + `
	searchSubmitSelector = ` + "`" + `input[type="submit"], button[type="submit"]` + "`" + `
)

// openPage loads EXPLORATION_TEST_TARGET_URL in a fresh browser.
func openPage(t *testing.T) *rod.Page {
	t.Helper()
	target := os.Getenv("EXPLORATION_TEST_TARGET_URL")
	if target == "" {
		t.Skip("EXPLORATION_TEST_TARGET_URL is not set")
	}

	browser := rod.New().Timeout(2 * time.Minute).MustConnect()
	t.Cleanup(browser.MustClose)

	page := browser.MustPage()
	if user := os.Getenv("EXPLORATION_BASIC_AUTH_USERNAME"); user != "" {
		token := base64.StdEncoding.EncodeToString([]byte(user + ":" + os.Getenv("EXPLORATION_BASIC_AUTH_PASSWORD")))
		page.MustSetExtraHeaders("Authorization", "Basic "+token)
	}
	page.MustNavigate(target).MustWaitLoad()
	return page
}

func takeScreenshot(page *rod.Page, name string) string {
	dir := filepath.Join(resultsDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		panic(err)
	}
	path := filepath.Join(dir, fmt.Sprintf("ai-generated-%s-%s.png", name, time.Now().Format("20060102150405")))
	page.MustScreenshotFullPage(path)
	return path
}

func waitForElement(page *rod.Page, selector string, timeout time.Duration) *rod.Element {
	el, err := page.Timeout(timeout).Element(selector)
	if err != nil {
		panic(fmt.Errorf("element not found: %s", selector))
	}
	return el.CancelTimeout().MustWaitVisible()
}

func fill(el *rod.Element, value string) {
	el.MustSelectAllText().MustInput(value)
}

// submitSearch clicks the page's submit control, or presses Enter in el.
func submitSearch(page *rod.Page, el *rod.Element) {
	if button, err := page.Sleeper(rod.NotFoundSleeper).Element(searchSubmitSelector); err == nil {
		button.MustClick()
		return
	}
	el.MustType(input.Enter)
}

func looksLikeSearch(url, title, query string) bool {
	return strings.Contains(strings.ToLower(url), "search") ||
		strings.Contains(title, "検索") || strings.Contains(title, query)
}

func errorMessages(page *rod.Page) []string {
	var messages []string
	for _, el := range page.MustElements(errorMessageSelector) {
		if text := strings.TrimSpace(el.MustText()); text != "" {
			messages = append(messages, text)
		}
	}
	return messages
}

func check(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Errorf(format, args...))
	}
}

func logTestResult(t *testing.T, name string, success bool, details string) {
	t.Helper()
	status := "✓"
	if !success {
		status = "✗"
	}
	t.Logf("%s %s", status, name)
	if details != "" {
		t.Logf("   %s", details)
	}
}

func TestInitialPageLoad(t *testing.T) {
	page := openPage(t)
	t.Logf("page title: %s", pageTitle)
	t.Logf("target url: %s", pageURL)

	title := page.MustInfo().Title
	if title == "" {
		t.Fatal("page has no title")
	}
	t.Logf("title: %s", title)
	t.Logf("screenshot: %s", takeScreenshot(page, "initial-page-load"))
}
{{range .Cases}}
// {{funcName .Name}}: {{oneLine .Description}}
func {{funcName .Name}}(t *testing.T) {
	const (
		description = {{quote .Description}}
		selector    = {{quote .Selector}}
	)
	page := openPage(t)

	err := rod.Try(func() {
		el := waitForElement(page, selector, 10*time.Second)
{{- if eq .Action "click"}}
		before := page.MustInfo()
		el.MustClick()
		time.Sleep(2 * time.Second)
		after := page.MustInfo()
		shot := takeScreenshot(page, {{quote (print "click-test-" (slug .Selector))}})

		check(before.URL != after.URL || before.Title != after.Title, "no page transition after clicking %s", selector)
		t.Logf("   url: %s → %s", before.URL, after.URL)
		t.Logf("   title: %s → %s", before.Title, after.Title)
		t.Logf("   screenshot: %s", shot)
{{- else if eq .Action "input"}}
		value := {{quote (input .InputValue)}}
		fill(el, value)
		time.Sleep(500 * time.Millisecond)

		actual := el.MustProperty("value").Str()
		check(actual == value, "field holds %q, want %q", actual, value)
		t.Logf("   value: %s", actual)
{{- else if eq .Action "input_and_search"}}
		query := {{quote (query .InputValue)}}
		fill(el, query)
		submitSearch(page, el)
		time.Sleep(3 * time.Second)

		after := page.MustInfo()
		shot := takeScreenshot(page, "search-test")
		check(looksLikeSearch(after.URL, after.Title, query), "search for %q did not run", query)
		t.Logf("   query: %s", query)
		t.Logf("   url: %s", after.URL)
		t.Logf("   screenshot: %s", shot)
{{- else if eq .Action "validation"}}
		fill(el, "")
		el.MustBlur()
		time.Sleep(time.Second)

		messages := errorMessages(page)
		check(len(messages) > 0, "no validation error shown for %s", selector)
		for i, msg := range messages {
			t.Logf("      %d. %s", i+1, msg)
		}
{{- else}}
		check(el.MustVisible(), "%s is not visible", selector)
		check(!el.MustProperty("disabled").Bool(), "%s is disabled", selector)
		t.Logf("   element: %s", selector)
{{- end}}
	})
	if err != nil {
		logTestResult(t, description, false, err.Error())
		t.Fatal(err)
	}
	logTestResult(t, description, true, {{quote .ExpectedResult}})
}
{{end}}`
