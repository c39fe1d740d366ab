package testgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/v0xg/pagescout/internal/crawler"
)

// Per-bucket limits, applied in generation order.
const (
	maxSearchInputs  = 2
	maxSearchButtons = 1
	maxNavLinks      = 3
	maxFormInputs    = 3
	maxButtons       = 3
	maxValidations   = 2
)

const searchQuery = "test search query"

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

type bucket struct {
	limit  int
	match  func(crawler.PageElement) bool
	action Action
	build  func(crawler.PageElement) TestCase
}

// Generate derives test cases from the analysis. Output depends only on the
// element list and its order.
func Generate(a *crawler.PageAnalysis) []TestCase {
	if a == nil {
		return nil
	}

	buckets := []bucket{
		{maxSearchInputs, isSearchInput, ActionInputAndSearch, func(el crawler.PageElement) TestCase {
			name := firstNonEmpty(el.Placeholder, el.AriaLabel, "search")
			return TestCase{
				Description:    fmt.Sprintf("Search test: %q (%s)", name, selectorInfo(el)),
				InputValue:     searchQuery,
				ExpectedResult: "Search results are shown",
				Priority:       PriorityHigh,
				Category:       CategoryInput,
			}
		}},
		{maxSearchButtons, isSearchButton, ActionClick, func(el crawler.PageElement) TestCase {
			name := firstNonEmpty(el.Text, el.Value, el.AriaLabel, "search button")
			return TestCase{
				Description:    fmt.Sprintf("Search button test: %q (%s)", name, selectorInfo(el)),
				ExpectedResult: "A search is performed",
				Priority:       PriorityHigh,
				Category:       CategoryInput,
			}
		}},
		{maxNavLinks, isNavigationLink, ActionClick, func(el crawler.PageElement) TestCase {
			name := firstNonEmpty(el.Text, el.AriaLabel, "link")
			return TestCase{
				Description:    fmt.Sprintf("Navigation link test: %q (%s)", name, selectorInfo(el)),
				ExpectedResult: "A new page is loaded",
				Priority:       PriorityHigh,
				Category:       CategoryNavigation,
			}
		}},
		{maxFormInputs, isFormInput, ActionInput, func(el crawler.PageElement) TestCase {
			name := firstNonEmpty(el.Placeholder, el.AriaLabel, el.Type)
			return TestCase{
				Description:    fmt.Sprintf("Form input test: %q (%s)", name, selectorInfo(el)),
				InputValue:     TestValue(el.Type, el.Placeholder),
				ExpectedResult: "The input value is reflected",
				Priority:       PriorityMedium,
				Category:       CategoryInput,
			}
		}},
		{maxButtons, isButton, ActionClick, func(el crawler.PageElement) TestCase {
			name := firstNonEmpty(el.Text, el.AriaLabel, el.Placeholder, "button")
			return TestCase{
				Description:    fmt.Sprintf("Button click test: %q (%s)", name, selectorInfo(el)),
				ExpectedResult: "The button responds",
				Priority:       PriorityHigh,
				Category:       CategoryInteraction,
			}
		}},
		{maxValidations, isRequiredInput, ActionValidation, func(el crawler.PageElement) TestCase {
			name := firstNonEmpty(el.Placeholder, el.AriaLabel, el.Type)
			return TestCase{
				Description:    fmt.Sprintf("Required field validation test: %q (%s)", name, selectorInfo(el)),
				ExpectedResult: "A required-field error message is shown",
				Priority:       PriorityMedium,
				Category:       CategoryValidation,
			}
		}},
	}

	var out []TestCase
	for _, b := range buckets {
		n := 0
		for _, el := range a.Elements {
			if n == b.limit {
				break
			}
			if !b.match(el) {
				continue
			}
			tc := b.build(el)
			tc.ID = fmt.Sprintf("TC%d", len(out)+1)
			tc.ElementSelector = el.Selector
			tc.Action = b.action
			tc.Source = SourceHeuristic
			out = append(out, tc)
			n++
		}
	}
	return out
}

func containsSearch(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "search") || strings.Contains(s, "検索")
}

func isSearchInput(el crawler.PageElement) bool {
	if el.TagName != "input" && el.TagName != "textarea" {
		return false
	}
	if el.Type == "search" {
		return true
	}
	id, _ := el.Attr("id")
	if containsSearch(el.Placeholder) || containsSearch(el.AriaLabel) || containsSearch(id) {
		return true
	}
	name, _ := el.Attr("name")
	name = strings.ToLower(name)
	return name == "q" || name == "query" || strings.Contains(name, "search")
}

func isSearchButton(el crawler.PageElement) bool {
	switch el.TagName {
	case "button":
	case "input":
		switch el.Type {
		case "submit", "button", "image", "reset":
		default:
			return false
		}
	default:
		return false
	}
	return el.Type == "submit" || containsSearch(el.Text) || containsSearch(el.AriaLabel) || containsSearch(el.Value)
}

func isNavigationLink(el crawler.PageElement) bool {
	return el.TagName == "a" && el.Href != "" &&
		!strings.HasPrefix(el.Href, "#") && !strings.HasPrefix(el.Href, "javascript:")
}

func isFormInput(el crawler.PageElement) bool {
	if el.TagName != "input" {
		return false
	}
	switch el.Type {
	case "text", "email", "password", "tel", "url":
		return true
	}
	return false
}

func isButton(el crawler.PageElement) bool {
	return el.TagName == "button" || el.Type == "submit" || el.Type == "button" || el.Role == "button"
}

// isRequiredInput treats the boolean attribute as set whenever it is
// present, whatever its value.
func isRequiredInput(el crawler.PageElement) bool {
	_, ok := el.Attr("required")
	return el.TagName == "input" && ok
}

// TestValue picks a plausible value for a field. Placeholder hints win over
// the declared type.
func TestValue(fieldType, placeholder string) string {
	p := strings.ToLower(placeholder)
	switch {
	case strings.Contains(p, "email"):
		return "test@example.com"
	case strings.Contains(p, "password"):
		return "testpassword123"
	case strings.Contains(p, "tel") || fieldType == "tel":
		return "090-1234-5678"
	case strings.Contains(p, "url") || fieldType == "url":
		return "https://example.com"
	case fieldType == "email":
		return "test@example.com"
	case fieldType == "password":
		return "testpassword123"
	}
	return "test input value"
}

func selectorInfo(el crawler.PageElement) string {
	return nonAlnum.ReplaceAllString(el.Selector, "-")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
