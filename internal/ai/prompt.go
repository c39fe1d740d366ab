package ai

import (
	"encoding/json"
	"fmt"

	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/testgen"
)

const systemPrompt = `You are an exploratory QA engineer. You receive a summary of the interactive elements on one web page and propose extra test cases that a simple heuristic would miss.

Output a JSON array of test cases. Each test case has:
- "description": short human readable purpose
- "elementSelector": CSS selector taken verbatim from the element list
- "action": one of "click", "input", "input_and_search", "validation"
- "inputValue": value to type (required for input and input_and_search)
- "expectedResult": what should happen if the page works
- "priority": one of "high", "medium", "low"
- "category": one of "navigation", "input", "interaction", "validation"

Guidelines:
- Use only selectors from the provided element list
- "validation" clears a field and expects an error message, so only use it on fields that are required
- "input_and_search" types a query and submits it, so only use it on search fields
- Prefer flows a real user would try first: primary navigation, login or signup fields, obvious call-to-action buttons
- Propose at most 8 test cases

Example output:
[
  {"description": "Open pricing page", "elementSelector": "a.nav-pricing", "action": "click", "expectedResult": "Pricing page loads", "priority": "high", "category": "navigation"},
  {"description": "Type a phone number", "elementSelector": "#phone", "action": "input", "inputValue": "090-1234-5678", "expectedResult": "Value is kept", "priority": "medium", "category": "input"}
]

Respond ONLY with the JSON array, no explanation or markdown.`

// promptElement is the subset of an element the model needs.
type promptElement struct {
	Selector    string `json:"selector"`
	Tag         string `json:"tag"`
	Type        string `json:"type,omitempty"`
	Text        string `json:"text,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	AriaLabel   string `json:"ariaLabel,omitempty"`
	Href        string `json:"href,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

const maxPromptText = 80

func buildUserPrompt(a *crawler.PageAnalysis, existing []testgen.TestCase) (string, error) {
	elements := make([]promptElement, 0, len(a.Elements))
	for _, el := range a.Elements {
		_, required := el.Attr("required")
		text := el.Text
		if r := []rune(text); len(r) > maxPromptText {
			text = string(r[:maxPromptText])
		}
		elements = append(elements, promptElement{
			Selector:    el.Selector,
			Tag:         el.TagName,
			Type:        el.Type,
			Text:        text,
			Placeholder: el.Placeholder,
			AriaLabel:   el.AriaLabel,
			Href:        el.Href,
			Required:    required,
		})
	}
	elementsJSON, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal elements: %w", err)
	}

	covered := make([]string, 0, len(existing))
	for _, tc := range existing {
		covered = append(covered, fmt.Sprintf("%s %s (%s)", tc.Action, tc.ElementSelector, tc.Category))
	}
	coveredJSON, err := json.Marshal(covered)
	if err != nil {
		return "", fmt.Errorf("failed to marshal existing cases: %w", err)
	}

	return fmt.Sprintf("Page: %s\nTitle: %s\n\nElements:\n%s\n\nAlready covered: %s",
		a.URL, a.Title, elementsJSON, coveredJSON), nil
}
