// Package testgen synthesizes test cases from a page analysis.
package testgen

import "fmt"

// Action is what the executor does with a test case's element.
type Action string

const (
	ActionClick          Action = "click"
	ActionInput          Action = "input"
	ActionInputAndSearch Action = "input_and_search"
	ActionValidation     Action = "validation"
)

func (a Action) Valid() bool {
	switch a {
	case ActionClick, ActionInput, ActionInputAndSearch, ActionValidation:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Category string

const (
	CategoryNavigation  Category = "navigation"
	CategoryInput       Category = "input"
	CategoryInteraction Category = "interaction"
	CategoryValidation  Category = "validation"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryNavigation, CategoryInput, CategoryInteraction, CategoryValidation}

func (c Category) Valid() bool {
	switch c {
	case CategoryNavigation, CategoryInput, CategoryInteraction, CategoryValidation:
		return true
	}
	return false
}

// Source records which generator produced a test case.
type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceAI        Source = "ai"
)

// TestCase is one synthesized interaction with its expected outcome.
type TestCase struct {
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	ElementSelector string   `json:"elementSelector"`
	Action          Action   `json:"action"`
	InputValue      string   `json:"inputValue,omitempty"`
	ExpectedResult  string   `json:"expectedResult,omitempty"`
	Priority        Priority `json:"priority"`
	Category        Category `json:"category"`
	Dependencies    []string `json:"dependencies,omitempty"`
	Source          Source   `json:"source,omitempty"`
}

// Validate rejects test cases the executor cannot run.
func (tc TestCase) Validate() error {
	if tc.ElementSelector == "" {
		return fmt.Errorf("test case %q: empty selector", tc.ID)
	}
	if !tc.Action.Valid() {
		return fmt.Errorf("test case %q: unknown action %q", tc.ID, tc.Action)
	}
	if !tc.Priority.Valid() {
		return fmt.Errorf("test case %q: unknown priority %q", tc.ID, tc.Priority)
	}
	if !tc.Category.Valid() {
		return fmt.Errorf("test case %q: unknown category %q", tc.ID, tc.Category)
	}
	return nil
}

// CategoryCaps is the most test cases of each category one page can yield.
var CategoryCaps = map[Category]int{
	CategoryInput:       6, // 2 search inputs, 1 search button, 3 form inputs
	CategoryNavigation:  3,
	CategoryInteraction: 3,
	CategoryValidation:  2,
}
