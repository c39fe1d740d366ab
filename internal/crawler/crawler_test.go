package crawler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/pagescout/internal/browser/browsertest"
)

func scripted(fn func(js string) (any, error)) *browsertest.Driver {
	d := browsertest.New("https://example.com/", nil)
	d.Eval = func(js string, _ []any) (any, error) { return fn(js) }
	return d
}

func TestAnalyze(t *testing.T) {
	d := scripted(func(js string) (any, error) {
		switch js {
		case analyzeJS:
			return map[string]any{
				"url":   "https://example.com/",
				"title": "Home",
				"elements": []map[string]any{
					{"selector": "#go", "tagName": "button", "type": "submit", "isVisible": true, "isEnabled": true},
					{"selector": "#menu", "tagName": "div", "type": "div", "role": "button", "isVisible": true, "isEnabled": true},
					{"selector": "#note", "tagName": "textarea", "type": "textarea", "isVisible": true, "isEnabled": true},
					{"selector": "#home", "tagName": "a", "type": "a", "href": "/", "isVisible": true, "isEnabled": true,
						"position": map[string]any{"x": 10, "y": 1200, "width": 50, "height": 20}},
				},
				"formCount": 1, "buttonCount": 1, "linkCount": 1, "inputCount": 1,
			}, nil
		case spaJS:
			return true, nil
		}
		return nil, errors.New("unexpected script")
	})

	a, err := Analyze(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, "Home", a.Title)
	assert.True(t, a.IsSPA)
	assert.Len(t, a.Elements, 4)
	assert.Equal(t, 1, a.FormCount)
	assert.Equal(t, 1200.0, a.Elements[3].Position.Y)

	var selectors []string
	for _, el := range a.InteractiveElements {
		selectors = append(selectors, el.Selector)
	}
	assert.Equal(t, []string{"#go", "#menu", "#home"}, selectors)
}

func TestAnalyzeEvalError(t *testing.T) {
	d := scripted(func(string) (any, error) { return nil, errors.New("page crashed") })

	_, err := Analyze(context.Background(), d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page crashed")
}

func TestDetectClickableAndInputs(t *testing.T) {
	d := scripted(func(js string) (any, error) {
		switch js {
		case clickableJS:
			return []map[string]any{
				{"selector": "a.nav", "tagName": "a", "text": "About", "type": "link", "isVisible": true, "isEnabled": true, "href": "https://example.com/about"},
			}, nil
		case inputsJS:
			return []map[string]any{
				{"selector": "#email", "type": "email", "name": "email", "placeholder": "", "isRequired": true, "isVisible": true, "isEnabled": true},
			}, nil
		}
		return nil, errors.New("unexpected script")
	})

	clickables, err := DetectClickable(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, clickables, 1)
	assert.Equal(t, KindLink, clickables[0].Type)
	assert.Equal(t, "https://example.com/about", clickables[0].Href)

	inputs, err := DetectInputs(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.True(t, inputs[0].IsRequired)
}

func TestScriptsShareSelectorHelpers(t *testing.T) {
	for _, js := range []string{analyzeJS, clickableJS, inputsJS} {
		assert.True(t, strings.Contains(js, "function getSelector(el)"))
		// Each node is reported once even when several queries match it.
		assert.True(t, strings.Contains(js, "seen.has(el)"))
	}
}

func TestWaitForInteractive(t *testing.T) {
	calls := 0
	d := scripted(func(string) (any, error) {
		calls++
		if calls < 3 {
			return 0, nil
		}
		return 2, nil
	})
	assert.True(t, WaitForInteractive(context.Background(), d, 5*time.Second))
	assert.Equal(t, 3, calls)

	empty := scripted(func(string) (any, error) { return 0, nil })
	assert.False(t, WaitForInteractive(context.Background(), empty, 300*time.Millisecond))
}
