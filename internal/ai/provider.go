// Package ai asks a language model for test cases beyond the heuristic set.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/testgen"
)

// Provider defines the interface for AI test-case generation
type Provider interface {
	// GenerateTestCases proposes test cases for the page. existing lists
	// what the heuristic generator already covers.
	GenerateTestCases(ctx context.Context, a *crawler.PageAnalysis, existing []testgen.TestCase) ([]testgen.TestCase, error)
}

const (
	maxReplyTokens = 2048
	maxRetries     = 2
	// Low so that repeated runs over the same page propose similar cases.
	temperature = 0.2
)

// errTruncated is returned when the reply hit the token limit, which
// leaves the JSON array unterminated.
var errTruncated = errors.New("reply truncated at the token limit")

// apiKey returns the first non-empty environment variable in names.
func apiKey(names ...string) (string, error) {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s environment variable required", strings.Join(names, " or "))
}

// completer sends one system+user exchange and returns the text reply.
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
	name() string
}

// NewProvider creates a new AI provider based on the provider name
func NewProvider(name, model string) (Provider, error) {
	switch name {
	case "claude", "anthropic":
		return NewClaudeProvider(model)
	case "openai", "gpt":
		return NewOpenAIProvider(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}

func generate(ctx context.Context, c completer, a *crawler.PageAnalysis, existing []testgen.TestCase) ([]testgen.TestCase, error) {
	userPrompt, err := buildUserPrompt(a, existing)
	if err != nil {
		return nil, err
	}

	responseText, err := c.complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", c.name(), err)
	}
	if strings.TrimSpace(responseText) == "" {
		return nil, fmt.Errorf("empty response from %s", c.name())
	}

	cases, err := parseTestCasesJSON(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s response as JSON: %w\nResponse: %s", c.name(), err, responseText)
	}
	return cases, nil
}

// parseTestCasesJSON extracts and parses a JSON array from a response that
// may contain surrounding text or a markdown fence.
func parseTestCasesJSON(response string) ([]testgen.TestCase, error) {
	var cases []testgen.TestCase
	if err := json.Unmarshal([]byte(response), &cases); err == nil {
		return cases, nil
	}

	start := strings.Index(response, "[")
	if start == -1 {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	// Find matching closing bracket, skipping brackets inside strings.
	depth := 0
	end := -1
	inString, escaped := false, false
	for i := start; i < len(response) && end == -1; i++ {
		ch := response[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '[':
			depth++
		case ch == ']':
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
	}

	if end == -1 {
		return nil, fmt.Errorf("no matching closing bracket found")
	}

	if err := json.Unmarshal([]byte(response[start:end]), &cases); err != nil {
		return nil, fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return cases, nil
}
