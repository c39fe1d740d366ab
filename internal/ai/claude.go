package ai

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/testgen"
)

// ClaudeProvider proposes test cases through the Anthropic Messages API.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
}

func NewClaudeProvider(model string) (*ClaudeProvider, error) {
	key, err := apiKey("PAGESCOUT_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}

	client := anthropic.NewClient(option.WithAPIKey(key), option.WithMaxRetries(maxRetries))
	return &ClaudeProvider{client: &client, model: model}, nil
}

func (p *ClaudeProvider) GenerateTestCases(ctx context.Context, a *crawler.PageAnalysis, existing []testgen.TestCase) ([]testgen.TestCase, error) {
	return generate(ctx, p, a, existing)
}

func (p *ClaudeProvider) name() string { return "Claude" }

func (p *ClaudeProvider) complete(ctx context.Context, system, user string) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   maxReplyTokens,
		Temperature: anthropic.Float(temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", err
	}
	if msg.StopReason == anthropic.StopReasonMaxTokens {
		return "", errTruncated
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
