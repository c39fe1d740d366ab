package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/v0xg/pagescout/internal/crawler"
	"github.com/v0xg/pagescout/internal/testgen"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIProvider proposes test cases through the chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(model string) (*OpenAIProvider, error) {
	key, err := apiKey("PAGESCOUT_OPENAI_KEY", "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{client: openai.NewClient(key), model: model}, nil
}

func (p *OpenAIProvider) GenerateTestCases(ctx context.Context, a *crawler.PageAnalysis, existing []testgen.TestCase) ([]testgen.TestCase, error) {
	return generate(ctx, p, a, existing)
}

func (p *OpenAIProvider) name() string { return "OpenAI" }

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   maxReplyTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err = p.client.CreateChatCompletion(ctx, req)
		if err == nil || !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return "", errTruncated
	}
	return choice.Message.Content, nil
}

// retryable reports whether the API rejected the request for a reason
// that may clear up on its own.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	return false
}
