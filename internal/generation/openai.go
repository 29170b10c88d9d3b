package generation

import (
	"context"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/fairyhunter13/product-description-generator/internal/config"
	"github.com/fairyhunter13/product-description-generator/internal/model"
)

// OpenAICompleter talks to an OpenAI compatible chat completions endpoint.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter builds a completer from configuration. The base URL is
// used verbatim; a blank one makes every call fail.
func NewOpenAICompleter(cfg config.Generation) *OpenAICompleter {
	c := openai.DefaultConfig(cfg.APIKey)
	c.BaseURL = cfg.BaseURL
	return &OpenAICompleter{client: openai.NewClientWithConfig(c), model: cfg.Model}
}

// Complete requests a single completion and returns the first choice's content.
func (o *OpenAICompleter) Complete(ctx context.Context, req model.GenerationRequest, seed string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		N:     1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.StylePrompt},
			{Role: openai.ChatMessageRoleUser, Content: seed},
		},
	})
	if err != nil {
		return "", errors.Wrapf(err, "chat completion for %q", req.Title)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
