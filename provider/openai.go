package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI implements Provider over the OpenAI chat completions API,
// requesting JSON-object output (grounded on llm.AzureOpenAILLM's
// ChatWithFormat/json_object handling).
type OpenAI struct {
	client *openai.Client
	logger *slog.Logger
}

// OpenAIOption configures an OpenAI provider.
type OpenAIOption func(*OpenAI)

// WithOpenAILogger sets the provider's logger.
func WithOpenAILogger(logger *slog.Logger) OpenAIOption {
	return func(o *OpenAI) {
		o.logger = logger
	}
}

// NewOpenAI creates an OpenAI provider. If apiKey is empty, it is read from
// OPENAI_API_KEY.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	o := &OpenAI{
		client: openai.NewClient(apiKey),
		logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateStructured implements Provider.
func (o *OpenAI) GenerateStructured(ctx context.Context, req Request) (Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	o.logger.Info("generate_structured", "model", req.Model, "input_len", len(req.Input))

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.Instructions},
		{Role: openai.ChatMessageRoleUser, Content: req.Input},
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		o.logger.Error("generate_structured failed", "error", err)
		return Response{}, fmt.Errorf("openai generate_structured: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("openai generate_structured: no choices returned")
	}

	return Response{
		OutputText: resp.Choices[0].Message.Content,
		Usage: &Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

var _ Provider = (*OpenAI)(nil)
