package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// DefaultBedrockMaxTokens bounds a Converse call's generated output when the
// request doesn't otherwise size it.
const DefaultBedrockMaxTokens = 1024

// Bedrock implements Provider over AWS Bedrock's Converse API (grounded on
// llm.BedrockLLM's Chat/Converse wiring).
type Bedrock struct {
	client      *bedrockruntime.Client
	region      string
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// BedrockOption configures a Bedrock provider.
type BedrockOption func(*Bedrock)

// WithBedrockRegion sets the AWS region.
func WithBedrockRegion(region string) BedrockOption {
	return func(b *Bedrock) { b.region = region }
}

// WithBedrockMaxTokens sets the max output tokens per call.
func WithBedrockMaxTokens(maxTokens int) BedrockOption {
	return func(b *Bedrock) { b.maxTokens = maxTokens }
}

// WithBedrockClient injects a pre-built client (for testing).
func WithBedrockClient(client *bedrockruntime.Client) BedrockOption {
	return func(b *Bedrock) { b.client = client }
}

// NewBedrock creates a Bedrock provider, loading AWS credentials/region from
// the default SDK chain unless overridden.
func NewBedrock(opts ...BedrockOption) *Bedrock {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	b := &Bedrock{
		region:      region,
		maxTokens:   DefaultBedrockMaxTokens,
		temperature: 0.1,
		logger:      slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.client == nil {
		cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(b.region))
		if err == nil {
			b.client = bedrockruntime.NewFromConfig(cfg)
		}
	}
	return b
}

// GenerateStructured implements Provider by issuing a single Converse call
// with the schema instructions folded into the system prompt (Bedrock's
// Converse API has no first-class JSON-schema response mode).
func (b *Bedrock) GenerateStructured(ctx context.Context, req Request) (Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	b.logger.Info("generate_structured", "model", req.Model, "input_len", len(req.Input))

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(req.Model),
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.Input}},
			},
		},
		System: []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: req.Instructions}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(b.maxTokens)),
			Temperature: aws.Float32(b.temperature),
		},
	}

	resp, err := b.client.Converse(ctx, input)
	if err != nil {
		b.logger.Error("generate_structured failed", "error", err)
		return Response{}, fmt.Errorf("bedrock generate_structured: %w", err)
	}

	text := extractText(resp)
	out := Response{OutputText: text}
	if resp.Usage != nil {
		out.Usage = &Usage{
			InputTokens:  int(aws.ToInt32(resp.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(resp.Usage.OutputTokens)),
		}
	}
	return out, nil
}

func extractText(resp *bedrockruntime.ConverseOutput) string {
	member, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var text string
	for _, block := range member.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			text += tb.Value
		}
	}
	return text
}

var _ Provider = (*Bedrock)(nil)
