package llm

import (
	"context"
	"errors"

	"github.com/mediguide-api/internal/config"
	"github.com/mediguide-api/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const providerOpenAI = "openai"

// OpenAIClient talks to an OpenAI-compatible endpoint for both chat completions and images
type OpenAIClient struct {
	client     openai.Client
	model      string
	imageModel string
}

// NewOpenAI creates a client from config. Retries are disabled so the
// caller's deadline bounds the whole call.
func NewOpenAI(cfg *config.AIConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}
}

// Model returns the chat model name
func (c *OpenAIClient) Model() string { return c.model }

// GenerateJSON runs a chat completion in JSON object mode and returns the raw message content
func (c *OpenAIClient) GenerateJSON(ctx context.Context, instruction, input string) ([]byte, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(input),
		},
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}
	return []byte(completion.Choices[0].Message.Content), nil
}

// GenerateImage renders one 1024x1024 image and returns it base64 encoded
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (*models.GeneratedImage, error) {
	params := openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(c.imageModel),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	}

	resp, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrEmptyResponse
	}
	return &models.GeneratedImage{MimeType: "image/png", Base64: resp.Data[0].B64JSON}, nil
}

func wrapOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{Provider: providerOpenAI, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &UpstreamError{Provider: providerOpenAI, Err: err}
}
