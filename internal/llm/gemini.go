package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mediguide-api/internal/config"
	"google.golang.org/api/option"
)

const providerGemini = "gemini"

// GeminiClient generates JSON text through the Gemini API
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client from config
func NewGemini(ctx context.Context, cfg *config.AIConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.GeminiModel}, nil
}

// Model returns the model name
func (g *GeminiClient) Model() string { return g.model }

// GenerateJSON asks the model for an application/json response
func (g *GeminiClient) GenerateJSON(ctx context.Context, instruction, input string) ([]byte, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(instruction)},
	}
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(input))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &UpstreamError{Provider: providerGemini, Err: err}
	}

	text := responseText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return []byte(text), nil
}

// Close releases the underlying connection
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
