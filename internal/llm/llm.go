// Package llm wraps the external text and image generation providers
// behind small interfaces used by the service layer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mediguide-api/internal/config"
	"github.com/mediguide-api/internal/models"
)

// TextGenerator produces a JSON document from an instruction and an input text
type TextGenerator interface {
	GenerateJSON(ctx context.Context, instruction, input string) ([]byte, error)
	Model() string
}

// ImageGenerator produces a single inline image from a prompt
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*models.GeneratedImage, error)
}

// ErrEmptyResponse is returned when the provider answered without any content
var ErrEmptyResponse = errors.New("provider returned no content")

// UpstreamError is a non-success answer from a provider
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewTextGenerator builds the text generator selected by cfg.Provider.
// The returned closer releases provider resources and is never nil.
func NewTextGenerator(ctx context.Context, cfg *config.AIConfig) (TextGenerator, io.Closer, error) {
	switch cfg.Provider {
	case "gemini":
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	case "openai", "":
		c := NewOpenAI(cfg)
		return c, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
