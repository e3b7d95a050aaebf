package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/service"
)

func TestImageService_Generate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drug := f.repos.Drug.Add("Tylenol", "Relieves fever")

	img, err := f.svc.Image.Generate(ctx, drug.ID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if img.MimeType != "image/png" || img.Base64 == "" {
		t.Errorf("unexpected image %+v", img)
	}
	if len(f.images.Prompts) != 1 || !strings.Contains(f.images.Prompts[0], "Main effect: Relieves fever") {
		t.Errorf("Expected prompt built from effect text, got %v", f.images.Prompts)
	}

	if _, err := f.svc.Summary.Get(ctx, drug.ID); err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if _, err := f.svc.Image.Generate(ctx, drug.ID); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	prompt := f.images.Prompts[1]
	if !strings.Contains(prompt, "Main effect: Relieves fever and mild pain.") {
		t.Error("Expected prompt to use the stored summary")
	}
	if !strings.Contains(prompt, "Cautions: Do not exceed 4g a day, Avoid alcohol\n") {
		t.Errorf("Expected the first two cautions, got %q", prompt)
	}
}

func TestImageService_Generate_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Image.Generate(ctx, 42); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if len(f.images.Prompts) != 0 {
		t.Error("Generator must not be called for an unknown drug")
	}

	drug := f.repos.Drug.Add("Drug", "effect")
	f.images.ImageFunc = func(ctx context.Context, prompt string) (*models.GeneratedImage, error) {
		return nil, errors.New("content policy violation")
	}
	_, err := f.svc.Image.Generate(ctx, drug.ID)
	var genErr *service.GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != service.GenerationUpstream {
		t.Errorf("Expected upstream GenerationError, got %v", err)
	}
}

func TestInfographicPrompt_Fallbacks(t *testing.T) {
	long := strings.Repeat("가", 300)
	prompt := service.InfographicPrompt(&models.Drug{Name: "X", Effect: long}, nil)

	if !strings.Contains(prompt, "Main effect: "+strings.Repeat("가", 100)+"\n") {
		t.Error("Expected main effect truncated to 100 runes")
	}
	if !strings.Contains(prompt, "Details: "+strings.Repeat("가", 200)+"\n") {
		t.Error("Expected details truncated to 200 runes")
	}
	if !strings.Contains(prompt, "Cautions: Standard precautions") {
		t.Error("Expected default cautions")
	}

	empty := service.InfographicPrompt(&models.Drug{Name: "Y"}, nil)
	if !strings.Contains(empty, "Main effect: Symptom relief") || !strings.Contains(empty, "Details: General symptom relief") {
		t.Errorf("Expected placeholders for empty effect, got %q", empty)
	}
}
