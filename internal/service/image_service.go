package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mediguide-api/internal/llm"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
	"github.com/rs/zerolog"
)

// imageService is the concrete implementation of ImageService
type imageService struct {
	repos   *repository.Repositories
	images  llm.ImageGenerator
	timeout time.Duration
	log     zerolog.Logger
}

// newImageService creates a new ImageService
func newImageService(repos *repository.Repositories, images llm.ImageGenerator, timeout time.Duration, log zerolog.Logger) *imageService {
	return &imageService{
		repos:   repos,
		images:  images,
		timeout: timeout,
		log:     log.With().Str("service", "image").Logger(),
	}
}

// Generate renders an infographic for the drug. Images are not stored.
func (s *imageService) Generate(ctx context.Context, drugID int64) (*models.GeneratedImage, error) {
	drug, err := s.repos.Drug.GetByID(ctx, drugID)
	if err != nil {
		return nil, fmt.Errorf("failed to load drug: %w", err)
	}
	if drug == nil {
		return nil, ErrNotFound
	}

	summary, err := s.repos.Summary.GetByDrugID(ctx, drugID)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	img, err := s.images.GenerateImage(genCtx, InfographicPrompt(drug, summary))
	if err != nil {
		genErr := classifyGeneration(genCtx, err)
		s.log.Error().Err(err).Int64("drug_id", drugID).Str("kind", string(genErr.Kind)).Msg("Image generation failed")
		return nil, genErr
	}

	s.log.Info().Int64("drug_id", drugID).Dur("elapsed", time.Since(start)).Msg("Image generated")
	return img, nil
}

// InfographicPrompt describes the drug for the image model, preferring the
// stored summary and falling back to the raw effect text.
func InfographicPrompt(drug *models.Drug, summary *models.AISummary) string {
	mainEffect := truncate(drug.Effect, 100)
	cautions := "Standard precautions"
	if summary != nil {
		mainEffect = summary.OneLiner
		if n := len(summary.Cautions); n > 0 {
			cautions = strings.Join(summary.Cautions[:min(n, 2)], ", ")
		}
	}
	if mainEffect == "" {
		mainEffect = "Symptom relief"
	}
	details := truncate(drug.Effect, 200)
	if details == "" {
		details = "General symptom relief"
	}

	return fmt.Sprintf(`Create a medical infographic illustration.

Medicine: %s
Main effect: %s
Details: %s
Cautions: %s

Show a full human body from the front, standing. Add a soft green glow where symptoms are relieved
and a soft red glow where side effects may occur, fading with distance. Use a white or light gray
background, flat clean infographic style, with major organs labeled in Korean. Nothing frightening
or exaggerated.`, drug.Name, mainEffect, details, cautions)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
