package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mediguide-api/internal/llm"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
	"github.com/rs/zerolog"
)

const (
	symptomInstruction = `You are a medical NLP system. Convert everyday descriptions of how someone feels
into standard medical symptom terms, in the language of the input, as they would appear in a drug's
indications text. Respond with JSON only, in exactly this form: {"symptoms": ["headache"]}`

	maxSymptomResults = 50
)

// drugService is the concrete implementation of DrugService
type drugService struct {
	repos         *repository.Repositories
	text          llm.TextGenerator
	searchTimeout time.Duration
	log           zerolog.Logger
}

// newDrugService creates a new DrugService
func newDrugService(repos *repository.Repositories, text llm.TextGenerator, searchTimeout time.Duration, log zerolog.Logger) *drugService {
	return &drugService{
		repos:         repos,
		text:          text,
		searchTimeout: searchTimeout,
		log:           log.With().Str("service", "drug").Logger(),
	}
}

// List returns every drug matching the name filter with its aggregates, in the requested order
func (s *drugService) List(ctx context.Context, q models.ListQuery) ([]*models.DrugStats, error) {
	order, err := ParseOrder(string(q.Order))
	if err != nil {
		return nil, err
	}

	stats, err := s.repos.Drug.ListStats(ctx, strings.TrimSpace(q.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to list drugs: %w", err)
	}
	if stats == nil {
		stats = make([]*models.DrugStats, 0)
	}

	Rank(stats, order)
	return stats, nil
}

// Detail counts a view and returns the drug with its comments and average rating
func (s *drugService) Detail(ctx context.Context, id int64) (*models.DrugDetail, error) {
	drug, err := s.repos.Drug.IncrementViews(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load drug: %w", err)
	}
	if drug == nil {
		return nil, ErrNotFound
	}

	comments, err := s.repos.Comment.ListByDrug(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	avg, err := s.repos.Comment.AverageRating(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating: %w", err)
	}

	return &models.DrugDetail{Drug: *drug, AvgRating: avg, Comments: comments}, nil
}

// Popular returns the most viewed drugs; limit is clamped to [1, MaxPopularLimit]
func (s *drugService) Popular(ctx context.Context, limit int) ([]*models.Drug, error) {
	if limit <= 0 {
		limit = models.DefaultPopularLimit
	}
	if limit > models.MaxPopularLimit {
		limit = models.MaxPopularLimit
	}

	drugs, err := s.repos.Drug.Popular(ctx, limit)
	if err != nil {
		return nil, err
	}
	if drugs == nil {
		drugs = make([]*models.Drug, 0)
	}
	return drugs, nil
}

// SearchBySymptoms extracts symptom keywords from free text and finds drugs whose effect mentions any of them
func (s *drugService) SearchBySymptoms(ctx context.Context, text string) (*models.SymptomSearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()

	raw, err := s.text.GenerateJSON(genCtx, symptomInstruction, text)
	if err != nil {
		genErr := classifyGeneration(genCtx, err)
		s.log.Warn().Err(err).Str("kind", string(genErr.Kind)).Msg("Symptom extraction failed")
		return nil, genErr
	}

	keywords, err := parseSymptoms(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("Symptom extraction returned malformed JSON")
		return nil, &GenerationError{Kind: GenerationMalformed, Cause: err}
	}

	result := &models.SymptomSearchResult{Keywords: keywords, Drugs: make([]*models.Drug, 0)}
	if len(keywords) == 0 {
		return result, nil
	}

	drugs, err := s.repos.Drug.SearchByEffect(ctx, keywords, maxSymptomResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search drugs: %w", err)
	}
	if drugs != nil {
		result.Drugs = drugs
	}

	s.log.Info().Strs("keywords", keywords).Int("matches", len(result.Drugs)).Msg("Symptom search completed")
	return result, nil
}

// parseSymptoms decodes {"symptoms": [...]} and returns the distinct non-blank keywords
func parseSymptoms(raw []byte) ([]string, error) {
	var payload struct {
		Symptoms *[]string `json:"symptoms"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	if payload.Symptoms == nil {
		return nil, fmt.Errorf("missing symptoms field")
	}

	seen := make(map[string]bool)
	keywords := make([]string, 0, len(*payload.Symptoms))
	for _, kw := range *payload.Symptoms {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[strings.ToLower(kw)] {
			continue
		}
		seen[strings.ToLower(kw)] = true
		keywords = append(keywords, kw)
	}
	return keywords, nil
}
