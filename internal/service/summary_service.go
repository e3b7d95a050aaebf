package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mediguide-api/internal/llm"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
	"github.com/rs/zerolog"
)

const summaryInstruction = `You explain medicines to patients in plain Korean.
Respond with a single JSON object and nothing else. It must have exactly these keys:
{
  "one_liner": "",
  "easy_explain": "",
  "key_points": [],
  "cautions": [],
  "when_to_see_doctor": []
}
one_liner and easy_explain are strings; the other three are arrays of strings.`

// summaryService is the concrete implementation of SummaryService
type summaryService struct {
	repos   *repository.Repositories
	text    llm.TextGenerator
	timeout time.Duration
	log     zerolog.Logger
}

// newSummaryService creates a new SummaryService
func newSummaryService(repos *repository.Repositories, text llm.TextGenerator, timeout time.Duration, log zerolog.Logger) *summaryService {
	return &summaryService{
		repos:   repos,
		text:    text,
		timeout: timeout,
		log:     log.With().Str("service", "summary").Logger(),
	}
}

// Get returns the drug's stored summary, generating and storing it on first access.
// Generation failures store nothing, so the next call tries again.
func (s *summaryService) Get(ctx context.Context, drugID int64) (*models.SummaryResponse, error) {
	drug, err := s.repos.Drug.GetByID(ctx, drugID)
	if err != nil {
		return nil, fmt.Errorf("failed to load drug: %w", err)
	}
	if drug == nil {
		return nil, ErrNotFound
	}

	cached, err := s.repos.Summary.GetByDrugID(ctx, drugID)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	if cached != nil {
		return &models.SummaryResponse{AISummary: cached, Cached: true}, nil
	}

	log := s.log.With().Int64("drug_id", drugID).Logger()
	start := time.Now()

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.text.GenerateJSON(genCtx, summaryInstruction, drugContext(drug))
	if err != nil {
		genErr := classifyGeneration(genCtx, err)
		log.Error().Err(err).Str("kind", string(genErr.Kind)).Dur("elapsed", time.Since(start)).Msg("Summary generation failed")
		return nil, genErr
	}

	summary, err := ParseSummary(raw)
	if err != nil {
		log.Error().Err(err).Int("bytes", len(raw)).Msg("Summary response is malformed")
		return nil, &GenerationError{Kind: GenerationMalformed, Cause: err}
	}
	summary.DrugID = drugID
	summary.Model = s.text.Model()

	inserted, err := s.repos.Summary.Insert(ctx, summary)
	if errors.Is(err, repository.ErrMissingReference) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store summary: %w", err)
	}

	if !inserted {
		// A concurrent request stored its summary first; serve that one
		winner, err := s.repos.Summary.GetByDrugID(ctx, drugID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload summary: %w", err)
		}
		if winner == nil {
			return nil, fmt.Errorf("summary for drug %d vanished after conflict", drugID)
		}
		log.Info().Msg("Summary already stored by a concurrent request")
		return &models.SummaryResponse{AISummary: winner, Cached: true}, nil
	}

	log.Info().Dur("elapsed", time.Since(start)).Str("model", summary.Model).Msg("Summary generated")
	return &models.SummaryResponse{AISummary: summary, Cached: false}, nil
}

func drugContext(drug *models.Drug) string {
	return fmt.Sprintf("Name: %s\nEffect: %s\nUsage: %s\nWarning: %s",
		drug.Name, drug.Effect, drug.Usage, drug.Warning)
}

var summaryFields = []string{"one_liner", "easy_explain", "key_points", "cautions", "when_to_see_doctor"}

// ParseSummary decodes a provider response into a summary. The document must
// be a JSON object with exactly the five summary keys: two strings and three
// arrays of strings. Anything else, including nulls, is rejected.
func ParseSummary(raw []byte) (*models.AISummary, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, errors.New("response is null")
	}
	if len(fields) != len(summaryFields) {
		return nil, fmt.Errorf("expected %d keys, got %d", len(summaryFields), len(fields))
	}
	for _, key := range summaryFields {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("missing key %q", key)
		}
	}

	var s models.AISummary
	var err error
	if s.OneLiner, err = decodeString(fields["one_liner"]); err != nil {
		return nil, fmt.Errorf("one_liner: %w", err)
	}
	if s.EasyExplain, err = decodeString(fields["easy_explain"]); err != nil {
		return nil, fmt.Errorf("easy_explain: %w", err)
	}
	if s.KeyPoints, err = decodeStringList(fields["key_points"]); err != nil {
		return nil, fmt.Errorf("key_points: %w", err)
	}
	if s.Cautions, err = decodeStringList(fields["cautions"]); err != nil {
		return nil, fmt.Errorf("cautions: %w", err)
	}
	if s.WhenToSeeDoctor, err = decodeStringList(fields["when_to_see_doctor"]); err != nil {
		return nil, fmt.Errorf("when_to_see_doctor: %w", err)
	}
	return &s, nil
}

func decodeString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", errors.New("expected a string")
	}
	var v string
	err := json.Unmarshal(raw, &v)
	return v, err
}

func decodeStringList(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, errors.New("expected an array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	list := make([]string, 0, len(items))
	for i, item := range items {
		v, err := decodeString(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		list = append(list, v)
	}
	return list, nil
}
