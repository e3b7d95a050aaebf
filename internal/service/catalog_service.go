package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mediguide-api/internal/druginfo"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
	"github.com/rs/zerolog"
)

// catalogService is the concrete implementation of CatalogService
type catalogService struct {
	repos  *repository.Repositories
	source druginfo.Source
	log    zerolog.Logger
}

// newCatalogService creates a new CatalogService
func newCatalogService(repos *repository.Repositories, source druginfo.Source, log zerolog.Logger) *catalogService {
	return &catalogService{
		repos:  repos,
		source: source,
		log:    log.With().Str("service", "catalog").Logger(),
	}
}

// Bootstrap seeds an empty catalog from the drug information API.
// It is safe to run repeatedly and concurrently: once any run has
// populated the table, every other run reports skipped.
func (s *catalogService) Bootstrap(ctx context.Context) (*models.BootstrapResult, error) {
	start := time.Now()
	result := &models.BootstrapResult{}

	count, err := s.repos.Drug.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count drugs: %w", err)
	}
	if count > 0 {
		s.log.Info().Int("drugs", count).Msg("Catalog already populated, skipping bootstrap")
		result.Skipped = true
		return result, nil
	}

	s.log.Info().Msg("Fetching catalog from drug information API")
	records, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, &IngestionError{Unauthorized: errors.Is(err, druginfo.ErrUnauthorized), Cause: err}
	}
	result.Fetched = len(records)

	inserted, skipped, err := s.repos.Drug.PopulateIfEmpty(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to populate catalog: %w", err)
	}
	result.Inserted = inserted
	result.Skipped = skipped
	result.Duration = time.Since(start).Milliseconds()

	s.log.Info().
		Int("fetched", result.Fetched).
		Int("inserted", result.Inserted).
		Bool("skipped", result.Skipped).
		Int64("duration_ms", result.Duration).
		Msg("Bootstrap completed")

	return result, nil
}

// SaveByName looks name up in the drug information API and stores every
// result not already in the catalog. Individual save failures are counted,
// not returned.
func (s *catalogService) SaveByName(ctx context.Context, name string) (*models.SaveResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	records, err := s.source.Search(ctx, name)
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("Drug information lookup failed")
		return nil, &IngestionError{Unauthorized: errors.Is(err, druginfo.ErrUnauthorized), Cause: err}
	}

	result := &models.SaveResult{Saved: make([]*models.SavedDrug, 0, len(records))}
	for _, rec := range records {
		drug, created, err := s.repos.Drug.GetOrCreateByName(ctx, rec)
		if err != nil {
			s.log.Warn().Err(err).Str("name", rec.Name).Msg("Failed to save drug")
			result.FailedCount++
			continue
		}
		result.Saved = append(result.Saved, &models.SavedDrug{
			ID:       drug.ID,
			Name:     drug.Name,
			Created:  created,
			ImageURL: drug.ImageURL,
		})
	}
	result.SavedCount = len(result.Saved)

	s.log.Info().Str("name", name).Int("saved", result.SavedCount).Int("failed", result.FailedCount).Msg("Drugs saved by name")
	return result, nil
}
