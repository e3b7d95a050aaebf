package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
	"github.com/mediguide-api/internal/validation"
	"github.com/rs/zerolog"
)

// reactionService is the concrete implementation of ReactionService
type reactionService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newReactionService creates a new ReactionService
func newReactionService(repos *repository.Repositories, log zerolog.Logger) *reactionService {
	return &reactionService{
		repos: repos,
		log:   log.With().Str("service", "reaction").Logger(),
	}
}

// Tally counts a drug's reactions. The viewer's own reaction is included
// only when viewerID is set.
func (s *reactionService) Tally(ctx context.Context, drugID int64, viewerID string) (*models.Tally, error) {
	if err := s.requireDrug(ctx, drugID); err != nil {
		return nil, err
	}

	helpful, unhelpful, err := s.repos.Reaction.Tally(ctx, drugID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reactions: %w", err)
	}

	tally := &models.Tally{Helpful: helpful, Unhelpful: unhelpful}
	if viewerID != "" {
		tally.MyReaction, err = s.repos.Reaction.GetKind(ctx, drugID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load reaction: %w", err)
		}
	}
	return tally, nil
}

// Toggle moves the (user, drug) pair to the requested state.
// A nil kind clears the reaction and is a no-op when there is none.
func (s *reactionService) Toggle(ctx context.Context, drugID int64, userID string, kind *string) (*models.Reaction, error) {
	if kind != nil && !validation.IsValidReactionKind(*kind) {
		return nil, ErrInvalidReaction
	}
	if err := s.requireDrug(ctx, drugID); err != nil {
		return nil, err
	}

	if kind == nil {
		if err := s.repos.Reaction.Delete(ctx, drugID, userID); err != nil {
			return nil, fmt.Errorf("failed to clear reaction: %w", err)
		}
		s.log.Debug().Int64("drug_id", drugID).Str("user_id", userID).Msg("Reaction cleared")
		return nil, nil
	}

	reaction, err := s.repos.Reaction.Upsert(ctx, drugID, userID, *kind)
	if errors.Is(err, repository.ErrDuplicate) {
		// A concurrent insert for the same pair won; overwrite it
		reaction, err = s.repos.Reaction.Upsert(ctx, drugID, userID, *kind)
	}
	if errors.Is(err, repository.ErrMissingReference) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save reaction: %w", err)
	}

	s.log.Debug().Int64("drug_id", drugID).Str("user_id", userID).Str("kind", *kind).Msg("Reaction saved")
	return reaction, nil
}

func (s *reactionService) requireDrug(ctx context.Context, drugID int64) error {
	exists, err := s.repos.Drug.Exists(ctx, drugID)
	if err != nil {
		return fmt.Errorf("failed to load drug: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
