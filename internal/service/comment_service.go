package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
	"github.com/mediguide-api/internal/validation"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(repos *repository.Repositories, log zerolog.Logger) *commentService {
	return &commentService{
		repos: repos,
		log:   log.With().Str("service", "comment").Logger(),
	}
}

// Create stores a comment authored by userID
func (s *commentService) Create(ctx context.Context, drugID int64, userID string, input *models.CommentInput) (*models.Comment, error) {
	if errs := validation.ValidateComment(input); len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}

	exists, err := s.repos.Drug.Exists(ctx, drugID)
	if err != nil {
		return nil, fmt.Errorf("failed to load drug: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	comment := &models.Comment{
		DrugID:  drugID,
		UserID:  userID,
		Content: strings.TrimSpace(input.Content),
		Rating:  input.Rating,
	}
	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	if user, err := s.repos.User.GetByID(ctx, userID); err == nil && user != nil {
		comment.Nickname = user.Nickname
	}

	s.log.Info().Int64("drug_id", drugID).Int64("comment_id", comment.ID).Msg("Comment created")
	return comment, nil
}
