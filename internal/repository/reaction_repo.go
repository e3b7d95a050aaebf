package repository

import (
	"context"
	"database/sql"

	"github.com/mediguide-api/internal/database"
	"github.com/mediguide-api/internal/models"
)

// reactionRepo is the concrete implementation of ReactionRepository
type reactionRepo struct {
	db *database.DB
}

// NewReactionRepo creates a new reaction repository
func NewReactionRepo(db *database.DB) ReactionRepository {
	return &reactionRepo{db: db}
}

// Tally counts a drug's reactions by kind in a single grouped query
func (r *reactionRepo) Tally(ctx context.Context, drugID int64) (int64, int64, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'helpful'),
			COUNT(*) FILTER (WHERE kind = 'unhelpful')
		FROM drug_reactions
		WHERE drug_id = $1
	`
	var helpful, unhelpful int64
	err := r.db.QueryRowContext(ctx, query, drugID).Scan(&helpful, &unhelpful)
	return helpful, unhelpful, err
}

// GetKind returns the user's current reaction kind, or nil if they have none
func (r *reactionRepo) GetKind(ctx context.Context, drugID int64, userID string) (*string, error) {
	var kind string
	err := r.db.QueryRowContext(ctx,
		"SELECT kind FROM drug_reactions WHERE drug_id = $1 AND user_id = $2", drugID, userID,
	).Scan(&kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &kind, nil
}

// Upsert sets the user's reaction to kind, overwriting any previous one
func (r *reactionRepo) Upsert(ctx context.Context, drugID int64, userID, kind string) (*models.Reaction, error) {
	query := `
		INSERT INTO drug_reactions (drug_id, user_id, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT uq_drug_reactions_user_drug DO UPDATE SET
			kind = EXCLUDED.kind,
			updated_at = NOW()
		RETURNING id, drug_id, user_id, kind, created_at, updated_at
	`
	var reaction models.Reaction
	err := r.db.QueryRowContext(ctx, query, drugID, userID, kind).Scan(
		&reaction.ID, &reaction.DrugID, &reaction.UserID, &reaction.Kind,
		&reaction.CreatedAt, &reaction.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &reaction, nil
}

// Delete removes the user's reaction; removing a missing reaction is not an error
func (r *reactionRepo) Delete(ctx context.Context, drugID int64, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM drug_reactions WHERE drug_id = $1 AND user_id = $2", drugID, userID,
	)
	return err
}
