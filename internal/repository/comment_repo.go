package repository

import (
	"context"
	"database/sql"

	"github.com/mediguide-api/internal/database"
	"github.com/mediguide-api/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment and fills in its ID and timestamp
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO drug_comments (drug_id, user_id, content, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	var rating interface{}
	if comment.Rating != nil {
		rating = *comment.Rating
	}
	err := r.db.QueryRowContext(ctx, query,
		comment.DrugID, comment.UserID, comment.Content, rating,
	).Scan(&comment.ID, &comment.CreatedAt)
	return translateError(err)
}

// ListByDrug returns a drug's comments, newest first, with author nicknames
func (r *commentRepo) ListByDrug(ctx context.Context, drugID int64) ([]*models.Comment, error) {
	query := `
		SELECT c.id, c.drug_id, c.user_id, u.nickname, c.content, c.rating, c.created_at
		FROM drug_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.drug_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, drugID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		var rating sql.NullInt16
		if err := rows.Scan(&c.ID, &c.DrugID, &c.UserID, &c.Nickname, &c.Content, &rating, &c.CreatedAt); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := int(rating.Int16)
			c.Rating = &v
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// AverageRating returns the mean of a drug's non-null ratings, or nil when there are none
func (r *commentRepo) AverageRating(ctx context.Context, drugID int64) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		"SELECT AVG(rating)::float8 FROM drug_comments WHERE drug_id = $1 AND rating IS NOT NULL", drugID,
	).Scan(&avg)
	if err != nil || !avg.Valid {
		return nil, err
	}
	return &avg.Float64, nil
}
