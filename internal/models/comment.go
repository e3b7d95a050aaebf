package models

import (
	"time"
)

// Comment represents a comment on a drug, optionally carrying a rating
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	DrugID    int64     `json:"drug_id" db:"drug_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Nickname  string    `json:"nickname" db:"-"` // joined from users
	Content   string    `json:"content" db:"content"`
	Rating    *int      `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CommentInput is the body of POST /v1/drugs/:id/comments
type CommentInput struct {
	Content string `json:"content"`
	Rating  *int   `json:"rating"`
}

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// MaxCommentLength is the maximum allowed characters in a comment
const MaxCommentLength = 2000
