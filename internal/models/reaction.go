package models

import (
	"time"
)

// Reaction kinds
const (
	ReactionHelpful   = "helpful"
	ReactionUnhelpful = "unhelpful"
)

// ValidReactionKinds defines the closed set of reaction kinds
var ValidReactionKinds = map[string]bool{
	ReactionHelpful:   true,
	ReactionUnhelpful: true,
}

// Reaction is a user's vote on a drug; at most one per (user, drug)
type Reaction struct {
	ID        int64     `json:"id" db:"id"`
	DrugID    int64     `json:"-" db:"drug_id"`
	UserID    string    `json:"-" db:"user_id"`
	Kind      string    `json:"reaction" db:"kind"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Tally is the per-drug reaction count. MyReaction is nil for anonymous
// callers and for callers who never reacted.
type Tally struct {
	Helpful    int64   `json:"helpful"`
	Unhelpful  int64   `json:"unhelpful"`
	MyReaction *string `json:"my_reaction"`
}

// ReactionRequest is the body of POST /v1/drugs/:id/reactions.
// A missing or null reaction clears the caller's reaction.
type ReactionRequest struct {
	Reaction *string `json:"reaction"`
}
