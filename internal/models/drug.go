package models

import (
	"time"
)

// Drug represents a catalog entry
type Drug struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Effect    string    `json:"effect" db:"effect"`
	Usage     string    `json:"usage" db:"usage"`
	Warning   string    `json:"warning" db:"warning"`
	ImageURL  *string   `json:"image_url" db:"image_url"`
	ViewCount int64     `json:"view_count" db:"view_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DrugStats is a drug decorated with its rating and reaction aggregates.
// HelpfulRatio is nil when the drug has no reactions.
type DrugStats struct {
	Drug
	AvgRating      *float64 `json:"avg_rating"`
	HelpfulCount   int64    `json:"helpful_count"`
	UnhelpfulCount int64    `json:"unhelpful_count"`
	HelpfulRatio   *float64 `json:"helpful_ratio"`
}

// DrugDetail is the drug detail payload
type DrugDetail struct {
	Drug
	AvgRating *float64   `json:"avg_rating"`
	Comments  []*Comment `json:"comments"`
}

// ListOrder selects the listing sort order
type ListOrder string

const (
	OrderDefault ListOrder = "default"
	OrderHelpful ListOrder = "helpful"
	OrderRating  ListOrder = "rating"
)

// ValidOrders defines the accepted listing orders
var ValidOrders = map[ListOrder]bool{
	OrderDefault: true,
	OrderHelpful: true,
	OrderRating:  true,
}

// ListQuery holds the listing filter and order
type ListQuery struct {
	Name  string    `form:"search"`
	Order ListOrder `form:"order"`
}

// DrugRecord is a catalog row as supplied by the ingestion source
type DrugRecord struct {
	Name     string
	Effect   string
	Usage    string
	Warning  string
	ImageURL string
}

// SavedDrug reports one drug touched by an on-demand ingestion
type SavedDrug struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Created  bool    `json:"created"`
	ImageURL *string `json:"image_url"`
}

// SaveResult is the response of an on-demand ingestion
type SaveResult struct {
	SavedCount  int          `json:"saved_count"`
	Saved       []*SavedDrug `json:"saved"`
	FailedCount int          `json:"failed_count"`
}

// BootstrapResult reports the outcome of a catalog bootstrap
type BootstrapResult struct {
	Skipped  bool  `json:"skipped"`
	Fetched  int   `json:"fetched"`
	Inserted int   `json:"inserted"`
	Duration int64 `json:"duration_ms"`
}

// SymptomSearchRequest is the body of POST /v1/drugs/ai-search
type SymptomSearchRequest struct {
	Text string `json:"text"`
}

// SymptomSearchResult lists drugs matching the extracted symptom keywords
type SymptomSearchResult struct {
	Keywords []string `json:"keywords"`
	Drugs    []*Drug  `json:"drugs"`
}

// DefaultPopularLimit and MaxPopularLimit bound the popular drugs list
const (
	DefaultPopularLimit = 10
	MaxPopularLimit     = 50
)
