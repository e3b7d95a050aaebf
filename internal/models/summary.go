package models

import (
	"time"
)

// AISummary is the cached structured summary of a drug, one per drug
type AISummary struct {
	ID              int64     `json:"-" db:"id"`
	DrugID          int64     `json:"drug_id" db:"drug_id"`
	OneLiner        string    `json:"one_liner" db:"one_liner"`
	EasyExplain     string    `json:"easy_explain" db:"easy_explain"`
	KeyPoints       []string  `json:"key_points" db:"key_points"`
	Cautions        []string  `json:"cautions" db:"cautions"`
	WhenToSeeDoctor []string  `json:"when_to_see_doctor" db:"when_to_see_doctor"`
	Model           string    `json:"model" db:"model"`
	CreatedAt       time.Time `json:"-" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// SummaryResponse is an AISummary plus whether it was served from storage
type SummaryResponse struct {
	*AISummary
	Cached bool `json:"cached"`
}

// GeneratedImage is an inline image produced by the image generator
type GeneratedImage struct {
	MimeType string `json:"mime_type"`
	Base64   string `json:"base64"`
}
