package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mediguide-api/internal/database"
	"github.com/mediguide-api/internal/models"
)

// summaryRepo is the concrete implementation of SummaryRepository
type summaryRepo struct {
	db *database.DB
}

// NewSummaryRepo creates a new summary repository
func NewSummaryRepo(db *database.DB) SummaryRepository {
	return &summaryRepo{db: db}
}

// GetByDrugID retrieves the cached summary of a drug
func (r *summaryRepo) GetByDrugID(ctx context.Context, drugID int64) (*models.AISummary, error) {
	query := `
		SELECT id, drug_id, one_liner, easy_explain, key_points, cautions, when_to_see_doctor,
			model, created_at, updated_at
		FROM drug_ai_summaries
		WHERE drug_id = $1
	`
	var s models.AISummary
	var keyPoints, cautions, whenToSeeDoctor []byte
	err := r.db.QueryRowContext(ctx, query, drugID).Scan(
		&s.ID, &s.DrugID, &s.OneLiner, &s.EasyExplain, &keyPoints, &cautions, &whenToSeeDoctor,
		&s.Model, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		raw []byte
		dst *[]string
	}{
		{keyPoints, &s.KeyPoints},
		{cautions, &s.Cautions},
		{whenToSeeDoctor, &s.WhenToSeeDoctor},
	} {
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("failed to decode summary list: %w", err)
		}
	}
	return &s, nil
}

// Insert stores a new summary. A summary already stored for the drug wins
// and Insert reports false without touching it.
func (r *summaryRepo) Insert(ctx context.Context, s *models.AISummary) (bool, error) {
	keyPoints, err := json.Marshal(nonNil(s.KeyPoints))
	if err != nil {
		return false, err
	}
	cautions, err := json.Marshal(nonNil(s.Cautions))
	if err != nil {
		return false, err
	}
	whenToSeeDoctor, err := json.Marshal(nonNil(s.WhenToSeeDoctor))
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO drug_ai_summaries
			(drug_id, one_liner, easy_explain, key_points, cautions, when_to_see_doctor, model)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (drug_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		s.DrugID, s.OneLiner, s.EasyExplain, string(keyPoints), string(cautions), string(whenToSeeDoctor), s.Model,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, translateError(err)
	}
	return true, nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
