package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mediguide-api/internal/database"
	"github.com/mediguide-api/internal/models"
)

// bootstrapLockKey identifies the advisory lock held while populating the catalog
const bootstrapLockKey = 0x6d656469

// drugRepo is the concrete implementation of DrugRepository
type drugRepo struct {
	db *database.DB
}

// NewDrugRepo creates a new drug repository
func NewDrugRepo(db *database.DB) DrugRepository {
	return &drugRepo{db: db}
}

const drugColumns = `d.id, d.name, d.effect, d.usage, d.warning, d.image_url, d.view_count, d.created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDrug(row rowScanner, extra ...interface{}) (*models.Drug, error) {
	var drug models.Drug
	var imageURL sql.NullString
	dest := append([]interface{}{
		&drug.ID, &drug.Name, &drug.Effect, &drug.Usage, &drug.Warning, &imageURL,
		&drug.ViewCount, &drug.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if imageURL.Valid {
		drug.ImageURL = &imageURL.String
	}
	return &drug, nil
}

// ListStats returns every drug matching the name filter together with its
// rating average and reaction counts, computed in one grouped query.
// Comments and reactions are aggregated separately before joining so that
// neither multiplies the other's rows.
func (r *drugRepo) ListStats(ctx context.Context, name string) ([]*models.DrugStats, error) {
	query := `
		SELECT ` + drugColumns + `,
			c.avg_rating,
			COALESCE(rc.helpful, 0),
			COALESCE(rc.unhelpful, 0)
		FROM drugs d
		LEFT JOIN (
			SELECT drug_id, AVG(rating)::float8 AS avg_rating
			FROM drug_comments
			WHERE rating IS NOT NULL
			GROUP BY drug_id
		) c ON c.drug_id = d.id
		LEFT JOIN (
			SELECT drug_id,
				COUNT(*) FILTER (WHERE kind = 'helpful') AS helpful,
				COUNT(*) FILTER (WHERE kind = 'unhelpful') AS unhelpful
			FROM drug_reactions
			GROUP BY drug_id
		) rc ON rc.drug_id = d.id
	`
	var args []interface{}
	if name != "" {
		query += ` WHERE d.name ILIKE $1 ESCAPE '\'`
		args = append(args, containsPattern(name))
	}
	query += ` ORDER BY d.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*models.DrugStats
	for rows.Next() {
		var avg sql.NullFloat64
		var helpful, unhelpful int64
		drug, err := scanDrug(rows, &avg, &helpful, &unhelpful)
		if err != nil {
			return nil, err
		}
		s := &models.DrugStats{Drug: *drug, HelpfulCount: helpful, UnhelpfulCount: unhelpful}
		if avg.Valid {
			v := avg.Float64
			s.AvgRating = &v
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// GetByID retrieves a drug by ID
func (r *drugRepo) GetByID(ctx context.Context, id int64) (*models.Drug, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+drugColumns+` FROM drugs d WHERE d.id = $1`, id)
	drug, err := scanDrug(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return drug, err
}

// Exists checks if a drug with the given ID exists
func (r *drugRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM drugs WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// IncrementViews bumps the view counter and returns the updated drug, or nil if it does not exist
func (r *drugRepo) IncrementViews(ctx context.Context, id int64) (*models.Drug, error) {
	query := `
		UPDATE drugs d SET view_count = d.view_count + 1
		WHERE d.id = $1
		RETURNING ` + drugColumns
	drug, err := scanDrug(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return drug, err
}

// Popular returns the most viewed drugs
func (r *drugRepo) Popular(ctx context.Context, limit int) ([]*models.Drug, error) {
	query := `SELECT ` + drugColumns + ` FROM drugs d ORDER BY d.view_count DESC, d.id DESC LIMIT $1`
	return r.queryDrugs(ctx, query, limit)
}

// SearchByEffect returns drugs whose effect text contains any of the keywords, case-insensitively
func (r *drugRepo) SearchByEffect(ctx context.Context, keywords []string, limit int) ([]*models.Drug, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	conds := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, len(keywords)+1)
	for i, kw := range keywords {
		conds = append(conds, fmt.Sprintf(`d.effect ILIKE $%d ESCAPE '\'`, i+1))
		args = append(args, containsPattern(kw))
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT %s FROM drugs d WHERE %s ORDER BY d.id DESC LIMIT $%d`,
		drugColumns, strings.Join(conds, " OR "), len(args),
	)
	return r.queryDrugs(ctx, query, args...)
}

func (r *drugRepo) queryDrugs(ctx context.Context, query string, args ...interface{}) ([]*models.Drug, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drugs []*models.Drug
	for rows.Next() {
		drug, err := scanDrug(rows)
		if err != nil {
			return nil, err
		}
		drugs = append(drugs, drug)
	}
	return drugs, rows.Err()
}

// GetOrCreateByName inserts the record unless a drug with the same name exists.
// The boolean reports whether a new row was created.
func (r *drugRepo) GetOrCreateByName(ctx context.Context, rec models.DrugRecord) (*models.Drug, bool, error) {
	insert := `
		INSERT INTO drugs AS d (name, effect, usage, warning, image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING
		RETURNING ` + drugColumns
	drug, err := scanDrug(r.db.QueryRowContext(ctx, insert,
		rec.Name, rec.Effect, rec.Usage, rec.Warning, nullableString(rec.ImageURL),
	))
	if err == nil {
		return drug, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	drug, err = scanDrug(r.db.QueryRowContext(ctx, `SELECT `+drugColumns+` FROM drugs d WHERE d.name = $1`, rec.Name))
	if err != nil {
		return nil, false, err
	}
	return drug, false, nil
}

// PopulateIfEmpty loads the records into an empty catalog.
// Concurrent callers serialize on an advisory lock; whoever finds the table
// already populated reports skipped and writes nothing.
func (r *drugRepo) PopulateIfEmpty(ctx context.Context, records []models.DrugRecord) (int, bool, error) {
	var inserted int
	var skipped bool

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", bootstrapLockKey); err != nil {
			return fmt.Errorf("failed to acquire bootstrap lock: %w", err)
		}

		var populated bool
		if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM drugs)").Scan(&populated); err != nil {
			return err
		}
		if populated {
			skipped = true
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			CREATE TEMP TABLE drug_staging (
				name TEXT, effect TEXT, usage TEXT, warning TEXT, image_url TEXT
			) ON COMMIT DROP
		`); err != nil {
			return fmt.Errorf("failed to create staging table: %w", err)
		}

		// Prepare COPY statement for bulk load
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("drug_staging",
			"name", "effect", "usage", "warning", "image_url",
		))
		if err != nil {
			return err
		}
		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx,
				rec.Name, rec.Effect, rec.Usage, rec.Warning, nullableString(rec.ImageURL),
			); err != nil {
				stmt.Close()
				return err
			}
		}
		// Execute the COPY
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return err
		}
		if err := stmt.Close(); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO drugs (name, effect, usage, warning, image_url)
			SELECT DISTINCT ON (name) name, COALESCE(effect, ''), COALESCE(usage, ''), COALESCE(warning, ''), image_url
			FROM drug_staging
			WHERE name <> ''
			ORDER BY name
			ON CONFLICT (name) DO NOTHING
		`)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = int(n)
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return inserted, skipped, nil
}

// Count returns the total number of drugs
func (r *drugRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM drugs").Scan(&count)
	return count, err
}

// StreamAll streams all drugs for export (memory efficient)
func (r *drugRepo) StreamAll(ctx context.Context, callback func(*models.Drug) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+drugColumns+` FROM drugs d ORDER BY d.id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		drug, err := scanDrug(rows)
		if err != nil {
			return err
		}
		if err := callback(drug); err != nil {
			return err
		}
	}
	return rows.Err()
}
