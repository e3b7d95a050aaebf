package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
	"github.com/rs/zerolog"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamDrugs streams the catalog in the specified format
func (s *exportService) StreamDrugs(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting drugs export")

	switch format {
	case "ndjson", "":
		return s.streamNDJSON(ctx, w)
	case "json":
		return s.streamJSON(ctx, w)
	case "csv":
		return s.streamCSV(ctx, w)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=drugs.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repos.Drug.StreamAll(ctx, func(drug *models.Drug) error {
		data, err := json.Marshal(drug)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Drugs export completed")
	return err
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=drugs.json")

	w.Write([]byte("["))
	first := true

	err := s.repos.Drug.StreamAll(ctx, func(drug *models.Drug) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(drug)
		if err != nil {
			return err
		}
		w.Write(data)
		return nil
	})

	w.Write([]byte("]"))
	return err
}

func (s *exportService) streamCSV(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=drugs.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"id", "name", "effect", "usage", "warning", "image_url", "view_count", "created_at"})

	return s.repos.Drug.StreamAll(ctx, func(drug *models.Drug) error {
		imageURL := ""
		if drug.ImageURL != nil {
			imageURL = *drug.ImageURL
		}
		return writer.Write([]string{
			strconv.FormatInt(drug.ID, 10),
			drug.Name,
			drug.Effect,
			drug.Usage,
			drug.Warning,
			imageURL,
			strconv.FormatInt(drug.ViewCount, 10),
			drug.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
}

// Count returns the number of drugs in the catalog
func (s *exportService) Count(ctx context.Context) (int, error) {
	return s.repos.Drug.Count(ctx)
}
