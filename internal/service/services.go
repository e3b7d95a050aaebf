package service

import (
	"context"
	"net/http"

	"github.com/mediguide-api/internal/auth"
	"github.com/mediguide-api/internal/config"
	"github.com/mediguide-api/internal/druginfo"
	"github.com/mediguide-api/internal/llm"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
	"github.com/rs/zerolog"
)

// DrugService defines the interface for catalog reads
type DrugService interface {
	List(ctx context.Context, q models.ListQuery) ([]*models.DrugStats, error)
	Detail(ctx context.Context, id int64) (*models.DrugDetail, error)
	Popular(ctx context.Context, limit int) ([]*models.Drug, error)
	SearchBySymptoms(ctx context.Context, text string) (*models.SymptomSearchResult, error)
}

// ReactionService defines the interface for helpful/unhelpful reactions
type ReactionService interface {
	Tally(ctx context.Context, drugID int64, viewerID string) (*models.Tally, error)
	// Toggle sets the user's reaction to kind, or clears it when kind is nil.
	// A clear returns a nil reaction.
	Toggle(ctx context.Context, drugID int64, userID string, kind *string) (*models.Reaction, error)
}

// SummaryService defines the interface for cached AI summaries
type SummaryService interface {
	Get(ctx context.Context, drugID int64) (*models.SummaryResponse, error)
}

// CommentService defines the interface for drug comments
type CommentService interface {
	Create(ctx context.Context, drugID int64, userID string, input *models.CommentInput) (*models.Comment, error)
}

// CatalogService defines the interface for catalog ingestion
type CatalogService interface {
	Bootstrap(ctx context.Context) (*models.BootstrapResult, error)
	SaveByName(ctx context.Context, name string) (*models.SaveResult, error)
}

// ImageService defines the interface for AI infographics
type ImageService interface {
	Generate(ctx context.Context, drugID int64) (*models.GeneratedImage, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamDrugs(ctx context.Context, w http.ResponseWriter, format string) error
	Count(ctx context.Context) (int, error)
}

// AuthService defines the interface for accounts and tokens
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	// Authenticate returns the user ID carried by a valid access token
	Authenticate(token string) (string, error)
}

// Services holds all service interfaces
type Services struct {
	Drug     DrugService
	Reaction ReactionService
	Summary  SummaryService
	Comment  CommentService
	Catalog  CatalogService
	Image    ImageService
	Export   ExportService
	Auth     AuthService
}

// Externals are the out-of-process collaborators the services call
type Externals struct {
	Text   llm.TextGenerator
	Image  llm.ImageGenerator
	Source druginfo.Source
	Tokens *auth.TokenManager
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, ext Externals, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Drug:     newDrugService(repos, ext.Text, cfg.AI.SearchTimeout, log),
		Reaction: newReactionService(repos, log),
		Summary:  newSummaryService(repos, ext.Text, cfg.AI.Timeout, log),
		Comment:  newCommentService(repos, log),
		Catalog:  newCatalogService(repos, ext.Source, log),
		Image:    newImageService(repos, ext.Image, cfg.AI.ImageTimeout, log),
		Export:   newExportService(repos, log),
		Auth:     newAuthService(repos, ext.Tokens, log),
	}
}
