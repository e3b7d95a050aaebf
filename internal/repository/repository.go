package repository

import (
	"context"

	"github.com/mediguide-api/internal/database"
	"github.com/mediguide-api/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	NicknameExists(ctx context.Context, nickname string) (bool, error)
}

// DrugRepository defines the interface for drug catalog operations
type DrugRepository interface {
	ListStats(ctx context.Context, name string) ([]*models.DrugStats, error)
	GetByID(ctx context.Context, id int64) (*models.Drug, error)
	Exists(ctx context.Context, id int64) (bool, error)
	IncrementViews(ctx context.Context, id int64) (*models.Drug, error)
	Popular(ctx context.Context, limit int) ([]*models.Drug, error)
	SearchByEffect(ctx context.Context, keywords []string, limit int) ([]*models.Drug, error)
	GetOrCreateByName(ctx context.Context, rec models.DrugRecord) (*models.Drug, bool, error)
	PopulateIfEmpty(ctx context.Context, records []models.DrugRecord) (int, bool, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Drug) error) error
}

// CommentRepository defines the interface for drug comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByDrug(ctx context.Context, drugID int64) ([]*models.Comment, error)
	AverageRating(ctx context.Context, drugID int64) (*float64, error)
}

// ReactionRepository defines the interface for reaction operations
type ReactionRepository interface {
	Tally(ctx context.Context, drugID int64) (helpful, unhelpful int64, err error)
	GetKind(ctx context.Context, drugID int64, userID string) (*string, error)
	Upsert(ctx context.Context, drugID int64, userID, kind string) (*models.Reaction, error)
	Delete(ctx context.Context, drugID int64, userID string) error
}

// SummaryRepository defines the interface for cached AI summaries
type SummaryRepository interface {
	GetByDrugID(ctx context.Context, drugID int64) (*models.AISummary, error)
	// Insert stores the summary unless one already exists for the drug.
	// It reports false when another writer got there first.
	Insert(ctx context.Context, summary *models.AISummary) (bool, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Drug     DrugRepository
	Comment  CommentRepository
	Reaction ReactionRepository
	Summary  SummaryRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepo(db),
		Drug:     NewDrugRepo(db),
		Comment:  NewCommentRepo(db),
		Reaction: NewReactionRepo(db),
		Summary:  NewSummaryRepo(db),
	}
}
