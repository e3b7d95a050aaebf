package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/repository"
)

// MockRepositories bundles in-memory repositories that share one dataset,
// so that aggregates computed by the drug repository see the comments and
// reactions written through the others.
type MockRepositories struct {
	User     *MockUserRepository
	Drug     *MockDrugRepository
	Comment  *MockCommentRepository
	Reaction *MockReactionRepository
	Summary  *MockSummaryRepository
}

// NewMockRepositories creates an empty in-memory dataset
func NewMockRepositories() *MockRepositories {
	m := &MockRepositories{
		User:     NewMockUserRepository(),
		Comment:  NewMockCommentRepository(),
		Reaction: NewMockReactionRepository(),
		Summary:  NewMockSummaryRepository(),
	}
	m.Drug = NewMockDrugRepository(m.Comment, m.Reaction)
	m.Comment.users = m.User
	m.Comment.drugs = m.Drug
	m.Reaction.drugs = m.Drug
	m.Summary.drugs = m.Drug
	return m
}

// Repositories exposes the mocks through the repository interfaces
func (m *MockRepositories) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:     m.User,
		Drug:     m.Drug,
		Comment:  m.Comment,
		Reaction: m.Reaction,
		Summary:  m.Summary,
	}
}

// Verify interface compliance
var (
	_ repository.UserRepository     = (*MockUserRepository)(nil)
	_ repository.DrugRepository     = (*MockDrugRepository)(nil)
	_ repository.CommentRepository  = (*MockCommentRepository)(nil)
	_ repository.ReactionRepository = (*MockReactionRepository)(nil)
	_ repository.SummaryRepository  = (*MockSummaryRepository)(nil)
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mu          sync.RWMutex
	Users       map[string]*models.User
	InsertError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, u := range m.Users {
		if u.Username == user.Username || u.Nickname == user.Nickname {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Users[id], nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	u, _ := m.GetByUsername(ctx, username)
	return u != nil, nil
}

func (m *MockUserRepository) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.Users {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) nickname(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.Users[id]; ok {
		return u.Nickname
	}
	return ""
}

// MockDrugRepository is a mock implementation of DrugRepository
type MockDrugRepository struct {
	mu            sync.RWMutex
	Drugs         map[int64]*models.Drug
	nextID        int64
	comments      *MockCommentRepository
	reactions     *MockReactionRepository
	PopulateCalls int
	ListError     error
}

func NewMockDrugRepository(comments *MockCommentRepository, reactions *MockReactionRepository) *MockDrugRepository {
	return &MockDrugRepository{
		Drugs:     make(map[int64]*models.Drug),
		comments:  comments,
		reactions: reactions,
	}
}

// Add stores a drug directly and returns it with an assigned ID
func (m *MockDrugRepository) Add(name, effect string) *models.Drug {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(models.DrugRecord{Name: name, Effect: effect})
}

func (m *MockDrugRepository) insertLocked(rec models.DrugRecord) *models.Drug {
	m.nextID++
	drug := &models.Drug{
		ID:        m.nextID,
		Name:      rec.Name,
		Effect:    rec.Effect,
		Usage:     rec.Usage,
		Warning:   rec.Warning,
		CreatedAt: time.Now(),
	}
	if rec.ImageURL != "" {
		url := rec.ImageURL
		drug.ImageURL = &url
	}
	m.Drugs[drug.ID] = drug
	return drug
}

func (m *MockDrugRepository) ListStats(ctx context.Context, name string) ([]*models.DrugStats, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make([]*models.DrugStats, 0, len(m.Drugs))
	for _, d := range m.Drugs {
		if name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			continue
		}
		s := &models.DrugStats{Drug: *d}
		if m.comments != nil {
			s.AvgRating, _ = m.comments.AverageRating(ctx, d.ID)
		}
		if m.reactions != nil {
			s.HelpfulCount, s.UnhelpfulCount, _ = m.reactions.Tally(ctx, d.ID)
		}
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ID > stats[j].ID })
	return stats, nil
}

func (m *MockDrugRepository) GetByID(ctx context.Context, id int64) (*models.Drug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.Drugs[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, nil
}

func (m *MockDrugRepository) Exists(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.Drugs[id]
	return ok, nil
}

func (m *MockDrugRepository) IncrementViews(ctx context.Context, id int64) (*models.Drug, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Drugs[id]
	if !ok {
		return nil, nil
	}
	d.ViewCount++
	copied := *d
	return &copied, nil
}

func (m *MockDrugRepository) Popular(ctx context.Context, limit int) ([]*models.Drug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	drugs := make([]*models.Drug, 0, len(m.Drugs))
	for _, d := range m.Drugs {
		drugs = append(drugs, d)
	}
	sort.Slice(drugs, func(i, j int) bool {
		if drugs[i].ViewCount != drugs[j].ViewCount {
			return drugs[i].ViewCount > drugs[j].ViewCount
		}
		return drugs[i].ID > drugs[j].ID
	})
	if len(drugs) > limit {
		drugs = drugs[:limit]
	}
	return drugs, nil
}

func (m *MockDrugRepository) SearchByEffect(ctx context.Context, keywords []string, limit int) ([]*models.Drug, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var drugs []*models.Drug
	for _, d := range m.Drugs {
		effect := strings.ToLower(d.Effect)
		for _, kw := range keywords {
			if strings.Contains(effect, strings.ToLower(kw)) {
				drugs = append(drugs, d)
				break
			}
		}
	}
	sort.Slice(drugs, func(i, j int) bool { return drugs[i].ID > drugs[j].ID })
	if len(drugs) > limit {
		drugs = drugs[:limit]
	}
	return drugs, nil
}

func (m *MockDrugRepository) GetOrCreateByName(ctx context.Context, rec models.DrugRecord) (*models.Drug, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.Drugs {
		if d.Name == rec.Name {
			return d, false, nil
		}
	}
	return m.insertLocked(rec), true, nil
}

func (m *MockDrugRepository) PopulateIfEmpty(ctx context.Context, records []models.DrugRecord) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PopulateCalls++
	if len(m.Drugs) > 0 {
		return 0, true, nil
	}
	seen := make(map[string]bool)
	inserted := 0
	for _, rec := range records {
		if rec.Name == "" || seen[rec.Name] {
			continue
		}
		seen[rec.Name] = true
		m.insertLocked(rec)
		inserted++
	}
	return inserted, false, nil
}

func (m *MockDrugRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Drugs), nil
}

func (m *MockDrugRepository) StreamAll(ctx context.Context, callback func(*models.Drug) error) error {
	m.mu.RLock()
	drugs := make([]*models.Drug, 0, len(m.Drugs))
	for _, d := range m.Drugs {
		drugs = append(drugs, d)
	}
	m.mu.RUnlock()

	sort.Slice(drugs, func(i, j int) bool { return drugs[i].ID < drugs[j].ID })
	for _, d := range drugs {
		if err := callback(d); err != nil {
			return err
		}
	}
	return nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mu       sync.RWMutex
	Comments []*models.Comment
	nextID   int64
	users    *MockUserRepository
	drugs    *MockDrugRepository
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.drugs != nil {
		if ok, _ := m.drugs.Exists(ctx, comment.DrugID); !ok {
			return repository.ErrMissingReference
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	comment.ID = m.nextID
	comment.CreatedAt = time.Now()
	m.Comments = append(m.Comments, comment)
	return nil
}

func (m *MockCommentRepository) ListByDrug(ctx context.Context, drugID int64) ([]*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	comments := make([]*models.Comment, 0)
	for i := len(m.Comments) - 1; i >= 0; i-- {
		c := m.Comments[i]
		if c.DrugID != drugID {
			continue
		}
		copied := *c
		if m.users != nil {
			copied.Nickname = m.users.nickname(c.UserID)
		}
		comments = append(comments, &copied)
	}
	return comments, nil
}

func (m *MockCommentRepository) AverageRating(ctx context.Context, drugID int64) (*float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum, n := 0, 0
	for _, c := range m.Comments {
		if c.DrugID == drugID && c.Rating != nil {
			sum += *c.Rating
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

type reactionKey struct {
	drugID int64
	userID string
}

// MockReactionRepository is a mock implementation of ReactionRepository.
// The map key emulates the (user, drug) uniqueness constraint.
type MockReactionRepository struct {
	mu        sync.RWMutex
	Reactions map[reactionKey]*models.Reaction
	nextID    int64
	drugs     *MockDrugRepository
	// UpsertErrors are returned, in order, by the next Upsert calls
	UpsertErrors []error
	UpsertCalls  int
}

func NewMockReactionRepository() *MockReactionRepository {
	return &MockReactionRepository{Reactions: make(map[reactionKey]*models.Reaction)}
}

// Rows returns the number of stored reactions for the pair
func (m *MockReactionRepository) Rows(drugID int64, userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.Reactions[reactionKey{drugID, userID}]; ok {
		return 1
	}
	return 0
}

// CountForDrug returns the number of stored reactions for a drug
func (m *MockReactionRepository) CountForDrug(drugID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for k := range m.Reactions {
		if k.drugID == drugID {
			n++
		}
	}
	return n
}

func (m *MockReactionRepository) Tally(ctx context.Context, drugID int64) (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var helpful, unhelpful int64
	for k, r := range m.Reactions {
		if k.drugID != drugID {
			continue
		}
		switch r.Kind {
		case models.ReactionHelpful:
			helpful++
		case models.ReactionUnhelpful:
			unhelpful++
		}
	}
	return helpful, unhelpful, nil
}

func (m *MockReactionRepository) GetKind(ctx context.Context, drugID int64, userID string) (*string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.Reactions[reactionKey{drugID, userID}]; ok {
		kind := r.Kind
		return &kind, nil
	}
	return nil, nil
}

func (m *MockReactionRepository) Upsert(ctx context.Context, drugID int64, userID, kind string) (*models.Reaction, error) {
	if m.drugs != nil {
		if ok, _ := m.drugs.Exists(ctx, drugID); !ok {
			return nil, repository.ErrMissingReference
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if len(m.UpsertErrors) > 0 {
		err := m.UpsertErrors[0]
		m.UpsertErrors = m.UpsertErrors[1:]
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	key := reactionKey{drugID, userID}
	r, ok := m.Reactions[key]
	if !ok {
		m.nextID++
		r = &models.Reaction{ID: m.nextID, DrugID: drugID, UserID: userID, CreatedAt: now}
		m.Reactions[key] = r
	}
	r.Kind = kind
	r.UpdatedAt = now
	copied := *r
	return &copied, nil
}

func (m *MockReactionRepository) Delete(ctx context.Context, drugID int64, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Reactions, reactionKey{drugID, userID})
	return nil
}

// MockSummaryRepository is a mock implementation of SummaryRepository.
// The map key emulates the one-summary-per-drug constraint.
type MockSummaryRepository struct {
	mu          sync.RWMutex
	Summaries   map[int64]*models.AISummary
	nextID      int64
	drugs       *MockDrugRepository
	InsertCalls int
}

func NewMockSummaryRepository() *MockSummaryRepository {
	return &MockSummaryRepository{Summaries: make(map[int64]*models.AISummary)}
}

// Count returns the number of stored summaries
func (m *MockSummaryRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Summaries)
}

func (m *MockSummaryRepository) GetByDrugID(ctx context.Context, drugID int64) (*models.AISummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.Summaries[drugID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (m *MockSummaryRepository) Insert(ctx context.Context, s *models.AISummary) (bool, error) {
	if m.drugs != nil {
		if ok, _ := m.drugs.Exists(ctx, s.DrugID); !ok {
			return false, repository.ErrMissingReference
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCalls++
	if _, exists := m.Summaries[s.DrugID]; exists {
		return false, nil
	}
	m.nextID++
	now := time.Now()
	s.ID, s.CreatedAt, s.UpdatedAt = m.nextID, now, now
	copied := *s
	m.Summaries[s.DrugID] = &copied
	return true, nil
}
