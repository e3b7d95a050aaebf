package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mediguide-api/internal/auth"
	"github.com/mediguide-api/internal/config"
	"github.com/mediguide-api/internal/mocks"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/service"
	"github.com/rs/zerolog"
)

type fixture struct {
	repos  *mocks.MockRepositories
	text   *mocks.MockTextGenerator
	images *mocks.MockImageGenerator
	source *mocks.MockDrugSource
	svc    *service.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithTimeout(t, time.Second)
}

func newFixtureWithTimeout(t *testing.T, timeout time.Duration) *fixture {
	t.Helper()
	f := &fixture{
		repos:  mocks.NewMockRepositories(),
		text:   mocks.NewMockTextGenerator(mocks.ValidSummaryJSON),
		images: &mocks.MockImageGenerator{},
		source: &mocks.MockDrugSource{},
	}
	cfg := &config.Config{AI: config.AIConfig{
		Timeout:       timeout,
		SearchTimeout: timeout,
		ImageTimeout:  timeout,
	}}
	f.svc = service.NewServices(f.repos.Repositories(), service.Externals{
		Text:   f.text,
		Image:  f.images,
		Source: f.source,
		Tokens: auth.NewTokenManager("test-secret", time.Hour),
	}, cfg, zerolog.Nop())
	return f
}

func (f *fixture) addUser(t *testing.T, n int) string {
	t.Helper()
	user := &models.User{
		ID:       fmt.Sprintf("00000000-0000-0000-0000-%012d", n),
		Username: fmt.Sprintf("user%d", n),
		Nickname: fmt.Sprintf("nick%d", n),
	}
	if err := f.repos.User.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}
	return user.ID
}

func (f *fixture) react(t *testing.T, drugID int64, userID, kind string) {
	t.Helper()
	if _, err := f.svc.Reaction.Toggle(context.Background(), drugID, userID, &kind); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
}

func (f *fixture) comment(t *testing.T, drugID int64, userID string, rating *int) {
	t.Helper()
	_, err := f.svc.Comment.Create(context.Background(), drugID, userID, &models.CommentInput{Content: "note", Rating: rating})
	if err != nil {
		t.Fatalf("Create comment failed: %v", err)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
