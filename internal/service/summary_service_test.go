package service_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mediguide-api/internal/llm"
	"github.com/mediguide-api/internal/service"
	"golang.org/x/sync/errgroup"
)

func TestSummaryService_GenerateThenCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drug := f.repos.Drug.Add("Paracetamol-X", "fever")

	first, err := f.svc.Summary.Get(ctx, drug.ID)
	if err != nil {
		t.Fatalf("first Get failed: %v", err)
	}
	if first.Cached {
		t.Error("Expected cached=false on first read")
	}
	if first.OneLiner != "Relieves fever and mild pain." || len(first.Cautions) != 3 {
		t.Errorf("unexpected summary %+v", first.AISummary)
	}
	if first.Model != "mock-model" {
		t.Errorf("Expected model to be recorded, got %q", first.Model)
	}

	second, err := f.svc.Summary.Get(ctx, drug.ID)
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if !second.Cached {
		t.Error("Expected cached=true on second read")
	}
	if f.text.Calls() != 1 {
		t.Errorf("Expected 1 generator call, got %d", f.text.Calls())
	}

	for _, field := range []struct {
		name string
		a, b interface{}
	}{
		{"one_liner", first.OneLiner, second.OneLiner},
		{"easy_explain", first.EasyExplain, second.EasyExplain},
		{"key_points", first.KeyPoints, second.KeyPoints},
		{"cautions", first.Cautions, second.Cautions},
		{"when_to_see_doctor", first.WhenToSeeDoctor, second.WhenToSeeDoctor},
	} {
		if !reflect.DeepEqual(field.a, field.b) {
			t.Errorf("%s differs between reads: %v vs %v", field.name, field.a, field.b)
		}
	}

	if input := f.text.Inputs()[0]; !strings.Contains(input, "Paracetamol-X") || !strings.Contains(input, "fever") {
		t.Errorf("Expected drug context in generator input, got %q", input)
	}
}

func TestSummaryService_UnknownDrug(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Summary.Get(context.Background(), 42)
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if f.text.Calls() != 0 {
		t.Error("Generator must not be called for a missing drug")
	}
}

func TestSummaryService_Failures(t *testing.T) {
	tests := []struct {
		name     string
		generate func(ctx context.Context, instruction, input string) ([]byte, error)
		wantKind service.GenerationKind
	}{
		{
			name: "upstream status",
			generate: func(ctx context.Context, _, _ string) ([]byte, error) {
				return nil, &llm.UpstreamError{Provider: "openai", StatusCode: 500, Err: errors.New("server error")}
			},
			wantKind: service.GenerationUpstream,
		},
		{
			name: "transport error",
			generate: func(ctx context.Context, _, _ string) ([]byte, error) {
				return nil, errors.New("connection refused")
			},
			wantKind: service.GenerationUpstream,
		},
		{
			name: "timeout",
			generate: func(ctx context.Context, _, _ string) ([]byte, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
			wantKind: service.GenerationTimeout,
		},
		{
			name: "empty response",
			generate: func(ctx context.Context, _, _ string) ([]byte, error) {
				return nil, llm.ErrEmptyResponse
			},
			wantKind: service.GenerationMalformed,
		},
		{
			name: "not json",
			generate: func(ctx context.Context, _, _ string) ([]byte, error) {
				return []byte("Here is your summary: ..."), nil
			},
			wantKind: service.GenerationMalformed,
		},
		{
			name: "missing field",
			generate: func(ctx context.Context, _, _ string) ([]byte, error) {
				return []byte(`{"one_liner": "x", "easy_explain": "y", "key_points": [], "cautions": []}`), nil
			},
			wantKind: service.GenerationMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWithTimeout(t, 50*time.Millisecond)
			ctx := context.Background()
			drug := f.repos.Drug.Add("Drug", "effect")
			f.text.GenerateFunc = tt.generate

			_, err := f.svc.Summary.Get(ctx, drug.ID)
			var genErr *service.GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("Expected GenerationError, got %v", err)
			}
			if genErr.Kind != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, genErr.Kind)
			}
			if f.repos.Summary.Count() != 0 {
				t.Error("Nothing may be stored after a failed generation")
			}

			// The next read retries generation instead of serving a stored failure
			f.text.GenerateFunc = nil
			resp, err := f.svc.Summary.Get(ctx, drug.ID)
			if err != nil {
				t.Fatalf("retry failed: %v", err)
			}
			if resp.Cached {
				t.Error("Expected cached=false after a failed first attempt")
			}
			if f.text.Calls() != 2 {
				t.Errorf("Expected 2 generator calls, got %d", f.text.Calls())
			}
		})
	}
}

func TestSummaryService_ConcurrentFirstRequests(t *testing.T) {
	const workers = 5

	f := newFixture(t)
	drug := f.repos.Drug.Add("Drug", "effect")

	// Hold every generation until all workers have missed the cache
	var arrived sync.WaitGroup
	arrived.Add(workers)
	var mu sync.Mutex
	call := 0
	f.text.GenerateFunc = func(ctx context.Context, _, _ string) ([]byte, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()

		arrived.Done()
		arrived.Wait()
		return []byte(fmt.Sprintf(`{"one_liner": "version %d", "easy_explain": "e",
			"key_points": [], "cautions": [], "when_to_see_doctor": []}`, n)), nil
	}

	results := make([]string, workers)
	fresh := make([]bool, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			resp, err := f.svc.Summary.Get(context.Background(), drug.ID)
			if err != nil {
				return err
			}
			results[i] = resp.OneLiner
			fresh[i] = !resp.Cached
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Get failed: %v", err)
	}

	if f.repos.Summary.Count() != 1 {
		t.Fatalf("Expected exactly 1 stored summary, got %d", f.repos.Summary.Count())
	}
	stored, _ := f.repos.Summary.GetByDrugID(context.Background(), drug.ID)

	freshCount := 0
	for i := range results {
		if results[i] != stored.OneLiner {
			t.Errorf("worker %d served %q, stored row is %q", i, results[i], stored.OneLiner)
		}
		if fresh[i] {
			freshCount++
		}
	}
	if freshCount != 1 {
		t.Errorf("Expected exactly one cached=false response, got %d", freshCount)
	}
}

func TestParseSummary(t *testing.T) {
	valid := `{"one_liner": "a", "easy_explain": "b", "key_points": ["c"], "cautions": [], "when_to_see_doctor": ["d", "e"]}`

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", valid, false},
		{"valid with whitespace", "\n  " + valid + "\n", false},
		{"array", `[1, 2]`, true},
		{"null", `null`, true},
		{"extra key", `{"one_liner": "a", "easy_explain": "b", "key_points": [], "cautions": [], "when_to_see_doctor": [], "score": 1}`, true},
		{"number for string", `{"one_liner": 1, "easy_explain": "b", "key_points": [], "cautions": [], "when_to_see_doctor": []}`, true},
		{"null string", `{"one_liner": null, "easy_explain": "b", "key_points": [], "cautions": [], "when_to_see_doctor": []}`, true},
		{"string for list", `{"one_liner": "a", "easy_explain": "b", "key_points": "c", "cautions": [], "when_to_see_doctor": []}`, true},
		{"null list", `{"one_liner": "a", "easy_explain": "b", "key_points": null, "cautions": [], "when_to_see_doctor": []}`, true},
		{"non-string item", `{"one_liner": "a", "easy_explain": "b", "key_points": [1], "cautions": [], "when_to_see_doctor": []}`, true},
		{"null item", `{"one_liner": "a", "easy_explain": "b", "key_points": [null], "cautions": [], "when_to_see_doctor": []}`, true},
		{"fenced", "```json\n" + valid + "\n```", true},
		{"trailing text", valid + " done", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := service.ParseSummary([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSummary() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (s.OneLiner != "a" || len(s.WhenToSeeDoctor) != 2 || s.Cautions == nil) {
				t.Errorf("unexpected summary %+v", s)
			}
		})
	}
}
