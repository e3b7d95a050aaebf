package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mediguide-api/internal/druginfo"
	"github.com/mediguide-api/internal/models"
	"github.com/mediguide-api/internal/service"
	"golang.org/x/sync/errgroup"
)

var sampleRecords = []models.DrugRecord{
	{Name: "Tylenol", Effect: "fever"},
	{Name: "Gelusil", Effect: "indigestion"},
	{Name: "Tylenol", Effect: "duplicate row"},
	{Name: "", Effect: "nameless"},
}

func TestCatalogService_Bootstrap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.source.Records = sampleRecords

	result, err := f.svc.Catalog.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if result.Skipped || result.Fetched != 4 || result.Inserted != 2 {
		t.Errorf("unexpected result %+v", result)
	}

	again, err := f.svc.Catalog.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("second Bootstrap failed: %v", err)
	}
	if !again.Skipped || again.Inserted != 0 {
		t.Errorf("Expected second run to skip, got %+v", again)
	}
	if f.source.FetchAllCall != 1 {
		t.Errorf("Expected the API to be fetched once, got %d", f.source.FetchAllCall)
	}
	if n, _ := f.repos.Drug.Count(ctx); n != 2 {
		t.Errorf("Expected 2 drugs, got %d", n)
	}
}

func TestCatalogService_Bootstrap_Concurrent(t *testing.T) {
	f := newFixture(t)
	f.source.Records = sampleRecords

	const runs = 8
	results := make([]*models.BootstrapResult, runs)
	var g errgroup.Group
	for i := 0; i < runs; i++ {
		g.Go(func() error {
			r, err := f.svc.Catalog.Bootstrap(context.Background())
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Bootstrap failed: %v", err)
	}

	populated := 0
	for _, r := range results {
		if !r.Skipped {
			populated++
		}
	}
	if populated != 1 {
		t.Errorf("Expected exactly one populating run, got %d", populated)
	}
	if n, _ := f.repos.Drug.Count(context.Background()); n != 2 {
		t.Errorf("Expected 2 drugs, got %d", n)
	}
}

func TestCatalogService_Bootstrap_SourceError(t *testing.T) {
	f := newFixture(t)
	f.source.Err = druginfo.ErrUnauthorized

	_, err := f.svc.Catalog.Bootstrap(context.Background())
	var ingErr *service.IngestionError
	if !errors.As(err, &ingErr) || !ingErr.Unauthorized {
		t.Errorf("Expected unauthorized IngestionError, got %v", err)
	}
	if f.repos.Drug.PopulateCalls != 0 {
		t.Error("Nothing may be written when the fetch fails")
	}
}

func TestCatalogService_SaveByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := f.repos.Drug.Add("Tylenol", "fever")
	f.source.Records = []models.DrugRecord{
		{Name: "Tylenol", Effect: "ignored"},
		{Name: "Tylenol ER", Effect: "long acting", ImageURL: "http://img/er.png"},
	}

	result, err := f.svc.Catalog.SaveByName(ctx, " Tylenol ")
	if err != nil {
		t.Fatalf("SaveByName failed: %v", err)
	}
	if f.source.Searches[0] != "Tylenol" {
		t.Errorf("Expected trimmed search name, got %q", f.source.Searches[0])
	}
	if result.SavedCount != 2 || result.FailedCount != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Saved[0].ID != existing.ID || result.Saved[0].Created {
		t.Errorf("Expected existing drug reused, got %+v", result.Saved[0])
	}
	if !result.Saved[1].Created || result.Saved[1].ImageURL == nil || *result.Saved[1].ImageURL != "http://img/er.png" {
		t.Errorf("Expected new drug with image, got %+v", result.Saved[1])
	}

	stored, _ := f.repos.Drug.GetByID(ctx, existing.ID)
	if stored.Effect != "fever" {
		t.Error("Existing drug must not be overwritten")
	}
}

func TestCatalogService_SaveByName_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Catalog.SaveByName(ctx, ""); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	f.source.Err = errors.New("connection reset")
	_, err := f.svc.Catalog.SaveByName(ctx, "x")
	var ingErr *service.IngestionError
	if !errors.As(err, &ingErr) || ingErr.Unauthorized {
		t.Errorf("Expected generic IngestionError, got %v", err)
	}

	f.source.Err = nil
	f.source.Records = nil
	result, err := f.svc.Catalog.SaveByName(ctx, "nothing")
	if err != nil {
		t.Fatalf("SaveByName failed: %v", err)
	}
	if result.SavedCount != 0 || result.Saved == nil {
		t.Errorf("Expected empty non-nil result, got %+v", result)
	}
}
