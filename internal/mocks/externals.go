package mocks

import (
	"context"
	"sync"

	"github.com/mediguide-api/internal/druginfo"
	"github.com/mediguide-api/internal/llm"
	"github.com/mediguide-api/internal/models"
)

// ValidSummaryJSON is a well-formed summary document
const ValidSummaryJSON = `{
	"one_liner": "Relieves fever and mild pain.",
	"easy_explain": "Lowers fever and eases headaches and muscle aches.",
	"key_points": ["Take after meals", "Works within an hour"],
	"cautions": ["Do not exceed 4g a day", "Avoid alcohol", "Check other cold medicines"],
	"when_to_see_doctor": ["Fever lasting more than 3 days"]
}`

// Verify interface compliance
var (
	_ llm.TextGenerator  = (*MockTextGenerator)(nil)
	_ llm.ImageGenerator = (*MockImageGenerator)(nil)
	_ druginfo.Source    = (*MockDrugSource)(nil)
)

// MockTextGenerator is a mock implementation of llm.TextGenerator
type MockTextGenerator struct {
	mu           sync.Mutex
	GenerateFunc func(ctx context.Context, instruction, input string) ([]byte, error)
	Response     []byte
	Err          error
	ModelName    string
	calls        int
	inputs       []string
}

func NewMockTextGenerator(response string) *MockTextGenerator {
	return &MockTextGenerator{Response: []byte(response), ModelName: "mock-model"}
}

func (m *MockTextGenerator) GenerateJSON(ctx context.Context, instruction, input string) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.inputs = append(m.inputs, input)
	fn, resp, err := m.GenerateFunc, m.Response, m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, instruction, input)
	}
	return resp, err
}

func (m *MockTextGenerator) Model() string { return m.ModelName }

// Calls returns how many times GenerateJSON ran
func (m *MockTextGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Inputs returns the inputs GenerateJSON received
func (m *MockTextGenerator) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inputs...)
}

// MockImageGenerator is a mock implementation of llm.ImageGenerator
type MockImageGenerator struct {
	mu        sync.Mutex
	ImageFunc func(ctx context.Context, prompt string) (*models.GeneratedImage, error)
	Prompts   []string
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (*models.GeneratedImage, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	fn := m.ImageFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return &models.GeneratedImage{MimeType: "image/png", Base64: "aW1hZ2U="}, nil
}

// MockDrugSource is a mock implementation of druginfo.Source
type MockDrugSource struct {
	mu           sync.Mutex
	Records      []models.DrugRecord
	Err          error
	FetchAllCall int
	Searches     []string
}

func (m *MockDrugSource) Search(ctx context.Context, name string) ([]models.DrugRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches = append(m.Searches, name)
	return m.Records, m.Err
}

func (m *MockDrugSource) FetchAll(ctx context.Context) ([]models.DrugRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchAllCall++
	return m.Records, m.Err
}
