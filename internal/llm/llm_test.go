package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mediguide-api/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAI(&config.AIConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/v1/",
		Model:      "gpt-4o-mini",
		ImageModel: "dall-e-3",
	})
}

func TestOpenAI_GenerateJSON(t *testing.T) {
	var gotBody map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"symptoms\":[\"headache\"]}"}}]
		}`))
	})

	out, err := client.GenerateJSON(context.Background(), "instruction", "input")
	if err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}
	if string(out) != `{"symptoms":["headache"]}` {
		t.Errorf("unexpected content %s", out)
	}

	format, _ := gotBody["response_format"].(map[string]interface{})
	if format["type"] != "json_object" {
		t.Errorf("Expected json_object response format, got %v", gotBody["response_format"])
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %v", gotBody["model"])
	}
}

func TestOpenAI_GenerateJSON_UpstreamStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad request", "type": "invalid_request_error"}}`))
	})

	_, err := client.GenerateJSON(context.Background(), "instruction", "input")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
	if upErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", upErr.StatusCode)
	}
}

func TestOpenAI_GenerateJSON_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`))
	})

	_, err := client.GenerateJSON(context.Background(), "instruction", "input")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestOpenAI_GenerateJSON_Deadline(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GenerateJSON(ctx, "instruction", "input")
	if err == nil {
		t.Fatal("Expected error after deadline")
	}
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("Expected context deadline, got %v", ctx.Err())
	}
}

func TestOpenAI_GenerateImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"created": 1, "data": [{"b64_json": "aGVsbG8="}]}`))
	})

	img, err := client.GenerateImage(context.Background(), "a friendly infographic")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if img.MimeType != "image/png" || img.Base64 != "aGVsbG8=" {
		t.Errorf("unexpected image %+v", img)
	}
}

func TestGemini_ResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			"joined text parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
			}}},
			`{"a":1}`,
		},
		{
			"non-text parts skipped",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}, genai.Text("ok")}},
			}}},
			"ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.want {
				t.Errorf("responseText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewTextGenerator_UnknownProvider(t *testing.T) {
	_, _, err := NewTextGenerator(context.Background(), &config.AIConfig{Provider: "other"})
	if err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &UpstreamError{Provider: "openai", StatusCode: 502, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("Expected UpstreamError to unwrap to its cause")
	}
}
