package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedSendsBatchAndDecodesVectors(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed-model", nil))
	vectors, err := embedder.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if gotPath != "/api/embed" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["model"] != "embed-model" {
		t.Fatalf("model = %v", gotBody["model"])
	}
	if len(vectors) != 2 || vectors[0][0] != 0.1 {
		t.Fatalf("vectors = %v", vectors)
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{1}}})
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed-model", nil))
	if _, err := embedder.Embed(context.Background(), []string{"one", "two"}); err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}

func TestCompleteTrimsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"response": "  the answer \n"})
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "gen-model", "embed", nil))
	reply, err := generator.Complete(context.Background(), "question")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "the answer" {
		t.Fatalf("reply = %q", reply)
	}
}

func TestCompleteJSONRequestsJSONFormatAndTrimsProse(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"response": "Here you go: {\"a\": 1} hope it helps"})
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "gen-model", "embed", nil))
	raw, err := generator.CompleteJSON(context.Background(), "extract")
	if err != nil {
		t.Fatalf("CompleteJSON() error = %v", err)
	}
	if gotBody["format"] != "json" {
		t.Fatalf("format = %v", gotBody["format"])
	}
	if raw != `{"a": 1}` {
		t.Fatalf("raw = %q", raw)
	}
}

func TestCallSurfacesHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "gen-model", "embed", nil))
	_, err := generator.Complete(context.Background(), "question")

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", statusErr.StatusCode)
	}
}

func TestClassifyOllamaError(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{"canceled", context.Canceled, false, false},
		{"rate limited", &HTTPStatusError{StatusCode: http.StatusTooManyRequests}, true, true},
		{"server error", &HTTPStatusError{StatusCode: http.StatusBadGateway}, true, true},
		{"client error", &HTTPStatusError{StatusCode: http.StatusBadRequest}, false, false},
		{"unknown", errors.New("boom"), false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyOllamaError(tc.err)
			if got.Retryable != tc.retryable || got.RecordFailure != tc.recordFailure {
				t.Fatalf("classifyOllamaError(%v) = %+v", tc.err, got)
			}
		})
	}
}
