package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnthropicGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("x-api-key") != "test-key" {
			http.Error(w, "no key", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("missing anthropic-version header")
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if req.Model != DefaultAnthropicModel {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		fmt.Fprint(w, `{"content":[{"type":"text","text":"  Plan your trip.  "}]}`)
	}))
	defer srv.Close()

	g := NewAnthropicGenerator(srv.URL, "test-key", "")
	text, err := g.GenerateText(context.Background(), "", "Plan a trip to Paris")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Plan your trip." {
		t.Fatalf("text = %q", text)
	}
}

func TestAnthropicGenerateTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"max_tokens required"}}`)
	}))
	defer srv.Close()

	g := NewAnthropicGenerator(srv.URL, "test-key", "")
	_, err := g.GenerateText(context.Background(), "", "prompt")
	if err == nil || !strings.Contains(err.Error(), "max_tokens required") {
		t.Fatalf("expected api error message, got: %v", err)
	}
}

func TestAnthropicGenerateTextRequiresKey(t *testing.T) {
	g := NewAnthropicGenerator("", "", "")
	if _, err := g.GenerateText(context.Background(), "", "prompt"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestAnthropicGenerateTextEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[]}`)
	}))
	defer srv.Close()

	g := NewAnthropicGenerator(srv.URL, "test-key", "")
	if _, err := g.GenerateText(context.Background(), "", "prompt"); err == nil {
		t.Fatal("expected error for empty content")
	}
}
