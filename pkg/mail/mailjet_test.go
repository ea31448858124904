package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tripagent/pkg/domain"
)

func sampleRecommendation() domain.Recommendation {
	return domain.Recommendation{
		Title:       "Trip Recommendation for CDG",
		Destination: "CDG",
		Dates:       "2026-12-01 to 2026-12-08",
		Budget:      2500,
		Body:        "Visit the **Louvre**.\n\nThen eat well.",
		Source:      "ai",
	}
}

func TestSendRecommendation(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3.1/send" {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "mj-key" || pass != "mj-secret" {
			http.Error(w, "bad auth", http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"Messages":[{"Status":"success"}]}`))
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "mj-key", "mj-secret", "noreply@example.com", "Trip Agent")
	err := s.SendRecommendation(context.Background(), "friend@example.com", sampleRecommendation(), "alice")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(got.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(got.Messages))
	}
	msg := got.Messages[0]
	if msg.From.Email != "noreply@example.com" || msg.From.Name != "Trip Agent" {
		t.Errorf("from = %+v", msg.From)
	}
	if len(msg.To) != 1 || msg.To[0].Email != "friend@example.com" {
		t.Errorf("to = %+v", msg.To)
	}
	if msg.Subject != "🌍 Travel Recommendation from alice" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.TextPart, "Visit the **Louvre**.") {
		t.Errorf("text part missing body: %q", msg.TextPart)
	}
	if !strings.Contains(msg.HTMLPart, "$2500") {
		t.Errorf("html part missing budget: %q", msg.HTMLPart)
	}
}

func TestSendRecommendationAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "mj-key", "mj-secret", "noreply@example.com", "")
	err := s.SendRecommendation(context.Background(), "friend@example.com", sampleRecommendation(), "alice")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got: %v", err)
	}
}

func TestSendRecommendationRequiresCredentials(t *testing.T) {
	s := NewSender("", "", "", "noreply@example.com", "")
	err := s.SendRecommendation(context.Background(), "friend@example.com", sampleRecommendation(), "alice")
	if err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestFormatBodyHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "paragraphs and line breaks",
			in:   "first line\nsecond line\n\nnew paragraph",
			want: []string{"first line<br>second line", `</p><p style="margin: 15px 0; line-height: 1.6;">new paragraph`},
		},
		{
			name: "bold spans",
			in:   "see the **Eiffel Tower** today",
			want: []string{`<strong style="color: #2c3e50;">Eiffel Tower</strong>`},
		},
		{
			name: "html escaped before formatting",
			in:   "<script>alert(1)</script>",
			want: []string{"&lt;script&gt;"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := formatBodyHTML(tc.in)
			for _, want := range tc.want {
				if !strings.Contains(got, want) {
					t.Errorf("formatBodyHTML(%q) = %q, missing %q", tc.in, got, want)
				}
			}
			if !strings.HasPrefix(got, "<p") {
				t.Errorf("output not wrapped in paragraph: %q", got)
			}
		})
	}
}

func TestFormatBodyHTMLEmpty(t *testing.T) {
	got := formatBodyHTML("   ")
	if !strings.Contains(got, "No recommendation available") {
		t.Fatalf("empty body = %q", got)
	}
}
