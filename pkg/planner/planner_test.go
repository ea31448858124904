package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tripagent/pkg/domain"
)

type stubGenerator struct {
	text   string
	err    error
	prompt string
}

func (s *stubGenerator) GenerateText(_ context.Context, _, userPrompt string) (string, error) {
	s.prompt = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func trip() TripContext {
	return TripContext{
		Origin:      "JFK",
		Destination: "CDG",
		StartDate:   "2026-12-01",
		EndDate:     "2026-12-08",
		Budget:      2500,
		Interests:   []string{"museums", "food"},
	}
}

func datasets() (domain.FlightResult, domain.HotelResult) {
	return domain.FlightResult{Source: domain.SourceLive, Offers: []domain.FlightOffer{{ID: "offer-1", TotalPrice: "512.30"}}},
		domain.HotelResult{Source: domain.SourceLive, Destination: "CDG", Nights: 7}
}

func TestComposeWithGenerator(t *testing.T) {
	gen := &stubGenerator{text: "Fly to Paris, stay a week."}
	p := New(gen)
	flightRes, hotelRes := datasets()

	rec := p.Compose(context.Background(), trip(), flightRes, hotelRes)
	if rec.Source != SourceAI {
		t.Fatalf("source = %q, want ai", rec.Source)
	}
	if rec.Body != "Fly to Paris, stay a week." {
		t.Fatalf("body = %q", rec.Body)
	}
	if rec.Title != "Trip Recommendation for CDG" {
		t.Fatalf("title = %q", rec.Title)
	}
	if rec.Dates != "2026-12-01 to 2026-12-08" {
		t.Fatalf("dates = %q", rec.Dates)
	}
	if len(rec.Steps) != 3 {
		t.Fatalf("steps = %v", rec.Steps)
	}

	// Both datasets and the trip framing reach the prompt.
	for _, want := range []string{"Destination: CDG", "Budget: $2,500", "offer-1", "museums, food"} {
		if !strings.Contains(gen.prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestComposeFallsBackOnGeneratorError(t *testing.T) {
	p := New(&stubGenerator{err: errors.New("model overloaded")})
	flightRes, hotelRes := datasets()

	rec := p.Compose(context.Background(), trip(), flightRes, hotelRes)
	if rec.Source != SourceTemplate {
		t.Fatalf("source = %q, want template", rec.Source)
	}
	if !strings.Contains(rec.Body, "# Trip Recommendation for CDG") {
		t.Fatalf("template body missing title: %q", rec.Body)
	}
}

func TestComposeWithoutGenerator(t *testing.T) {
	p := New(nil)
	flightRes, hotelRes := datasets()

	rec := p.Compose(context.Background(), trip(), flightRes, hotelRes)
	if rec.Source != SourceTemplate {
		t.Fatalf("source = %q, want template", rec.Source)
	}
	for _, want := range []string{
		"**Budget**: $2,500",
		"Flight Options (Real-Time Data)",
		"Hotel Options (Real-Time Data)",
		"museums, food",
	} {
		if !strings.Contains(rec.Body, want) {
			t.Fatalf("template missing %q", want)
		}
	}
}

func TestComposeOneWayAndDefaults(t *testing.T) {
	p := New(nil)
	tc := trip()
	tc.EndDate = ""
	tc.Interests = nil
	flightRes, hotelRes := datasets()

	rec := p.Compose(context.Background(), tc, flightRes, hotelRes)
	if rec.Dates != "2026-12-01 (one-way)" {
		t.Fatalf("dates = %q", rec.Dates)
	}
	if !strings.Contains(rec.Body, "General sightseeing") {
		t.Fatal("expected default interests line")
	}
}

func TestFormatBudget(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{500, "500"},
		{2500, "2,500"},
		{100000, "100,000"},
		{1234.5, "1,234.50"},
	}
	for _, tc := range cases {
		if got := formatBudget(tc.in); got != tc.want {
			t.Errorf("formatBudget(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
