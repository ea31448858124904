package flights

import (
	"strings"
	"testing"
	"time"
)

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(dateLayout)
}

func validParams() SearchParams {
	return SearchParams{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: futureDate(30),
		ReturnDate:    futureDate(37),
		Adults:        2,
		Currency:      "USD",
	}
}

func TestValidateAcceptsGoodParams(t *testing.T) {
	p := validParams()
	p.Normalize()
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeUppercasesAndDefaults(t *testing.T) {
	p := SearchParams{Origin: " jfk ", Destination: "lax", DepartureDate: futureDate(10), Adults: 1}
	p.Normalize()
	if p.Origin != "JFK" || p.Destination != "LAX" {
		t.Fatalf("codes not normalized: %q %q", p.Origin, p.Destination)
	}
	if p.Currency != "USD" {
		t.Fatalf("currency default missing: %q", p.Currency)
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	p := SearchParams{
		Origin:        "J1K",
		Destination:   "LAXX",
		DepartureDate: "15-12-2024",
		Adults:        0,
		Infants:       2,
	}
	p.Normalize()
	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"invalid airport code: J1K",
		"invalid airport code: LAXX",
		"invalid date format",
		"adults must be between 1 and 9",
		"infants cannot exceed",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateReturnBeforeDeparture(t *testing.T) {
	p := validParams()
	p.ReturnDate = futureDate(20)
	p.DepartureDate = futureDate(30)
	p.Normalize()
	err := p.Validate()
	if err == nil || !strings.Contains(err.Error(), "return date must be after departure date") {
		t.Fatalf("expected return-date violation, got: %v", err)
	}
}

func TestValidateDateTooFarInPast(t *testing.T) {
	p := validParams()
	p.DepartureDate = "2020-01-01"
	p.ReturnDate = ""
	p.Normalize()
	err := p.Validate()
	if err == nil || !strings.Contains(err.Error(), "too far in the past") {
		t.Fatalf("expected past-date violation, got: %v", err)
	}
}

func TestValidateMaxStopsRange(t *testing.T) {
	p := validParams()
	stops := 5
	p.MaxStops = &stops
	p.Normalize()
	err := p.Validate()
	if err == nil || !strings.Contains(err.Error(), "max stops must be between 0 and 3") {
		t.Fatalf("expected max-stops violation, got: %v", err)
	}
}
