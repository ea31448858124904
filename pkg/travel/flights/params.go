package flights

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// SearchParams are the validated inputs to a flight search.
type SearchParams struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	Children      int
	Infants       int
	MaxStops      *int
	AvoidAirlines []string
	Currency      string
}

// Normalize uppercases codes and applies defaults. Call before Validate.
func (p *SearchParams) Normalize() {
	p.Origin = strings.ToUpper(strings.TrimSpace(p.Origin))
	p.Destination = strings.ToUpper(strings.TrimSpace(p.Destination))
	p.DepartureDate = strings.TrimSpace(p.DepartureDate)
	p.ReturnDate = strings.TrimSpace(p.ReturnDate)
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
}

// Validate checks all parameters and reports every violation at once, so a
// caller fixing bad input sees the full list rather than one failure per try.
func (p SearchParams) Validate() error {
	var violations []string

	if !isAirportCode(p.Origin) {
		violations = append(violations, fmt.Sprintf("invalid airport code: %s (must be 3 letters)", p.Origin))
	}
	if !isAirportCode(p.Destination) {
		violations = append(violations, fmt.Sprintf("invalid airport code: %s (must be 3 letters)", p.Destination))
	}

	departure, err := parseSearchDate(p.DepartureDate)
	if err != nil {
		violations = append(violations, fmt.Sprintf("departure_date: %v", err))
	}
	if p.ReturnDate != "" {
		ret, err := parseSearchDate(p.ReturnDate)
		if err != nil {
			violations = append(violations, fmt.Sprintf("return_date: %v", err))
		} else if !departure.IsZero() && !ret.After(departure) {
			violations = append(violations, "return date must be after departure date")
		}
	}

	if p.Adults < 1 || p.Adults > 9 {
		violations = append(violations, "adults must be between 1 and 9")
	}
	if p.Children < 0 || p.Children > 9 {
		violations = append(violations, "children must be between 0 and 9")
	}
	if p.Infants < 0 || p.Infants > 9 {
		violations = append(violations, "infants must be between 0 and 9")
	}
	if p.Infants > p.Adults {
		violations = append(violations, "number of infants cannot exceed number of adults")
	}
	if p.MaxStops != nil && (*p.MaxStops < 0 || *p.MaxStops > 3) {
		violations = append(violations, "max stops must be between 0 and 3")
	}

	if len(violations) > 0 {
		return errors.New(strings.Join(violations, "; "))
	}
	return nil
}

func isAirportCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// parseSearchDate accepts YYYY-MM-DD dates up to a year in the past
// (demo searches reuse historical dates).
func parseSearchDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", value)
	}
	earliest := time.Now().AddDate(0, 0, -365)
	if t.Before(earliest.Truncate(24 * time.Hour)) {
		return time.Time{}, fmt.Errorf("date %s is too far in the past", value)
	}
	return t, nil
}
