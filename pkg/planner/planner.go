package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"tripagent/pkg/ai"
	"tripagent/pkg/domain"
)

// Sources recorded on the composed recommendation.
const (
	SourceAI       = "ai"
	SourceTemplate = "template"
)

// TripContext is the user-facing framing of a search, carried through to the
// composed recommendation.
type TripContext struct {
	Origin      string
	Destination string
	StartDate   string
	EndDate     string
	Budget      float64
	Interests   []string
	TravelStyle string
}

// Dates renders the stay window; one-way trips have no end date.
func (t TripContext) Dates() string {
	if t.EndDate == "" {
		return fmt.Sprintf("%s (one-way)", t.StartDate)
	}
	return fmt.Sprintf("%s to %s", t.StartDate, t.EndDate)
}

func (t TripContext) interestsLine() string {
	if len(t.Interests) == 0 {
		return "General sightseeing"
	}
	return strings.Join(t.Interests, ", ")
}

func (t TripContext) style() string {
	if t.TravelStyle == "" {
		return "comfort"
	}
	return t.TravelStyle
}

// Planner composes one recommendation per search from the flight and hotel
// datasets. With a generator it asks the LLM; without one, or when the LLM
// call fails, it falls back to the deterministic template.
type Planner struct {
	gen ai.TextGenerator
}

// New builds a Planner. gen may be nil for template-only composition.
func New(gen ai.TextGenerator) *Planner {
	return &Planner{gen: gen}
}

// Compose always returns a recommendation; composition never fails a search.
func (p *Planner) Compose(ctx context.Context, trip TripContext, flightRes domain.FlightResult, hotelRes domain.HotelResult) *domain.Recommendation {
	flightData := marshalDataset(flightRes)
	hotelData := marshalDataset(hotelRes)

	body := ""
	source := SourceTemplate
	if p.gen != nil {
		text, err := p.gen.GenerateText(ctx, "", buildPrompt(trip, flightData, hotelData))
		if err != nil {
			slog.Warn("ai recommendation failed, using template", "error", err)
		} else {
			body = text
			source = SourceAI
		}
	}
	if body == "" {
		body = templateBody(trip, flightData, hotelData)
	}

	return &domain.Recommendation{
		Title:       fmt.Sprintf("Trip Recommendation for %s", trip.Destination),
		Destination: trip.Destination,
		Dates:       trip.Dates(),
		Budget:      trip.Budget,
		Interests:   trip.Interests,
		Body:        body,
		Steps: []string{
			"Real flight search completed via Amadeus API",
			"Real hotel search completed via Booking.com API",
			"AI-powered trip coordination completed",
		},
		Source: source,
	}
}

func marshalDataset(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func buildPrompt(trip TripContext, flightData, hotelData string) string {
	var b strings.Builder
	b.WriteString("You are a professional travel agent creating a comprehensive trip recommendation.\n\n")
	b.WriteString("Trip Details:\n")
	fmt.Fprintf(&b, "- Destination: %s\n", trip.Destination)
	fmt.Fprintf(&b, "- Dates: %s\n", trip.Dates())
	fmt.Fprintf(&b, "- Budget: $%s\n", formatBudget(trip.Budget))
	fmt.Fprintf(&b, "- Travel Style: %s\n", trip.style())
	fmt.Fprintf(&b, "- Interests: %s\n\n", trip.interestsLine())
	fmt.Fprintf(&b, "Flight Data: %s\n\n", flightData)
	fmt.Fprintf(&b, "Hotel Data: %s\n\n", hotelData)
	b.WriteString(`Create a comprehensive travel recommendation that includes:
1. Trip overview with personalized insights
2. Analysis of the flight options with specific recommendations
3. Analysis of the hotel options with specific recommendations
4. Detailed budget breakdown
5. Personalized activity recommendations based on interests
6. Practical travel tips
7. Why this itinerary works well for the traveler

Format with clear sections using emojis and markdown formatting.
Be specific about prices, amenities, and practical details.`)
	return b.String()
}

func templateBody(trip TripContext, flightData, hotelData string) string {
	return fmt.Sprintf(`# Trip Recommendation for %s

## 🎯 Trip Overview
- **Destination**: %s
- **Dates**: %s
- **Budget**: $%s
- **Travel Style**: %s
- **Interests**: %s

## ✈️ Flight Options (Real-Time Data)
%s

## 🏨 Hotel Options (Real-Time Data)
%s

## 💰 Budget Analysis
Budget optimization based on real pricing data from our API partners.

## 🎨 Activity Recommendations
Personalized suggestions based on your interests: %s

## 📋 Travel Tips
- Real-time pricing ensures accurate budget planning
- Book soon for best availability
- Check for last-minute deals

## 🌟 Why This Plan Works
This itinerary uses real-time data from Amadeus and Booking.com to ensure accuracy and availability.`,
		trip.Destination,
		trip.Destination,
		trip.Dates(),
		formatBudget(trip.Budget),
		titleCase(trip.style()),
		trip.interestsLine(),
		flightData,
		hotelData,
		trip.interestsLine(),
	)
}

// formatBudget renders the budget with thousands separators, dropping the
// decimals when the amount is whole.
func formatBudget(budget float64) string {
	whole := int64(budget)
	frac := budget - float64(whole)
	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 && r != '-' {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac > 0 {
		b.WriteString(strings.TrimPrefix(fmt.Sprintf("%.2f", frac), "0"))
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
