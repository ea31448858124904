package flights

import (
	"fmt"

	"tripagent/pkg/domain"
)

// fallbackResult returns the static demo dataset served when the provider
// rejects the request. Offers reuse the requested route and dates so the
// output still reads like an answer to the search.
func fallbackResult(params SearchParams) domain.FlightResult {
	direct := domain.FlightOffer{
		ID:         "mock_flight_1",
		TotalPrice: "299.99",
		BasePrice:  "250.00",
		Currency:   "USD",
		Itineraries: []domain.FlightItinerary{
			{
				Duration: "PT5H30M",
				Stops:    0,
				Segments: []domain.FlightSegment{
					{
						DepartureAirport:  params.Origin,
						DepartureTerminal: "4",
						DepartureTime:     fmt.Sprintf("%sT08:00:00", params.DepartureDate),
						ArrivalAirport:    params.Destination,
						ArrivalTerminal:   "1",
						ArrivalTime:       fmt.Sprintf("%sT10:30:00", params.DepartureDate),
						Carrier:           "AA",
						FlightNumber:      "1234",
						Aircraft:          "321",
						Duration:          "PT5H30M",
					},
				},
			},
		},
	}
	oneStop := domain.FlightOffer{
		ID:         "mock_flight_2",
		TotalPrice: "399.99",
		BasePrice:  "350.00",
		Currency:   "USD",
		Itineraries: []domain.FlightItinerary{
			{
				Duration: "PT7H15M",
				Stops:    1,
				Segments: []domain.FlightSegment{
					{
						DepartureAirport:  params.Origin,
						DepartureTerminal: "4",
						DepartureTime:     fmt.Sprintf("%sT14:00:00", params.DepartureDate),
						ArrivalAirport:    "DEN",
						ArrivalTerminal:   "A",
						ArrivalTime:       fmt.Sprintf("%sT16:00:00", params.DepartureDate),
						Carrier:           "UA",
						FlightNumber:      "5678",
						Aircraft:          "737",
						Duration:          "PT2H00M",
					},
					{
						DepartureAirport:  "DEN",
						DepartureTerminal: "A",
						DepartureTime:     fmt.Sprintf("%sT17:30:00", params.DepartureDate),
						ArrivalAirport:    params.Destination,
						ArrivalTerminal:   "3",
						ArrivalTime:       fmt.Sprintf("%sT19:15:00", params.DepartureDate),
						Carrier:           "UA",
						FlightNumber:      "9012",
						Aircraft:          "320",
						Duration:          "PT2H45M",
					},
				},
			},
		},
	}
	return domain.FlightResult{
		Source:  domain.SourceFallback,
		Message: "Found 2 flight(s)",
		Offers:  []domain.FlightOffer{direct, oneStop},
	}
}
