package hotels

import "strings"

type destinationEntry struct {
	code string
	id   string
}

// destinationIDs maps airport/city codes to Booking.com dest_id values.
// Ordered so partial matches resolve the same way every time. A lookup
// service would replace this table for arbitrary destinations.
var destinationIDs = []destinationEntry{
	{"LAX", "-553173"},  // Los Angeles
	{"NYC", "-2601889"}, // New York City
	{"JFK", "-2601889"}, // New York City
	{"LGA", "-2601889"}, // New York City
	{"EWR", "-2601889"}, // New York City
	{"LHR", "-2601889"}, // London (fallback)
	{"CDG", "-1456928"}, // Paris
	{"NRT", "-246227"},  // Tokyo
	{"DXB", "-782831"},  // Dubai
	{"SYD", "-1603135"}, // Sydney
	{"CHI", "-2604890"}, // Chicago
	{"ORD", "-2604890"}, // Chicago
	{"MIA", "-1781081"}, // Miami
	{"LAS", "-23768"},   // Las Vegas
}

const defaultDestinationID = "-553173" // Los Angeles

// destinationID resolves a destination code or city name to a dest_id,
// falling back to partial matches and then to the default.
func destinationID(destination string) string {
	dest := strings.ToUpper(strings.TrimSpace(destination))
	if dest == "" {
		return defaultDestinationID
	}
	for _, entry := range destinationIDs {
		if entry.code == dest {
			return entry.id
		}
	}
	for _, entry := range destinationIDs {
		if strings.Contains(dest, entry.code) || strings.Contains(entry.code, dest) {
			return entry.id
		}
	}
	return defaultDestinationID
}
