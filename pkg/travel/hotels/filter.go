package hotels

import (
	"math"
	"sort"

	"tripagent/pkg/domain"
)

// Deal policy constants. These are contractual: changing them changes which
// hotels users see.
const (
	discountCutoffPercent   = 10.0
	longStayThresholdNights = 3
	longStayPointsPerNight  = 5.0
	longStayBonusCap        = 20.0
	maxFilteredResults      = 10
)

// discountPercent computes the percentage saved off the original nightly
// price, floored at zero and rounded to 2 decimal places.
func discountPercent(original, current float64) float64 {
	if original <= 0 {
		return 0
	}
	d := (original - current) / original * 100
	if d < 0 {
		d = 0
	}
	return math.Round(d*100) / 100
}

// longStayBonus awards 5 points per night beyond the threshold, capped at 20.
func longStayBonus(nights int) float64 {
	if nights <= longStayThresholdNights {
		return 0
	}
	bonus := longStayPointsPerNight * float64(nights-longStayThresholdNights)
	if bonus > longStayBonusCap {
		bonus = longStayBonusCap
	}
	return bonus
}

// filterOffers keeps hotels with a discount above the cutoff or a long-stay
// bonus, sorts them by combined savings descending, and returns at most 10.
func filterOffers(properties []rawProperty, priceMin, priceMax float64, nights int) []domain.HotelOffer {
	offers := make([]domain.HotelOffer, 0, len(properties))
	for _, p := range properties {
		current := p.Price.Current
		original := p.Price.Original
		if original == 0 {
			original = current
		}
		if current < priceMin || current > priceMax {
			continue
		}

		discount := discountPercent(original, current)
		bonus := longStayBonus(nights)
		if discount <= discountCutoffPercent && !(nights > longStayThresholdNights && bonus > 0) {
			continue
		}

		amenities := p.Amenities
		if len(amenities) > 5 {
			amenities = amenities[:5]
		}
		offers = append(offers, domain.HotelOffer{
			Name:             defaultString(p.Name, "Unknown Hotel"),
			HotelID:          p.ID,
			PricePerNight:    current,
			TotalPrice:       current * float64(nights),
			OriginalPerNight: original,
			DiscountPercent:  discount,
			LongStayBonus:    bonus,
			Currency:         defaultString(p.Price.Currency, "USD"),
			Rating:           p.ratingString(),
			Address:          defaultString(p.Address.Full, "Address not available"),
			Amenities:        amenities,
			HasDiscount:      discount > 0,
			DiscountAmount:   original - current,
			IsLongStayDeal:   nights > longStayThresholdNights && bonus > 0,
		})
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].DiscountPercent+offers[i].LongStayBonus >
			offers[j].DiscountPercent+offers[j].LongStayBonus
	})
	if len(offers) > maxFilteredResults {
		offers = offers[:maxFilteredResults]
	}
	return offers
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
