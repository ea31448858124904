package hotels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"tripagent/pkg/domain"
)

// ErrRateLimited indicates the provider returned 429; the search should fail
// rather than silently serve fallback data.
var ErrRateLimited = errors.New("hotel provider rate limit exceeded")

const (
	searchPath = "/v1/hotels/search"
	dateLayout = "2006-01-02"
)

// SearchParams are the inputs to a hotel search.
type SearchParams struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Adults      int
	Children    int
	Rooms       int
	Currency    string
	PriceMin    float64
	PriceMax    float64
	OrderBy     string
	Locale      string
}

func (p *SearchParams) applyDefaults() {
	if p.Adults <= 0 {
		p.Adults = 2
	}
	if p.Rooms <= 0 {
		p.Rooms = 1
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.PriceMax <= 0 {
		p.PriceMax = 1000
	}
	if p.OrderBy == "" {
		p.OrderBy = "price"
	}
	if p.Locale == "" {
		p.Locale = "en-gb"
	}
}

// Validate checks the stay dates: YYYY-MM-DD, check-in not in the past,
// check-out strictly after check-in.
func (p SearchParams) Validate() error {
	checkIn, err := time.Parse(dateLayout, p.CheckIn)
	if err != nil {
		return fmt.Errorf("invalid check-in date: %s (use YYYY-MM-DD)", p.CheckIn)
	}
	checkOut, err := time.Parse(dateLayout, p.CheckOut)
	if err != nil {
		return fmt.Errorf("invalid check-out date: %s (use YYYY-MM-DD)", p.CheckOut)
	}
	if checkIn.Before(time.Now().Truncate(24 * time.Hour)) {
		return errors.New("check-in date must be in the future")
	}
	if !checkOut.After(checkIn) {
		return errors.New("check-out must be after check-in")
	}
	return nil
}

// Nights returns the stay length in nights; zero when dates are invalid.
func (p SearchParams) Nights() int {
	checkIn, err1 := time.Parse(dateLayout, p.CheckIn)
	checkOut, err2 := time.Parse(dateLayout, p.CheckOut)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Client searches hotels through the Booking.com RapidAPI gateway.
type Client struct {
	http   *resty.Client
	apiKey string
	host   string
}

// NewClient builds a RapidAPI hotel client. baseURL overrides the production
// endpoint in tests; empty means https://<host>.
func NewClient(baseURL, apiKey, host string) *Client {
	if host == "" {
		host = "booking-com.p.rapidapi.com"
	}
	if baseURL == "" {
		baseURL = "https://" + host
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second),
		apiKey: apiKey,
		host:   host,
	}
}

type rawProperty struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price struct {
		Current  float64 `json:"current"`
		Original float64 `json:"original"`
		Currency string  `json:"currency"`
	} `json:"price"`
	Rating struct {
		Value any `json:"value"`
	} `json:"rating"`
	Address struct {
		Full string `json:"full"`
	} `json:"address"`
	Amenities []string `json:"amenities"`
}

func (p rawProperty) ratingString() string {
	if p.Rating.Value == nil {
		return "N/A"
	}
	switch v := p.Rating.Value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

type searchResponse struct {
	Properties []rawProperty `json:"properties"`
}

// Search validates params and returns a tagged hotel result. A 403 from the
// gateway degrades to the fallback dataset; 429 maps to ErrRateLimited.
func (c *Client) Search(ctx context.Context, params SearchParams) (domain.HotelResult, error) {
	params.applyDefaults()
	if err := params.Validate(); err != nil {
		return domain.HotelResult{}, err
	}
	nights := params.Nights()

	query := map[string]string{
		"locale":             params.Locale,
		"dest_type":          "city",
		"dest_id":            destinationID(params.Destination),
		"checkin_date":       params.CheckIn,
		"checkout_date":      params.CheckOut,
		"adults_number":      strconv.Itoa(params.Adults),
		"order_by":           params.OrderBy,
		"filter_by_currency": params.Currency,
		"room_number":        strconv.Itoa(params.Rooms),
	}
	if params.Children > 0 {
		query["children_number"] = strconv.Itoa(params.Children)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-RapidAPI-Key", c.apiKey).
		SetHeader("X-RapidAPI-Host", c.host).
		SetQueryParams(query).
		Get(searchPath)
	if err != nil {
		return domain.HotelResult{}, fmt.Errorf("hotel search request: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusTooManyRequests:
		return domain.HotelResult{}, ErrRateLimited
	case http.StatusForbidden:
		slog.Warn("hotel gateway denied access, serving fallback hotels",
			"destination", params.Destination)
		return fallbackResult(params, nights), nil
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.HotelResult{}, fmt.Errorf("hotel search: status %d", resp.StatusCode())
	}

	var payload searchResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return domain.HotelResult{}, fmt.Errorf("hotel search decode: %w", err)
	}

	result := domain.HotelResult{
		Source:      domain.SourceLive,
		Destination: params.Destination,
		CheckIn:     params.CheckIn,
		CheckOut:    params.CheckOut,
		Nights:      nights,
		Offers:      []domain.HotelOffer{},
	}
	if len(payload.Properties) == 0 {
		result.Source = domain.SourceNoResults
		result.Message = "No hotels found for the given criteria."
		return result, nil
	}

	offers := filterOffers(payload.Properties, params.PriceMin, params.PriceMax, nights)
	if len(offers) == 0 {
		result.Source = domain.SourceNoResults
		result.Message = "No hotels found with discounts >10% or long-stay deals."
		return result, nil
	}
	result.Offers = offers
	result.Message = fmt.Sprintf("Found %d hotel(s)", len(offers))
	return result, nil
}

// fallbackResult returns the static demo dataset served when the gateway
// rejects the request.
func fallbackResult(params SearchParams, nights int) domain.HotelResult {
	bonus := 0.0
	longStay := nights > longStayThresholdNights
	if longStay {
		bonus = 5.0
	}
	offers := []domain.HotelOffer{
		{
			Name:             "Sample Hotel Downtown LA",
			HotelID:          "12345",
			PricePerNight:    120.0,
			TotalPrice:       120.0 * float64(nights),
			OriginalPerNight: 150.0,
			DiscountPercent:  20.0,
			LongStayBonus:    bonus,
			Currency:         "USD",
			Rating:           "4.2",
			Address:          "Downtown Los Angeles, CA",
			Amenities:        []string{"WiFi", "Pool", "Gym", "Parking", "Restaurant"},
			HasDiscount:      true,
			DiscountAmount:   30.0,
			IsLongStayDeal:   longStay,
		},
		{
			Name:             "Budget Inn LA",
			HotelID:          "67890",
			PricePerNight:    80.0,
			TotalPrice:       80.0 * float64(nights),
			OriginalPerNight: 100.0,
			DiscountPercent:  20.0,
			LongStayBonus:    bonus,
			Currency:         "USD",
			Rating:           "3.8",
			Address:          "Hollywood, Los Angeles, CA",
			Amenities:        []string{"WiFi", "Parking", "Continental Breakfast"},
			HasDiscount:      true,
			DiscountAmount:   20.0,
			IsLongStayDeal:   longStay,
		},
	}
	return domain.HotelResult{
		Source:      domain.SourceFallback,
		Message:     "Found 2 hotel(s)",
		Destination: params.Destination,
		CheckIn:     params.CheckIn,
		CheckOut:    params.CheckOut,
		Nights:      nights,
		Offers:      offers,
	}
}
