package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"tripagent/pkg/domain"
)

// ErrRateLimited indicates the provider returned 429; the search should fail
// rather than silently serve fallback data.
var ErrRateLimited = errors.New("flight provider rate limit exceeded")

const (
	tokenPath        = "/v1/security/oauth2/token"
	flightOffersPath = "/v2/shopping/flight-offers"

	// tokenExpiryMargin is subtracted from the provider's expires_in so a
	// token is refreshed before it can expire mid-request.
	tokenExpiryMargin = 60 * time.Second

	defaultTokenLifetime = 1799
	maxOffers            = 10
)

// Client searches flight offers on the Amadeus API.
type Client struct {
	http      *resty.Client
	apiKey    string
	apiSecret string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient builds an Amadeus client against baseURL.
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second),
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns the cached OAuth2 token, fetching a fresh one when the
// cache is empty or within the expiry margin.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     c.apiKey,
			"client_secret": c.apiSecret,
		}).
		Post(tokenPath)
	if err != nil {
		return "", fmt.Errorf("amadeus token request: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		// Invalid credentials: hand a placeholder to the search call, which
		// will then serve the labeled fallback dataset on its own 401.
		slog.Warn("amadeus auth rejected, downstream search will serve fallback data")
		c.token = "invalid-credentials"
		c.tokenExpiry = time.Now().Add(time.Hour)
		return c.token, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("amadeus token request: status %d", resp.StatusCode())
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return "", fmt.Errorf("amadeus token decode: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("amadeus token response missing access_token")
	}
	lifetime := tok.ExpiresIn
	if lifetime <= 0 {
		lifetime = defaultTokenLifetime
	}
	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(lifetime)*time.Second - tokenExpiryMargin)
	return c.token, nil
}

// Search validates params and returns a tagged flight result. Provider 4xx
// responses (other than 429) degrade to the fallback dataset; 429 maps to
// ErrRateLimited.
func (c *Client) Search(ctx context.Context, params SearchParams) (domain.FlightResult, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return domain.FlightResult{}, err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return domain.FlightResult{}, err
	}

	query := map[string]string{
		"originLocationCode":      params.Origin,
		"destinationLocationCode": params.Destination,
		"departureDate":           params.DepartureDate,
		"adults":                  strconv.Itoa(params.Adults),
		"currencyCode":            params.Currency,
		"max":                     strconv.Itoa(maxOffers),
	}
	if params.ReturnDate != "" {
		query["returnDate"] = params.ReturnDate
	}
	if params.Children > 0 {
		query["children"] = strconv.Itoa(params.Children)
	}
	if params.Infants > 0 {
		query["infants"] = strconv.Itoa(params.Infants)
	}
	if params.MaxStops != nil {
		if *params.MaxStops == 0 {
			query["nonStop"] = "true"
		} else {
			query["nonStop"] = "false"
		}
	}
	if len(params.AvoidAirlines) > 0 {
		query["excludedAirlineCodes"] = strings.Join(params.AvoidAirlines, ",")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Accept", "application/json").
		SetQueryParams(query).
		Get(flightOffersPath)
	if err != nil {
		return domain.FlightResult{}, fmt.Errorf("amadeus search request: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusTooManyRequests:
		return domain.FlightResult{}, ErrRateLimited
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		slog.Warn("amadeus search rejected, serving fallback flights",
			"status", resp.StatusCode(),
			"origin", params.Origin,
			"destination", params.Destination)
		return fallbackResult(params), nil
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.FlightResult{}, fmt.Errorf("amadeus search: status %d", resp.StatusCode())
	}

	var payload offersResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return domain.FlightResult{}, fmt.Errorf("amadeus search decode: %w", err)
	}
	return normalizeOffers(payload), nil
}

type offersResponse struct {
	Data []rawOffer `json:"data"`
}

type rawOffer struct {
	ID    string `json:"id"`
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
		Base     string `json:"base"`
		Fees     []struct {
			Amount string `json:"amount"`
			Type   string `json:"type"`
		} `json:"fees"`
	} `json:"price"`
	Itineraries []struct {
		Duration string `json:"duration"`
		Segments []struct {
			Departure struct {
				IataCode string `json:"iataCode"`
				Terminal string `json:"terminal"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IataCode string `json:"iataCode"`
				Terminal string `json:"terminal"`
				At       string `json:"at"`
			} `json:"arrival"`
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
			Aircraft    struct {
				Code string `json:"code"`
			} `json:"aircraft"`
			Duration string `json:"duration"`
		} `json:"segments"`
	} `json:"itineraries"`
}

func normalizeOffers(payload offersResponse) domain.FlightResult {
	if len(payload.Data) == 0 {
		return domain.FlightResult{
			Source:  domain.SourceNoResults,
			Message: "No flights found for the given criteria",
			Offers:  []domain.FlightOffer{},
		}
	}

	data := payload.Data
	if len(data) > maxOffers {
		data = data[:maxOffers]
	}
	offers := make([]domain.FlightOffer, 0, len(data))
	for _, raw := range data {
		offer := domain.FlightOffer{
			ID:         raw.ID,
			TotalPrice: raw.Price.Total,
			BasePrice:  raw.Price.Base,
			Currency:   defaultString(raw.Price.Currency, "USD"),
		}
		for _, fee := range raw.Price.Fees {
			offer.Fees = append(offer.Fees, domain.FlightFee{Amount: fee.Amount, Type: fee.Type})
		}
		for _, rawItin := range raw.Itineraries {
			itin := domain.FlightItinerary{Duration: rawItin.Duration}
			for _, seg := range rawItin.Segments {
				itin.Segments = append(itin.Segments, domain.FlightSegment{
					DepartureAirport:  seg.Departure.IataCode,
					DepartureTerminal: seg.Departure.Terminal,
					DepartureTime:     seg.Departure.At,
					ArrivalAirport:    seg.Arrival.IataCode,
					ArrivalTerminal:   seg.Arrival.Terminal,
					ArrivalTime:       seg.Arrival.At,
					Carrier:           seg.CarrierCode,
					FlightNumber:      seg.Number,
					Aircraft:          seg.Aircraft.Code,
					Duration:          seg.Duration,
				})
			}
			itin.Stops = len(itin.Segments) - 1
			if itin.Stops < 0 {
				itin.Stops = 0
			}
			offer.Itineraries = append(offer.Itineraries, itin)
		}
		offers = append(offers, offer)
	}
	return domain.FlightResult{
		Source:  domain.SourceLive,
		Message: fmt.Sprintf("Found %d flight(s)", len(offers)),
		Offers:  offers,
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
