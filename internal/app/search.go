package app

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"tripagent/pkg/domain"
	"tripagent/pkg/planner"
	"tripagent/pkg/travel/flights"
	"tripagent/pkg/travel/hotels"
)

const (
	minBudget = 500.0
	maxBudget = 100000.0

	// searchTimeout bounds one background search across both providers and
	// the composer.
	searchTimeout = 2 * time.Minute

	dateLayout = "2006-01-02"
)

var airportCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// SearchRequest carries one trip search submission.
type SearchRequest struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	Children      int
	Infants       int
	MaxStops      *int
	TravelStyle   string
	Currency      string

	HotelNights   int
	HotelAdults   int
	HotelRooms    int
	HotelChildren int
	HotelPriceMin float64
	HotelPriceMax float64
	HotelSort     string
	HotelLocale   string

	Budget    float64
	Interests []string
}

func (r *SearchRequest) normalize() {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))
	if r.Adults == 0 {
		r.Adults = 1
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
}

// validate collects every violation so the caller sees the full list at once.
func (r SearchRequest) validate() error {
	var violations []string
	if !airportCodePattern.MatchString(r.Origin) {
		violations = append(violations, fmt.Sprintf("invalid origin airport code: %s", r.Origin))
	}
	if !airportCodePattern.MatchString(r.Destination) {
		violations = append(violations, fmt.Sprintf("invalid destination airport code: %s", r.Destination))
	}
	departure, err := time.Parse(dateLayout, r.DepartureDate)
	if err != nil {
		violations = append(violations, fmt.Sprintf("invalid departure date: %s (use YYYY-MM-DD)", r.DepartureDate))
	}
	if r.ReturnDate != "" {
		ret, retErr := time.Parse(dateLayout, r.ReturnDate)
		if retErr != nil {
			violations = append(violations, fmt.Sprintf("invalid return date: %s (use YYYY-MM-DD)", r.ReturnDate))
		} else if err == nil && !ret.After(departure) {
			violations = append(violations, "return date must be after departure date")
		}
	}
	if r.Adults < 1 || r.Adults > 9 {
		violations = append(violations, "adults must be between 1 and 9")
	}
	if r.Children < 0 || r.Children > 9 {
		violations = append(violations, "children must be between 0 and 9")
	}
	if r.Infants < 0 || r.Infants > 9 {
		violations = append(violations, "infants must be between 0 and 9")
	}
	if r.Infants > r.Adults {
		violations = append(violations, "infants cannot exceed adults")
	}
	if r.MaxStops != nil && (*r.MaxStops < 0 || *r.MaxStops > 3) {
		violations = append(violations, "max stops must be between 0 and 3")
	}
	if r.Budget < minBudget || r.Budget > maxBudget {
		violations = append(violations, fmt.Sprintf("budget must be between %.0f and %.0f", minBudget, maxBudget))
	}
	if r.HotelPriceMin < 0 || (r.HotelPriceMax > 0 && r.HotelPriceMax < r.HotelPriceMin) {
		violations = append(violations, "hotel price range is invalid")
	}
	if r.HotelNights < 0 || r.HotelNights > 30 {
		violations = append(violations, "hotel nights must be between 0 and 30")
	}
	if len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(violations, "; "))
	}
	return nil
}

// hotelCheckOut derives the stay end: an explicit night count wins, otherwise
// the return date bounds the stay. Empty means no hotel search.
func (r SearchRequest) hotelCheckOut() string {
	if r.HotelNights > 0 {
		departure, err := time.Parse(dateLayout, r.DepartureDate)
		if err != nil {
			return ""
		}
		return departure.AddDate(0, 0, r.HotelNights).Format(dateLayout)
	}
	return r.ReturnDate
}

// Submit validates the request, records a processing search, and launches the
// background pipeline. It returns the processing record immediately.
func (a *App) Submit(ctx context.Context, user domain.User, req SearchRequest) (domain.SearchRecord, error) {
	req.normalize()
	if err := req.validate(); err != nil {
		return domain.SearchRecord{}, err
	}

	rec := domain.SearchRecord{
		SearchID:  uuid.NewString(),
		UserID:    user.ID,
		Status:    domain.SearchProcessing,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.cache.Put(ctx, rec); err != nil {
		return domain.SearchRecord{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	go a.runSearch(rec, req)

	slog.Info("search submitted", "search_id", rec.SearchID, "username", user.Username,
		"origin", req.Origin, "destination", req.Destination)
	return rec, nil
}

// runSearch executes flights -> hotels -> compose and writes exactly one
// terminal record. Provider fallbacks are not failures; validation errors,
// rate limits, and transport errors are.
func (a *App) runSearch(rec domain.SearchRecord, req SearchRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	flightRes, err := a.flights.Search(ctx, flights.SearchParams{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Adults:        req.Adults,
		Children:      req.Children,
		Infants:       req.Infants,
		MaxStops:      req.MaxStops,
		Currency:      req.Currency,
	})
	if err != nil {
		a.finishSearch(ctx, rec, req.Destination, nil, fmt.Sprintf("flight search failed: %v", err))
		return
	}

	hotelRes, err := a.searchHotels(ctx, req)
	if err != nil {
		a.finishSearch(ctx, rec, req.Destination, nil, fmt.Sprintf("hotel search failed: %v", err))
		return
	}

	recommendation := a.planner.Compose(ctx, planner.TripContext{
		Origin:      req.Origin,
		Destination: req.Destination,
		StartDate:   req.DepartureDate,
		EndDate:     req.ReturnDate,
		Budget:      req.Budget,
		Interests:   req.Interests,
		TravelStyle: req.TravelStyle,
	}, flightRes, hotelRes)

	a.finishSearch(ctx, rec, req.Destination, recommendation, "")
}

func (a *App) searchHotels(ctx context.Context, req SearchRequest) (domain.HotelResult, error) {
	checkOut := req.hotelCheckOut()
	if checkOut == "" {
		// One-way trip without a night count: nothing to book.
		return domain.HotelResult{
			Source:      domain.SourceNoResults,
			Message:     "No hotels found for the given criteria.",
			Destination: req.Destination,
			CheckIn:     req.DepartureDate,
			Offers:      []domain.HotelOffer{},
		}, nil
	}
	return a.hotels.Search(ctx, hotels.SearchParams{
		Destination: req.Destination,
		CheckIn:     req.DepartureDate,
		CheckOut:    checkOut,
		Adults:      req.HotelAdults,
		Children:    req.HotelChildren,
		Rooms:       req.HotelRooms,
		Currency:    req.Currency,
		PriceMin:    req.HotelPriceMin,
		PriceMax:    req.HotelPriceMax,
		OrderBy:     req.HotelSort,
		Locale:      req.HotelLocale,
	})
}

// finishSearch writes the single terminal record and persists the summary row.
// The pipeline context may already be expired (a timed-out adapter call is one
// of the ways a search fails); the terminal write must still land, so it runs
// on a detached context.
func (a *App) finishSearch(ctx context.Context, rec domain.SearchRecord, destination string, results *domain.Recommendation, errMsg string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if errMsg != "" {
		rec.Status = domain.SearchFailed
		rec.Error = errMsg
		slog.Warn("search failed", "search_id", rec.SearchID, "error", errMsg)
	} else {
		rec.Status = domain.SearchCompleted
		rec.Results = results
		slog.Info("search completed", "search_id", rec.SearchID, "source", results.Source)
	}
	if err := a.cache.Put(ctx, rec); err != nil {
		slog.Error("failed to store search result", "search_id", rec.SearchID, "error", err)
	}
	if err := a.store.SaveSearch(rec, destination); err != nil {
		slog.Warn("failed to persist search summary", "search_id", rec.SearchID, "error", err)
	}
}

// GetSearch returns the record for id. Unknown ids are not found; records
// owned by another user are forbidden regardless of status.
func (a *App) GetSearch(ctx context.Context, user domain.User, id string) (domain.SearchRecord, error) {
	rec, found, err := a.cache.Get(ctx, id)
	if err != nil {
		return domain.SearchRecord{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return domain.SearchRecord{}, ErrSearchNotFound
	}
	if rec.UserID != user.ID {
		return domain.SearchRecord{}, ErrSearchForbidden
	}
	return rec, nil
}

// ListSearches returns the user's persisted search summaries, newest first.
func (a *App) ListSearches(user domain.User, skip, limit int) ([]domain.SearchSummary, error) {
	summaries, err := a.store.ListSearchesByUser(user.ID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return summaries, nil
}

// ShareSearch emails a completed recommendation to recipient.
func (a *App) ShareSearch(ctx context.Context, user domain.User, id, recipient string) error {
	if a.mailer == nil {
		return ErrShareUnavailable
	}
	recipient = strings.ToLower(strings.TrimSpace(recipient))
	if !validEmail(recipient) {
		return fmt.Errorf("%w: invalid recipient email address", ErrValidation)
	}
	rec, err := a.GetSearch(ctx, user, id)
	if err != nil {
		return err
	}
	if rec.Status != domain.SearchCompleted || rec.Results == nil {
		return fmt.Errorf("%w: search has no shareable results", ErrValidation)
	}
	if err := a.mailer.SendRecommendation(ctx, recipient, *rec.Results, user.Username); err != nil {
		return fmt.Errorf("share search: %w", err)
	}
	slog.Info("recommendation shared", "search_id", id, "username", user.Username)
	return nil
}
