package domain

import "time"

type SearchStatus string

const (
	SearchProcessing SearchStatus = "processing"
	SearchCompleted  SearchStatus = "completed"
	SearchFailed     SearchStatus = "failed"
)

// ResultSource marks whether adapter output came from the live provider,
// from the labeled fallback dataset, or matched nothing.
type ResultSource string

const (
	SourceLive      ResultSource = "live"
	SourceFallback  ResultSource = "fallback"
	SourceNoResults ResultSource = "no_results"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName,omitempty"`
	Active       bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SearchRecord is the externally observable state of one asynchronous search.
// Status moves processing -> completed|failed exactly once and never back.
type SearchRecord struct {
	SearchID  string          `json:"searchId"`
	UserID    string          `json:"-"`
	Status    SearchStatus    `json:"status"`
	Results   *Recommendation `json:"results,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SearchSummary is the persisted, listable view of a finished search.
type SearchSummary struct {
	SearchID    string       `json:"searchId"`
	UserID      string       `json:"-"`
	Destination string       `json:"destination"`
	Status      SearchStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type FlightSegment struct {
	DepartureAirport  string `json:"departureAirport"`
	DepartureTerminal string `json:"departureTerminal,omitempty"`
	DepartureTime     string `json:"departureTime"`
	ArrivalAirport    string `json:"arrivalAirport"`
	ArrivalTerminal   string `json:"arrivalTerminal,omitempty"`
	ArrivalTime       string `json:"arrivalTime"`
	Carrier           string `json:"carrier"`
	FlightNumber      string `json:"flightNumber"`
	Aircraft          string `json:"aircraft,omitempty"`
	Duration          string `json:"duration,omitempty"`
}

type FlightItinerary struct {
	Duration string          `json:"duration"`
	Segments []FlightSegment `json:"segments"`
	Stops    int             `json:"stops"`
}

type FlightFee struct {
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

type FlightOffer struct {
	ID          string            `json:"id"`
	TotalPrice  string            `json:"totalPrice"`
	BasePrice   string            `json:"basePrice,omitempty"`
	Currency    string            `json:"currency"`
	Fees        []FlightFee       `json:"fees,omitempty"`
	Itineraries []FlightItinerary `json:"itineraries"`
}

// FlightResult is the tagged adapter output: Offers is always valid for the
// given Source, so downstream code switches on Source instead of probing keys.
type FlightResult struct {
	Source  ResultSource  `json:"source"`
	Message string        `json:"message,omitempty"`
	Offers  []FlightOffer `json:"flights"`
}

type HotelOffer struct {
	Name             string   `json:"name"`
	HotelID          string   `json:"hotelId"`
	PricePerNight    float64  `json:"pricePerNight"`
	TotalPrice       float64  `json:"totalPrice"`
	OriginalPerNight float64  `json:"originalPricePerNight"`
	DiscountPercent  float64  `json:"discountPercentage"`
	LongStayBonus    float64  `json:"longStayDiscount"`
	Currency         string   `json:"currency"`
	Rating           string   `json:"rating,omitempty"`
	Address          string   `json:"address,omitempty"`
	Amenities        []string `json:"amenities,omitempty"`
	HasDiscount      bool     `json:"hasDiscount"`
	DiscountAmount   float64  `json:"discountAmount"`
	IsLongStayDeal   bool     `json:"isLongStayDeal"`
}

type HotelResult struct {
	Source      ResultSource `json:"source"`
	Message     string       `json:"message,omitempty"`
	Destination string       `json:"destination"`
	CheckIn     string       `json:"checkIn"`
	CheckOut    string       `json:"checkOut"`
	Nights      int          `json:"nights"`
	Offers      []HotelOffer `json:"hotels"`
}

// Recommendation is the single composed itinerary for one search.
type Recommendation struct {
	Title       string   `json:"title"`
	Destination string   `json:"destination"`
	Dates       string   `json:"dates"`
	Budget      float64  `json:"budget"`
	Interests   []string `json:"interests,omitempty"`
	Body        string   `json:"fullRecommendation"`
	Steps       []string `json:"tasks,omitempty"`
	Source      string   `json:"source"`
}
