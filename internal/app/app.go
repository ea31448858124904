package app

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"tripagent/internal/util"
	"tripagent/pkg/auth"
	"tripagent/pkg/domain"
	"tripagent/pkg/planner"
	"tripagent/pkg/store"
	"tripagent/pkg/travel/flights"
	"tripagent/pkg/travel/hotels"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// FlightSearcher is the flight adapter surface the orchestrator needs.
type FlightSearcher interface {
	Search(ctx context.Context, params flights.SearchParams) (domain.FlightResult, error)
}

// HotelSearcher is the hotel adapter surface the orchestrator needs.
type HotelSearcher interface {
	Search(ctx context.Context, params hotels.SearchParams) (domain.HotelResult, error)
}

// RecommendationMailer delivers a finished recommendation to a recipient.
type RecommendationMailer interface {
	SendRecommendation(ctx context.Context, recipient string, rec domain.Recommendation, sharedBy string) error
}

// App is the application core: credential operations and the asynchronous
// search orchestrator.
type App struct {
	store    store.Store
	cache    store.SearchCache
	sessions *store.JWTSessionStore
	refresh  store.RefreshIndex
	flights  FlightSearcher
	hotels   HotelSearcher
	planner  *planner.Planner
	mailer   RecommendationMailer
}

// New wires the application core. mailer may be nil when sharing is not
// configured.
func New(st store.Store, cache store.SearchCache, sessions *store.JWTSessionStore, refresh store.RefreshIndex,
	flights FlightSearcher, hotels HotelSearcher, p *planner.Planner, mailer RecommendationMailer) *App {
	return &App{
		store:    st,
		cache:    cache,
		sessions: sessions,
		refresh:  refresh,
		flights:  flights,
		hotels:   hotels,
		planner:  p,
		mailer:   mailer,
	}
}

// RegisterParams are the signup inputs.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	FullName string
}

func (p *RegisterParams) normalize() {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.FullName = strings.TrimSpace(p.FullName)
}

func (p RegisterParams) validate() error {
	var violations []string
	if !usernamePattern.MatchString(p.Username) {
		violations = append(violations, "username must be 3-50 characters of letters, digits, or underscore")
	}
	if !validEmail(p.Email) {
		violations = append(violations, "invalid email address")
	}
	if err := auth.ValidatePassword(p.Password); err != nil {
		violations = append(violations, err.Error())
	}
	if len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(violations, "; "))
	}
	return nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}

// Register creates a new active user account.
func (a *App) Register(params RegisterParams) (domain.User, error) {
	params.normalize()
	if err := params.validate(); err != nil {
		return domain.User{}, err
	}
	if taken, err := a.store.HasUsername(params.Username); err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	} else if taken {
		return domain.User{}, ErrUsernameTaken
	}
	if taken, err := a.store.HasUserEmail(params.Email); err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	} else if taken {
		return domain.User{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	user := domain.User{
		ID:           util.NewID(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		FullName:     params.FullName,
		Active:       true,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	slog.Info("user registered", "username", user.Username)
	return user, nil
}

// TokenPair is the login/refresh response body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Login verifies credentials and issues a fresh token pair.
func (a *App) Login(username, password string) (TokenPair, error) {
	user, found, err := a.store.GetUserByUsername(strings.TrimSpace(username))
	if err != nil {
		return TokenPair{}, fmt.Errorf("login: %w", err)
	}
	if !found || !user.Active {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}
	return a.issueTokens(user)
}

// Refresh rotates the presented refresh token into a new pair.
func (a *App) Refresh(refreshToken string) (TokenPair, error) {
	username, err := a.sessions.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidRefresh
	}
	user, found, err := a.store.GetUserByUsername(username)
	if err != nil {
		return TokenPair{}, fmt.Errorf("refresh: %w", err)
	}
	if !found || !user.Active {
		return TokenPair{}, ErrInvalidRefresh
	}
	// Rotation: the old token is dead the moment the new pair exists.
	if err := a.sessions.Revoke(refreshToken); err != nil {
		return TokenPair{}, fmt.Errorf("refresh: %w", err)
	}
	return a.issueTokens(user)
}

func (a *App) issueTokens(user domain.User) (TokenPair, error) {
	access, err := a.sessions.NewAccessToken(user.Username)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := a.sessions.NewRefreshToken(user.Username)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if a.refresh != nil {
		if err := a.refresh.Record(user.ID, refresh, a.sessions.RefreshTTL()); err != nil {
			slog.Warn("failed to index refresh token", "user", user.Username, "error", err)
		}
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// Authenticate resolves a bearer access token to its active user.
func (a *App) Authenticate(accessToken string) (domain.User, error) {
	username, err := a.sessions.VerifyAccess(accessToken)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}
	user, found, err := a.store.GetUserByUsername(username)
	if err != nil {
		return domain.User{}, fmt.Errorf("authenticate: %w", err)
	}
	if !found || !user.Active {
		return domain.User{}, ErrInvalidToken
	}
	return user, nil
}

// Logout revokes the presented access token for the rest of its lifetime.
func (a *App) Logout(accessToken string) error {
	return a.sessions.Revoke(accessToken)
}

// DeleteUser revokes the presented access token plus every indexed refresh
// token, then removes the account.
func (a *App) DeleteUser(user domain.User, accessToken string) error {
	if err := a.sessions.Revoke(accessToken); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if a.refresh != nil {
		tokens, err := a.refresh.Tokens(user.ID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		for _, token := range tokens {
			if err := a.sessions.Revoke(token); err != nil {
				return fmt.Errorf("delete user: %w", err)
			}
		}
		if err := a.refresh.Clear(user.ID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
	}
	if err := a.store.DeleteUser(user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	slog.Info("user deleted", "username", user.Username)
	return nil
}
