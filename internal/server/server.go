package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tripagent/internal/app"
	"tripagent/internal/ratelimit"
	"tripagent/internal/util"
	"tripagent/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	// RedisClient enables distributed rate limiting; nil selects the
	// in-process limiter.
	RedisClient *redis.Client

	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int
	SearchRateLimitPerMinute   int
}

// Server exposes the HTTP endpoints for the trip planner backend.
type Server struct {
	app *app.App
	mux *http.ServeMux

	registerLimiter *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
	searchLimiter   *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	registerLimit := cfg.RegisterRateLimitPerMinute
	if registerLimit <= 0 {
		registerLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	searchLimit := cfg.SearchRateLimitPerMinute
	if searchLimit <= 0 {
		searchLimit = 10
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		if cfg.RedisClient == nil {
			limiter, err := ratelimit.NewFixedWindowLimiter(limit, rateWindow)
			if err != nil {
				return nil, fmt.Errorf("init %s limiter: %w", name, err)
			}
			return limiter, nil
		}
		prefix := "tripagent:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisClient, prefix, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	registerLimiter, err := newLimiter("register", registerLimit)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	searchLimiter, err := newLimiter("search", searchLimit)
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:             cfg.App,
		mux:             http.NewServeMux(),
		registerLimiter: registerLimiter,
		loginLimiter:    loginLimiter,
		searchLimiter:   searchLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/register", s.handleRegister)
	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/refresh", s.handleRefresh)
	s.mux.Handle("/logout", s.authenticated(s.handleLogout))

	// account
	s.mux.Handle("/user", s.authenticated(s.handleUser))
	s.mux.Handle("/user/profile", s.authenticated(s.handleProfile))
	s.mux.Handle("/user/searches", s.authenticated(s.handleUserSearches))

	// searches
	s.mux.Handle("/search", s.authenticated(s.handleSearchSubmit))
	s.mux.Handle("/search/", s.authenticated(s.handleSearchByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrapper
type authHandler func(w http.ResponseWriter, r *http.Request, user domain.User, token string)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.audit(r, "authorize", "fail", "reason", "missing_token")
			writeError(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}
		user, err := s.app.Authenticate(token)
		if err != nil {
			s.audit(r, "authorize", "fail", "reason", "invalid_token")
			writeError(w, http.StatusUnauthorized, "could not validate credentials")
			return
		}
		next(w, r, user, token)
	})
}

// auth handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registerLimiter, "too many registration attempts") {
		s.audit(r, "register", "rate_limited")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	user, err := s.app.Register(app.RegisterParams{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		FullName: r.PostFormValue("full_name"),
	})
	if err != nil {
		s.audit(r, "register", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "register", "success", "username", user.Username)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "login", "rate_limited")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	pair, err := s.app.Login(r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		s.audit(r, "login", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "login", "success", "username", r.PostFormValue("username"))
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	token := strings.TrimSpace(r.PostFormValue("refresh_token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}
	pair, err := s.app.Refresh(token)
	if err != nil {
		s.audit(r, "refresh", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "refresh", "success")
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, user domain.User, token string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.app.Logout(token); err != nil {
		s.audit(r, "logout", "fail", "username", user.Username, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "logout", "success", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// account handlers

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request, user domain.User, token string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.DeleteUser(user, token); err != nil {
		s.audit(r, "user.delete", "fail", "username", user.Username, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "user.delete", "success", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User account deleted successfully"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, user domain.User, _ string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUserSearches(w http.ResponseWriter, r *http.Request, user domain.User, _ string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 20)
	summaries, err := s.app.ListSearches(user, skip, limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": summaries})
}

// search handlers

func (s *Server) handleSearchSubmit(w http.ResponseWriter, r *http.Request, user domain.User, _ string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.searchLimiter, "too many search requests") {
		s.audit(r, "search.submit", "rate_limited", "username", user.Username)
		return
	}
	req, err := parseSearchForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := s.app.Submit(r.Context(), user, req)
	if err != nil {
		s.audit(r, "search.submit", "fail", "username", user.Username, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "search.submit", "success", "username", user.Username, "search_id", rec.SearchID)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"search_id":  rec.SearchID,
		"status":     rec.Status,
		"created_at": rec.CreatedAt,
	})
}

func (s *Server) handleSearchByID(w http.ResponseWriter, r *http.Request, user domain.User, _ string) {
	rest := strings.TrimPrefix(r.URL.Path, "/search/")
	id, tail, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "search not found")
		return
	}
	switch {
	case tail == "" && r.Method == http.MethodGet:
		rec, err := s.app.GetSearch(r.Context(), user, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case tail == "share" && r.Method == http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		recipient := r.PostFormValue("recipient_email")
		if err := s.app.ShareSearch(r.Context(), user, id, recipient); err != nil {
			s.audit(r, "search.share", "fail", "username", user.Username, "reason", err.Error())
			writeAppError(w, err)
			return
		}
		s.audit(r, "search.share", "success", "username", user.Username, "search_id", id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Recommendation sent to " + strings.TrimSpace(recipient)})
	default:
		methodNotAllowed(w)
	}
}

// parseSearchForm maps the submitted form onto a SearchRequest. Numeric field
// parse failures are reported individually; value-range checks live in the
// application layer.
func parseSearchForm(r *http.Request) (app.SearchRequest, error) {
	if err := r.ParseForm(); err != nil {
		return app.SearchRequest{}, errors.New("invalid form body")
	}
	req := app.SearchRequest{
		Origin:        r.PostFormValue("origin"),
		Destination:   r.PostFormValue("destination"),
		DepartureDate: r.PostFormValue("departure_date"),
		ReturnDate:    r.PostFormValue("return_date"),
		TravelStyle:   r.PostFormValue("travel_style"),
		Currency:      r.PostFormValue("currency"),
		HotelSort:     r.PostFormValue("hotel_sort"),
		HotelLocale:   r.PostFormValue("hotel_locale"),
	}

	var err error
	if req.Adults, err = formInt(r, "adults", 1); err != nil {
		return req, err
	}
	if req.Children, err = formInt(r, "children", 0); err != nil {
		return req, err
	}
	if req.Infants, err = formInt(r, "infants", 0); err != nil {
		return req, err
	}
	if raw := strings.TrimSpace(r.PostFormValue("max_stops")); raw != "" {
		stops, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return req, fmt.Errorf("invalid max_stops: %s", raw)
		}
		req.MaxStops = &stops
	}
	if req.HotelNights, err = formInt(r, "hotel_nights", 0); err != nil {
		return req, err
	}
	if req.HotelAdults, err = formInt(r, "hotel_adults", 2); err != nil {
		return req, err
	}
	if req.HotelRooms, err = formInt(r, "hotel_rooms", 1); err != nil {
		return req, err
	}
	if req.HotelChildren, err = formInt(r, "hotel_children", 0); err != nil {
		return req, err
	}
	if req.HotelPriceMin, err = formFloat(r, "hotel_price_min", 0); err != nil {
		return req, err
	}
	if req.HotelPriceMax, err = formFloat(r, "hotel_price_max", 500); err != nil {
		return req, err
	}
	if req.Budget, err = formFloat(r, "budget", 20000); err != nil {
		return req, err
	}
	if raw := r.PostFormValue("interests"); raw != "" {
		for _, interest := range strings.Split(raw, ",") {
			if interest = strings.TrimSpace(interest); interest != "" {
				req.Interests = append(req.Interests, interest)
			}
		}
	}
	return req, nil
}

func formInt(r *http.Request, field string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.PostFormValue(field))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, raw)
	}
	return value, nil
}

func formFloat(r *http.Request, field string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(r.PostFormValue(field))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, raw)
	}
	return value, nil
}

func queryInt(r *http.Request, field string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(field))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

// helpers

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps application sentinels onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrValidation),
		errors.Is(err, app.ErrUsernameTaken),
		errors.Is(err, app.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrInvalidRefresh),
		errors.Is(err, app.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrSearchForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrSearchNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrShareUnavailable),
		errors.Is(err, app.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", clientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + clientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func clientIP(r *http.Request) string {
	if xfwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xfwd != "" {
		parts := strings.Split(xfwd, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
