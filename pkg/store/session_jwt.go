package store

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	// TokenTypeAccess and TokenTypeRefresh are the values of the "type" claim.
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	// AccessTokenTTL and RefreshTokenTTL are the token lifetimes.
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var defaultJWTLeeway = 30 * time.Second

var (
	// ErrInvalidToken covers malformed, mis-signed, expired, and wrong-type tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked indicates a structurally valid token that was revoked.
	ErrTokenRevoked = errors.New("token revoked")
)

type sessionClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// JWTSessionStore issues and validates HS256 session tokens. The subject claim
// carries the username; the "type" claim separates access from refresh tokens.
type JWTSessionStore struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	leeway     time.Duration
	revoker    TokenRevoker
}

// NewJWTSessionStore builds an HS256 session store over the shared secret.
func NewJWTSessionStore(secret string, revoker TokenRevoker) *JWTSessionStore {
	return &JWTSessionStore{
		secret:     []byte(secret),
		accessTTL:  AccessTokenTTL,
		refreshTTL: RefreshTokenTTL,
		leeway:     defaultJWTLeeway,
		revoker:    revoker,
	}
}

// NewAccessToken signs a short-lived access token for the username.
func (s *JWTSessionStore) NewAccessToken(username string) (string, error) {
	return s.sign(username, TokenTypeAccess, s.accessTTL)
}

// NewRefreshToken signs a long-lived refresh token for the username.
func (s *JWTSessionStore) NewRefreshToken(username string) (string, error) {
	return s.sign(username, TokenTypeRefresh, s.refreshTTL)
}

// RefreshTTL reports the refresh token lifetime.
func (s *JWTSessionStore) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *JWTSessionStore) sign(username, tokenType string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt store not configured")
	}
	now := time.Now().UTC()
	claims := sessionClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyAccess validates an access token and returns its username.
func (s *JWTSessionStore) VerifyAccess(token string) (string, error) {
	return s.verify(token, TokenTypeAccess)
}

// VerifyRefresh validates a refresh token and returns its username.
func (s *JWTSessionStore) VerifyRefresh(token string) (string, error) {
	return s.verify(token, TokenTypeRefresh)
}

func (s *JWTSessionStore) verify(token, wantType string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	if claims.TokenType != wantType {
		return "", ErrInvalidToken
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(token)
		if err != nil {
			return "", err
		}
		if revoked {
			return "", ErrTokenRevoked
		}
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Revoke marks the token unusable for the remainder of its lifetime.
// Tokens that fail to parse are already unusable and revoke as a no-op.
func (s *JWTSessionStore) Revoke(token string) error {
	if s.revoker == nil {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	return s.revoker.Revoke(token, time.Until(claims.ExpiresAt.Time))
}

func (s *JWTSessionStore) parse(token string) (sessionClaims, error) {
	claims := sessionClaims{}
	token = strings.TrimSpace(token)
	if token == "" {
		return claims, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
	)
	if err != nil || !parsed.Valid {
		return claims, ErrInvalidToken
	}
	return claims, nil
}
