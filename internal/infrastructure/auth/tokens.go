package auth

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims carried by a session token.
type Claims struct {
	UserID string `json:"uid"`
	jwtlib.RegisteredClaims
}

// TokenService issues and validates HMAC-signed session tokens.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
	issuer    string

	now func() time.Time
}

// NewTokenService creates a TokenService.
func NewTokenService(secret string, expiresIn time.Duration, issuer string) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		issuer:    issuer,
		now:       time.Now,
	}
}

// WithNow overrides the time source. Used in tests.
func (s *TokenService) WithNow(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue returns a signed token for userID and its expiry.
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	if len(s.secret) == 0 || s.expiresIn <= 0 || userID == "" {
		return "", time.Time{}, ErrTokenInvalid
	}

	now := s.now().UTC()
	exp := now.Add(s.expiresIn)

	c := Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Validate parses token and returns the user id it was issued for.
func (s *TokenService) Validate(token string) (string, error) {
	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
	)

	var c Claims
	tok, err := p.ParseWithClaims(token, &c, func(*jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if tok == nil || !tok.Valid || c.ExpiresAt == nil || c.UserID == "" || c.Subject != c.UserID {
		return "", ErrTokenInvalid
	}
	return c.UserID, nil
}
