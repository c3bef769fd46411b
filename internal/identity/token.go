package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "tplans"

// Claims is the session token payload.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for user and its expiry.
func (i *TokenIssuer) Issue(user domain.SessionUser) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	claims := Claims{
		Email: user.Email,
		Name:  user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature, issuer and expiry of token.
func (i *TokenIssuer) Parse(token string) (domain.SessionUser, time.Time, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.SessionUser{}, time.Time{}, fmt.Errorf("session expired: %w", domain.ErrNotSignedIn)
		}
		return domain.SessionUser{}, time.Time{}, fmt.Errorf("invalid session token: %w: %w", domain.ErrNotSignedIn, err)
	}
	if claims.Subject == "" {
		return domain.SessionUser{}, time.Time{}, fmt.Errorf("session token has no subject: %w", domain.ErrNotSignedIn)
	}
	user := domain.SessionUser{ID: claims.Subject, Email: claims.Email, DisplayName: claims.Name}
	return user, claims.ExpiresAt.Time, nil
}
