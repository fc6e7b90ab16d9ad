// Package auth verifies the bearer tokens presented to the API.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ariefcatur/go-product-search/internal/apperr"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrMalformed    = errors.New("authorization header is not a bearer token")
	ErrRevoked      = errors.New("token has been revoked")
	ErrNoSubject    = errors.New("token carries no user_id")
)

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenVerifier decodes and validates a raw bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// Revocations remembers token ids that were logged out before expiry.
type Revocations interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string, until time.Time) error
}

type JWTVerifier struct {
	secret  []byte
	issuer  string
	revoked Revocations
}

// NewJWTVerifier accepts HS256 tokens signed with secret. issuer and revoked
// are optional.
func NewJWTVerifier(secret []byte, issuer string, revoked Revocations) *JWTVerifier {
	return &JWTVerifier{secret: secret, issuer: issuer, revoked: revoked}
}

func (v *JWTVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, apperr.Auth("invalid token", err)
	}
	if claims.UserID <= 0 {
		return nil, apperr.Auth("invalid token", ErrNoSubject)
	}
	if v.revoked != nil && claims.ID != "" {
		revoked, err := v.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperr.Upstream("revocation lookup failed", err)
		}
		if revoked {
			return nil, apperr.Auth("invalid token", ErrRevoked)
		}
	}
	return claims, nil
}

// Issuer mints tokens accepted by JWTVerifier.
type Issuer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func (i Issuer) Issue(userID int64) (string, error) {
	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	t := now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.Issuer,
			IssuedAt:  jwt.NewNumericDate(t),
			ExpiresAt: jwt.NewNumericDate(t.Add(i.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(h)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMalformed
	}
	return parts[1], nil
}

type claimsKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}
