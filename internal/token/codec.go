package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired indicates the token is past its expiry, or was issued outside the accepted clock window.
	ErrExpired = errors.New("token expired")
	// ErrMalformed indicates the token cannot be decoded or carries unexpected claims.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid indicates the token was not signed with this codec's secret.
	ErrSignatureInvalid = errors.New("token signature invalid")
)

// Kind distinguishes short-lived access claims from long-lived refresh claims.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claim is the payload signed into a token.
type Claim struct {
	Subject   string
	Kind      Kind
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Kind Kind `json:"typ"`
	jwt.RegisteredClaims
}

// Codec signs and verifies claims of a single kind with one secret and TTL.
type Codec struct {
	kind   Kind
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// NewCodec constructs a codec for the given kind. Access and refresh codecs
// must be built with distinct secrets.
func NewCodec(kind Kind, secret string, ttl time.Duration) (*Codec, error) {
	if kind != KindAccess && kind != KindRefresh {
		return nil, fmt.Errorf("token: unknown kind %q", kind)
	}
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token: %s secret is required", kind)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token: %s ttl must be positive", kind)
	}
	return &Codec{
		kind:   kind,
		secret: []byte(secret),
		ttl:    ttl,
		leeway: 5 * time.Second,
		now:    time.Now,
	}, nil
}

// WithNowFunc allows tests to override the time source.
func (c *Codec) WithNowFunc(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Kind returns the claim kind this codec handles.
func (c *Codec) Kind() Kind { return c.kind }

// TTL returns the lifetime of issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a fresh claim for subject. Every token carries a random jti so
// two tokens issued within the same second never collide.
func (c *Codec) Issue(subject string) (string, Claim, error) {
	if subject == "" {
		return "", Claim{}, errors.New("token: subject must be provided")
	}

	now := c.now().UTC().Truncate(time.Second)
	claim := Claim{
		Subject:   subject,
		Kind:      c.kind,
		ID:        uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Kind: claim.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.Subject,
			ID:        claim.ID,
			IssuedAt:  jwt.NewNumericDate(claim.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claim.ExpiresAt),
		},
	}).SignedString(c.secret)
	if err != nil {
		return "", Claim{}, fmt.Errorf("sign %s token: %w", c.kind, err)
	}

	return signed, claim, nil
}

// Verify checks the signature, expiry and kind of raw and returns its claim.
func (c *Codec) Verify(raw string) (Claim, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claim{}, ErrMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
	)

	var claims jwtClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired),
			errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
			errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claim{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claim{}, ErrSignatureInvalid
		default:
			return Claim{}, ErrMalformed
		}
	}

	if claims.Kind != c.kind || claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Claim{}, ErrMalformed
	}

	return Claim{
		Subject:   claims.Subject,
		Kind:      claims.Kind,
		ID:        claims.ID,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
