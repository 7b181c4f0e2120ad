// Package auth issues and validates the signed session tokens that gate every
// guarded endpoint.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tier distinguishes a first-party interactive login from a delegated or
// tool-issued session.
type Tier string

const (
	TierTrusted   Tier = "trusted"
	TierUntrusted Tier = "untrusted"
)

func (t Tier) Valid() bool {
	return t == TierTrusted || t == TierUntrusted
}

// Claims carries the standard registered claims plus the caller's username
// and trust tier. Subject holds the account id.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
	Tier Tier   `json:"tier"`
}

// AccountID decodes the subject claim.
func (c *Claims) AccountID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// RevocationSet remembers token ids that must no longer be accepted.
type RevocationSet interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Service struct {
	secret      []byte
	ttl         time.Duration
	leeway      time.Duration
	now         func() time.Time
	revocations RevocationSet
}

type Option func(*Service)

// WithRevocations enables logout. Without it expiry is the only way a token
// stops being valid.
func WithRevocations(r RevocationSet) Option {
	return func(s *Service) { s.revocations = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(secret []byte, ttl, leeway time.Duration, opts ...Option) *Service {
	s := &Service{secret: secret, ttl: ttl, leeway: leeway, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for the account that expires TTL from now.
func (s *Service) Issue(accountID int64, username string, tier Tier) (string, error) {
	if !tier.Valid() {
		return "", fmt.Errorf("unknown tier %q", tier)
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
		Name: username,
		Tier: tier,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Parse checks signature, algorithm, structure and expiry without touching
// any store. Every failure is reported as common.ErrInvalidToken.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", common.ErrInvalidToken)
	}
	if !claims.Tier.Valid() {
		return nil, fmt.Errorf("%w: bad tier", common.ErrInvalidToken)
	}

	return claims, nil
}

// Validate parses the token and, when a revocation set is configured, rejects
// revoked tokens. A failing revocation lookup is returned as is so the caller
// refuses the request.
func (s *Service) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if s.revocations == nil || claims.ID == "" {
		return claims, nil
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: revoked", common.ErrInvalidToken)
	}
	return claims, nil
}

// Revoke blocks the token for the rest of its lifetime. It is a no-op when no
// revocation set is configured.
func (s *Service) Revoke(ctx context.Context, claims *Claims) error {
	if s.revocations == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now()) + s.leeway
	if ttl <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}
