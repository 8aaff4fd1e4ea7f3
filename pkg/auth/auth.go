package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role ...
type Role string

const (
	// RoleStaff ...
	RoleStaff Role = "staff"

	// RoleAdmin ...
	RoleAdmin Role = "admin"
)

// Actor is the authenticated caller supplied by the identity provider.
// This service never manages credentials, only verifies tokens.
type Actor struct {
	ID   int64
	Role Role
}

// IsAdmin ...
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess is the single ownership predicate used by every component:
// admins see everything, staff only what they own.
func (a Actor) CanAccess(ownerID int64) bool {
	return a.IsAdmin() || a.ID == ownerID
}

type actorClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// Verifier validates bearer tokens issued by the identity provider.
type Verifier interface {
	Verify(token string) (Actor, error)
}

// HMACVerifier checks HS256 tokens against a shared key.
type HMACVerifier struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewHMACVerifier ...
func NewHMACVerifier(key []byte, issuer string) *HMACVerifier {
	return &HMACVerifier{key: key, issuer: issuer, now: time.Now}
}

// Verify ...
func (v *HMACVerifier) Verify(token string) (Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims actorClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return Actor{}, fmt.Errorf("auth: verify token: %w", err)
	}
	if claims.UserID == 0 {
		return Actor{}, fmt.Errorf("auth: token missing user_id")
	}

	role := RoleStaff
	if claims.Role == string(RoleAdmin) {
		role = RoleAdmin
	}
	return Actor{ID: claims.UserID, Role: role}, nil
}

// Sign issues a token for the given actor, used by tests and local
// tooling; production tokens come from the identity provider.
func (v *HMACVerifier) Sign(actor Actor, ttl time.Duration) (string, error) {
	now := v.now()
	claims := actorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: actor.ID,
		Role:   string(actor.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}

type ctxActorKeyType struct{}

var ctxActorKey ctxActorKeyType

// ToContext ...
func ToContext(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxActorKey, actor)
}

// FromContext ...
func FromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ctxActorKey).(Actor)
	return actor, ok
}
