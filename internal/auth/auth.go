package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is one of the fixed role tags issued by the SkyLab API.
type Role string

const (
	RoleUser          Role = "ROLE_USER"
	RoleSuperAdmin    Role = "ROLE_ADMIN"
	RoleBizbizeAdmin  Role = "ROLE_BIZBIZE_ADMIN"
	RoleGecekoduAdmin Role = "ROLE_GECEKODU_ADMIN"
	RoleAgcAdmin      Role = "ROLE_AGC_ADMIN"
)

// ParseRole validates a role tag coming from user input.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleUser, RoleSuperAdmin, RoleBizbizeAdmin, RoleGecekoduAdmin, RoleAgcAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// FallbackRoute is where authenticated users without a recognized admin
// role land.
const FallbackRoute = "/"

// homeRoutes is scanned top to bottom, first match wins. The order is a
// product decision (super-admin before the tenants, tenants in fixed
// order), independent of the order roles appear in a credential.
var homeRoutes = []struct {
	role Role
	path string
}{
	{RoleSuperAdmin, "/superadmin"},
	{RoleBizbizeAdmin, "/bizbize"},
	{RoleGecekoduAdmin, "/gecekodu"},
	{RoleAgcAdmin, "/agc"},
}

// ErrMalformed reports a credential that cannot be parsed into the
// expected claim shape. Expiry is not a decode failure; callers check it
// explicitly via Session.Expired.
var ErrMalformed = errors.New("malformed credential")

type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Session is the decoded, time-bounded identity derived from a bearer
// credential. Sessions are immutable; a new decode replaces the old value.
type Session struct {
	Subject   string
	Roles     []Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Decoder turns bearer credentials into Sessions.
type Decoder struct {
	secret string
}

func NewDecoder(secret string) *Decoder {
	return &Decoder{secret: secret}
}

// Decode parses and verifies a credential without validating expiry, so an
// expired-but-well-formed credential is distinguishable from a malformed
// one.
func (d *Decoder) Decode(credential string) (*Session, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(credential, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(d.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}

	session := &Session{
		Subject:   claims.Subject,
		Roles:     make([]Role, 0, len(claims.Roles)),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	for _, r := range claims.Roles {
		session.Roles = append(session.Roles, Role(r))
	}
	return session, nil
}

// Expired reports whether the session is invalid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HasRole reports whether the session carries the given role. The
// super-admin role satisfies every role check.
func (s *Session) HasRole(role Role) bool {
	for _, r := range s.Roles {
		if r == RoleSuperAdmin || r == role {
			return true
		}
	}
	return false
}

// HomeRoute returns the canonical route for the session's role set,
// following the fixed priority table.
func (s *Session) HomeRoute() string {
	for _, entry := range homeRoutes {
		for _, r := range s.Roles {
			if r == entry.role {
				return entry.path
			}
		}
	}
	return FallbackRoute
}
