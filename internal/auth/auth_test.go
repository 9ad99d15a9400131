package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func mintCredential(t *testing.T, subject string, roles []string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign credential: %v", err)
	}
	return token
}

func TestDecodeMalformed(t *testing.T) {
	decoder := NewDecoder(testSecret)
	for _, credential := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := decoder.Decode(credential); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed for %q, got %v", credential, err)
		}
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	credential := mintCredential(t, "user-1", []string{"ROLE_USER"}, time.Now().Add(time.Hour))
	decoder := NewDecoder("other-secret")
	if _, err := decoder.Decode(credential); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for wrong secret, got %v", err)
	}
}

func TestDecodeExpiredStillDecodes(t *testing.T) {
	now := time.Now()
	credential := mintCredential(t, "user-1", []string{"ROLE_USER"}, now.Add(-time.Second))
	session, err := NewDecoder(testSecret).Decode(credential)
	if err != nil {
		t.Fatalf("expected expired credential to decode, got %v", err)
	}
	if !session.Expired(now) {
		t.Fatalf("expected session expired at %v", now)
	}
}

func TestExpiredBoundary(t *testing.T) {
	exp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	session := &Session{Subject: "u", ExpiresAt: exp}
	if session.Expired(exp.Add(-time.Second)) {
		t.Fatalf("session should be valid one second before expiry")
	}
	if !session.Expired(exp) {
		t.Fatalf("session should be invalid exactly at expiry")
	}
}

func TestHasRoleSuperAdminOverride(t *testing.T) {
	session := &Session{Subject: "u", Roles: []Role{RoleSuperAdmin}}
	for _, role := range []Role{RoleUser, RoleSuperAdmin, RoleBizbizeAdmin, RoleGecekoduAdmin, RoleAgcAdmin} {
		if !session.HasRole(role) {
			t.Fatalf("super admin should satisfy role %s", role)
		}
	}
}

func TestHasRoleExactMembership(t *testing.T) {
	session := &Session{Subject: "u", Roles: []Role{RoleUser, RoleAgcAdmin}}
	if !session.HasRole(RoleAgcAdmin) {
		t.Fatalf("expected ROLE_AGC_ADMIN to be present")
	}
	if session.HasRole(RoleBizbizeAdmin) {
		t.Fatalf("did not expect ROLE_BIZBIZE_ADMIN")
	}
	if session.HasRole(RoleSuperAdmin) {
		t.Fatalf("did not expect ROLE_ADMIN")
	}
}

func TestHomeRoutePriority(t *testing.T) {
	cases := []struct {
		roles  []Role
		expect string
	}{
		{[]Role{RoleBizbizeAdmin}, "/bizbize"},
		{[]Role{RoleGecekoduAdmin}, "/gecekodu"},
		{[]Role{RoleAgcAdmin}, "/agc"},
		{[]Role{RoleAgcAdmin, RoleSuperAdmin}, "/superadmin"},
		{[]Role{RoleSuperAdmin, RoleAgcAdmin}, "/superadmin"},
		{[]Role{RoleAgcAdmin, RoleBizbizeAdmin}, "/bizbize"},
		{[]Role{RoleBizbizeAdmin, RoleAgcAdmin}, "/bizbize"},
		{[]Role{RoleUser}, FallbackRoute},
		{nil, FallbackRoute},
		{[]Role{Role("ROLE_UNKNOWN")}, FallbackRoute},
	}
	for _, tc := range cases {
		session := &Session{Subject: "u", Roles: tc.roles}
		if got := session.HomeRoute(); got != tc.expect {
			t.Fatalf("roles %v: expected %s, got %s", tc.roles, tc.expect, got)
		}
	}
}

func TestDecodeScenarioBizbize(t *testing.T) {
	credential := mintCredential(t, "bizbize-admin", []string{"ROLE_BIZBIZE_ADMIN"}, time.Now().Add(time.Hour))
	session, err := NewDecoder(testSecret).Decode(credential)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.Expired(time.Now()) {
		t.Fatalf("session should not be expired")
	}
	if got := session.HomeRoute(); got != "/bizbize" {
		t.Fatalf("expected /bizbize, got %s", got)
	}
}
