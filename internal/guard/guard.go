// Package guard decides, per navigation, whether a request may render the
// target route, and where to send it otherwise.
package guard

import (
	"net/url"
	"strings"
	"time"

	"skylab/admin/internal/auth"
)

type State int

const (
	Resolving State = iota
	Authorized
	Redirecting
	Denied
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Authorized:
		return "authorized"
	case Redirecting:
		return "redirecting"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

const (
	LoginRoute     = "/login"
	ForbiddenRoute = "/403"
)

// sectionRoles maps route prefixes to the role required to enter them.
// Fixed declaration order, matching the home-route table.
var sectionRoles = []struct {
	prefix string
	role   auth.Role
}{
	{"/superadmin", auth.RoleSuperAdmin},
	{"/bizbize", auth.RoleBizbizeAdmin},
	{"/gecekodu", auth.RoleGecekoduAdmin},
	{"/agc", auth.RoleAgcAdmin},
}

// RequiredRole returns the role needed to enter path, if the path belongs
// to a guarded section.
func RequiredRole(path string) (auth.Role, bool) {
	for _, section := range sectionRoles {
		if path == section.prefix || strings.HasPrefix(path, section.prefix+"/") {
			return section.role, true
		}
	}
	return "", false
}

// Decision is the outcome of one navigation attempt. The guard re-enters
// Resolving on the next navigation.
type Decision struct {
	State      State
	RedirectTo string
	// ClearCredential is set when the stored credential must be discarded
	// (expired, malformed or revoked).
	ClearCredential bool
	// Reason labels the decision for logs and metrics.
	Reason string
}

// Evaluate runs the route-guard state machine for a single navigation.
// session is nil when no valid session exists; sessionReason then says why
// ("no_credential", "malformed", "expired" or "revoked").
func Evaluate(path string, session *auth.Session, sessionReason string, now time.Time) Decision {
	if session != nil && session.Expired(now) {
		session = nil
		sessionReason = "expired"
	}

	if session == nil {
		clear := sessionReason != "no_credential"
		if path == LoginRoute {
			return Decision{State: Authorized, ClearCredential: clear, Reason: sessionReason}
		}
		return Decision{
			State:           Denied,
			RedirectTo:      LoginRoute + "?redirect=" + url.QueryEscape(path),
			ClearCredential: clear,
			Reason:          sessionReason,
		}
	}

	// Authenticated users never see the login page, and the root route
	// forwards to the role's home when one exists.
	if path == LoginRoute {
		return Decision{State: Redirecting, RedirectTo: session.HomeRoute(), Reason: "already_authenticated"}
	}
	if path == "/" {
		if home := session.HomeRoute(); home != auth.FallbackRoute {
			return Decision{State: Redirecting, RedirectTo: home, Reason: "home_redirect"}
		}
		return Decision{State: Authorized, Reason: "authorized"}
	}

	if role, guarded := RequiredRole(path); guarded && !session.HasRole(role) {
		return Decision{State: Redirecting, RedirectTo: ForbiddenRoute, Reason: "missing_role"}
	}
	return Decision{State: Authorized, Reason: "authorized"}
}
