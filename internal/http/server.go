package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"skylab/admin/internal/auth"
	"skylab/admin/internal/config"
	"skylab/admin/internal/guard"
	"skylab/admin/internal/metrics"
	"skylab/admin/internal/upstream"
)

// sessionCookie is the credential cookie shared with the dashboard.
const sessionCookie = "token"

type Server struct {
	cfg      config.Config
	upstream *upstream.Client
	decoder  *auth.Decoder
	redis    *redis.Client
	metrics  *metrics.Metrics
}

func NewServer(cfg config.Config, client *upstream.Client, redisClient *redis.Client, m *metrics.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		upstream: client,
		decoder:  auth.NewDecoder(cfg.JWTSecret),
		redis:    redisClient,
		metrics:  m,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Dashboard navigation: every page entry runs the route guard.
	r.Group(func(r chi.Router) {
		r.Use(s.navigationGuard)
		r.Get("/", s.handlePage)
		r.Get("/login", s.handlePage)
		r.Get("/403", s.handlePage)
		r.Get("/superadmin", s.handlePage)
		r.Get("/superadmin/*", s.handlePage)
		r.Get("/bizbize", s.handlePage)
		r.Get("/bizbize/*", s.handlePage)
		r.Get("/gecekodu", s.handlePage)
		r.Get("/gecekodu/*", s.handlePage)
		r.Get("/agc", s.handlePage)
		r.Get("/agc/*", s.handlePage)
		r.Get("/profile/*", s.handlePage)
	})

	// Data API: JSON errors instead of redirects.
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.apiSession)
			s.mountDataRoutes(r)
		})
	})

	return r
}

func (s *Server) mountDataRoutes(r chi.Router) {
	sections := []struct {
		prefix string
		tenant upstream.Tenant
		role   auth.Role
	}{
		{"bizbize", upstream.TenantBizbize, auth.RoleBizbizeAdmin},
		{"gecekodu", upstream.TenantGecekodu, auth.RoleGecekoduAdmin},
		{"agc", upstream.TenantAgc, auth.RoleAgcAdmin},
	}
	for _, section := range sections {
		section := section
		r.Route("/"+section.prefix, func(r chi.Router) {
			r.Use(s.requireRole(section.role))

			r.Get("/events", s.handleListEvents(section.tenant))
			r.Post("/events", s.handleAddEvent(section.tenant))
			r.Put("/events", s.handleUpdateEvent)
			r.Get("/staff", s.handleListStaff(section.tenant))
			r.Post("/staff", s.handleAddStaff(section.tenant))
			r.Put("/staff", s.handleUpdateStaff)
			r.Get("/announcements", s.handleListAnnouncements(section.tenant))
			r.Post("/announcements", s.handleAddAnnouncement(section.tenant))
			r.Put("/announcements", s.handleUpdateAnnouncement)
			r.Post("/photos", s.handleAddPhoto(section.tenant))

			if section.tenant == upstream.TenantAgc {
				r.Get("/seasons", s.handleListSeasons)
				r.Post("/seasons", s.handleAddSeason)
				r.Put("/seasons", s.handleUpdateSeason)
				r.Get("/seasons/{seasonID}", s.handleSeasonDetail)
				r.Post("/seasons/{seasonID}/competitors", s.handleAddMembership)
				r.Delete("/seasons/{seasonID}/competitors/{competitorID}", s.handleRemoveMembership)
				r.Post("/seasons/{seasonID}/competitors/{competitorID}/points", s.handleAdjustPoints)
				r.Post("/competitors", s.handleAddCompetitor)
			}
		})
	}

	r.Route("/users", func(r chi.Router) {
		r.Use(s.requireRole(auth.RoleSuperAdmin))
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleAddUser)
		r.Post("/roles", s.handleChangeUserRole)
		r.Post("/resetPassword", s.handleResetPassword)
	})

	r.Post("/profile/changePassword", s.handleChangePassword)
}

// Request ID

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Session resolution

type sessionKey struct{}

func withSession(ctx context.Context, session *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func sessionFromContext(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionKey{}).(*auth.Session)
	return session
}

// resolveSession inspects the credential cookie. It returns a session only
// when the credential is well-formed, unexpired and not revoked; otherwise
// the reason says why ("no_credential", "malformed", "expired", "revoked").
func (s *Server) resolveSession(r *http.Request) (*auth.Session, string, string) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, "", "no_credential"
	}
	credential := cookie.Value

	session, err := s.decoder.Decode(credential)
	if err != nil {
		log.Printf("[%s] auth: malformed credential: %v", requestID(r.Context()), err)
		s.metrics.CredentialFailures.WithLabelValues("malformed").Inc()
		return nil, credential, "malformed"
	}
	if session.Expired(time.Now()) {
		log.Printf("[%s] auth: expired credential for %s", requestID(r.Context()), session.Subject)
		s.metrics.CredentialFailures.WithLabelValues("expired").Inc()
		return nil, credential, "expired"
	}
	if s.credentialRevoked(r.Context(), credential) {
		log.Printf("[%s] auth: revoked credential for %s", requestID(r.Context()), session.Subject)
		s.metrics.CredentialFailures.WithLabelValues("revoked").Inc()
		return nil, credential, "revoked"
	}
	return session, credential, ""
}

// navigationGuard runs the route-guard state machine on page entries and
// applies its decision: render, redirect, or bounce to login.
func (s *Server) navigationGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, credential, reason := s.resolveSession(r)
		decision := guard.Evaluate(r.URL.Path, session, reason, time.Now())
		s.metrics.GuardDecisions.WithLabelValues(decision.State.String(), decision.Reason).Inc()

		if decision.ClearCredential {
			clearSessionCookie(w)
		}
		switch decision.State {
		case guard.Authorized:
			ctx := withSession(r.Context(), session)
			if session != nil {
				ctx = upstream.WithCredential(ctx, credential)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		default:
			http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
		}
	})
}

// apiSession authenticates data-API calls, answering JSON errors rather
// than redirects.
func (s *Server) apiSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, credential, reason := s.resolveSession(r)
		if session == nil {
			if reason == "no_credential" {
				writeError(w, http.StatusUnauthorized, "missing_token")
				return
			}
			clearSessionCookie(w)
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := withSession(r.Context(), session)
		ctx = upstream.WithCredential(ctx, credential)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromContext(r.Context())
			if session == nil {
				writeError(w, http.StatusUnauthorized, "missing_token")
				return
			}
			if !session.HasRole(role) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// handlePage answers the probe the dashboard issues on navigation: who is
// logged in and where their home is. Redirects were already applied by the
// guard.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	type pageResponse struct {
		Path    string   `json:"path"`
		Subject string   `json:"subject,omitempty"`
		Roles   []string `json:"roles,omitempty"`
		Home    string   `json:"home,omitempty"`
	}
	resp := pageResponse{Path: r.URL.Path}
	if session := sessionFromContext(r.Context()); session != nil {
		resp.Subject = session.Subject
		for _, role := range session.Roles {
			resp.Roles = append(resp.Roles, string(role))
		}
		resp.Home = session.HomeRoute()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeUpstreamError maps collaborator failures onto user-facing
// responses. The technical detail goes to the log, the upstream message to
// the user.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	id := requestID(r.Context())
	if errors.Is(err, upstream.ErrAlreadyMember) {
		log.Printf("[%s] membership rejected: %v", id, err)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already_member", "message": err.Error()})
		return
	}
	if apiErr, ok := upstream.IsAPIError(err); ok {
		log.Printf("[%s] upstream rejected: %v", id, err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "upstream_rejected", "message": apiErr.Message})
		return
	}
	log.Printf("[%s] upstream transport error: %v", id, err)
	writeError(w, http.StatusBadGateway, "upstream_unavailable")
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
