package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"skylab/admin/internal/upstream"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin exchanges credentials with the upstream API, stores the
// returned token in the session cookie and tells the dashboard where to go
// next. A redirect query parameter set by an earlier guard bounce wins over
// the role-derived home route.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	token, err := s.upstream.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if apiErr, ok := upstream.IsAPIError(err); ok {
			log.Printf("[%s] login rejected for %s: %v", requestID(r.Context()), req.Username, err)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_credentials", "message": apiErr.Message})
			return
		}
		s.writeUpstreamError(w, r, err)
		return
	}

	session, err := s.decoder.Decode(token)
	if err != nil {
		log.Printf("[%s] login: upstream issued undecodable token: %v", requestID(r.Context()), err)
		writeError(w, http.StatusBadGateway, "invalid_upstream_token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	redirect := r.URL.Query().Get("redirect")
	if !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") {
		redirect = session.HomeRoute()
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": redirect})
}

// handleLogout revokes the active credential so the remainder of its
// 30-day lifetime is unusable, then clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		ttl := s.cfg.SessionTTL
		if session, err := s.decoder.Decode(cookie.Value); err == nil {
			if remaining := time.Until(session.ExpiresAt); remaining > 0 {
				ttl = remaining
			}
		}
		s.revokeCredential(r.Context(), cookie.Value, ttl)
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func credentialHash(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

func (s *Server) revokeCredential(ctx context.Context, credential string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	key := "revoked:" + credentialHash(credential)
	if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		log.Printf("[%s] revocation store unavailable: %v", requestID(ctx), err)
	}
}

func (s *Server) credentialRevoked(ctx context.Context, credential string) bool {
	if s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, "revoked:"+credentialHash(credential)).Result()
	if err != nil {
		log.Printf("[%s] revocation store unavailable: %v", requestID(ctx), err)
		return false
	}
	return n > 0
}
