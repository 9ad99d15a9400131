package http

import (
	"net/http"

	"skylab/admin/internal/auth"
	"skylab/admin/internal/upstream"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.upstream.GetAllUsers(r.Context())
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type addUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req addUserRequest
	if err := decodeJSON(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	for _, role := range req.Roles {
		if _, ok := auth.ParseRole(role); !ok {
			writeError(w, http.StatusBadRequest, "unknown_role")
			return
		}
	}
	if err := s.upstream.AddUser(r.Context(), upstream.AddUserPayload{
		Username: req.Username,
		Password: req.Password,
		Roles:    req.Roles,
	}); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type changeRoleRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Action   string `json:"action"`
}

// handleChangeUserRole grants or withdraws a role on an account. The
// super-admin role cannot be removed from one's own account.
func (s *Server) handleChangeUserRole(w http.ResponseWriter, r *http.Request) {
	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown_role")
		return
	}

	switch req.Action {
	case "add":
		if err := s.upstream.AddRoleToUser(r.Context(), req.Username, string(role)); err != nil {
			s.writeUpstreamError(w, r, err)
			return
		}
	case "remove":
		session := sessionFromContext(r.Context())
		if role == auth.RoleSuperAdmin && session != nil && session.Subject == req.Username {
			writeError(w, http.StatusBadRequest, "cannot_demote_self")
			return
		}
		if err := s.upstream.RemoveRoleFromUser(r.Context(), req.Username, string(role)); err != nil {
			s.writeUpstreamError(w, r, err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown_action")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if err := s.upstream.ResetPassword(r.Context(), req.Username); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req upstream.ChangePasswordPayload
	if err := decodeJSON(r, &req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if req.OldPassword == req.NewPassword {
		writeError(w, http.StatusBadRequest, "password_unchanged")
		return
	}
	if err := s.upstream.ChangePassword(r.Context(), req); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
