package http

import (
	"net/http"
	"sort"
	"time"

	"skylab/admin/internal/dateutil"
	"skylab/admin/internal/upstream"
)

// Events

func (s *Server) handleListEvents(tenant upstream.Tenant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.upstream.GetEventsByTenant(r.Context(), tenant)
		if err != nil {
			s.writeUpstreamError(w, r, err)
			return
		}
		sort.SliceStable(events, func(i, j int) bool {
			a, errA := time.Parse(dateutil.WireDateTime, events[i].Date)
			b, errB := time.Parse(dateutil.WireDateTime, events[j].Date)
			if errA != nil || errB != nil {
				return false
			}
			return a.After(b)
		})
		writeJSON(w, http.StatusOK, events)
	}
}

type addEventRequest struct {
	Title       string `json:"title"`
	GuestName   string `json:"guestName"`
	Linkedin    string `json:"linkedin"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	FormURL     string `json:"formUrl"`
	IsActive    bool   `json:"isActive"`
}

func (s *Server) handleAddEvent(tenant upstream.Tenant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addEventRequest
		if err := decodeJSON(r, &req); err != nil || req.Title == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		if tenant == upstream.TenantBizbize && req.GuestName == "" {
			writeError(w, http.StatusBadRequest, "missing_guest_name")
			return
		}
		date, err := dateutil.WireFromInput(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		if err := s.upstream.AddEvent(r.Context(), upstream.AddEventPayload{
			Title:       req.Title,
			GuestName:   req.GuestName,
			Linkedin:    req.Linkedin,
			Description: req.Description,
			Date:        date,
			Type:        req.Type,
			FormURL:     req.FormURL,
			IsActive:    req.IsActive,
			Tenant:      tenant,
		}); err != nil {
			s.writeUpstreamError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

type updateEventRequest struct {
	ID          int64   `json:"id"`
	Title       *string `json:"title"`
	GuestName   *string `json:"guestName"`
	Linkedin    *string `json:"linkedin"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Type        *string `json:"type"`
	FormURL     *string `json:"formUrl"`
	IsActive    *bool   `json:"isActive"`
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil || req.ID <= 0 {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	payload := upstream.UpdateEventPayload{
		ID:          req.ID,
		Title:       req.Title,
		GuestName:   req.GuestName,
		Linkedin:    req.Linkedin,
		Description: req.Description,
		Type:        req.Type,
		FormURL:     req.FormURL,
		IsActive:    req.IsActive,
	}
	if req.Date != nil {
		date, err := dateutil.WireFromInput(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		payload.Date = &date
	}
	if err := s.upstream.UpdateEvent(r.Context(), payload); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Staff

func (s *Server) handleListStaff(tenant upstream.Tenant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staff, err := s.upstream.GetStaffByTenant(r.Context(), tenant)
		if err != nil {
			s.writeUpstreamError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, staff)
	}
}

type addStaffRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Linkedin   string `json:"linkedin"`
	Department string `json:"department"`
	PhotoID    *int64 `json:"photoId"`
}

func (s *Server) handleAddStaff(tenant upstream.Tenant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addStaffRequest
		if err := decodeJSON(r, &req); err != nil || req.FirstName == "" || req.LastName == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		if err := s.upstream.AddStaff(r.Context(), upstream.AddStaffPayload{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Linkedin:   req.Linkedin,
			Department: req.Department,
			PhotoID:    req.PhotoID,
			Tenant:     tenant,
		}); err != nil {
			s.writeUpstreamError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func (s *Server) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	var req upstream.UpdateStaffPayload
	if err := decodeJSON(r, &req); err != nil || req.ID <= 0 {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if err := s.upstream.UpdateStaff(r.Context(), req); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Announcements

func (s *Server) handleListAnnouncements(tenant upstream.Tenant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		announcements, err := s.upstream.GetAnnouncementsByTenant(r.Context(), tenant)
		if err != nil {
			s.writeUpstreamError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, announcements)
	}
}

type addAnnouncementRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	IsActive bool   `json:"isActive"`
}

func (s *Server) handleAddAnnouncement(tenant upstream.Tenant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addAnnouncementRequest
		if err := decodeJSON(r, &req); err != nil || req.Title == "" || req.Content == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		date, err := dateutil.WireFromInput(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		if err := s.upstream.AddAnnouncement(r.Context(), upstream.AddAnnouncementPayload{
			Title:    req.Title,
			Content:  req.Content,
			Date:     date,
			IsActive: req.IsActive,
			Tenant:   tenant,
		}); err != nil {
			s.writeUpstreamError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func (s *Server) handleUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req upstream.UpdateAnnouncementPayload
	if err := decodeJSON(r, &req); err != nil || req.ID <= 0 {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if err := s.upstream.UpdateAnnouncement(r.Context(), req); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Photos

type addPhotoRequest struct {
	PhotoURL string `json:"photoUrl"`
}

func (s *Server) handleAddPhoto(tenant upstream.Tenant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addPhotoRequest
		if err := decodeJSON(r, &req); err != nil || req.PhotoURL == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}
		id, err := s.upstream.AddPhoto(r.Context(), upstream.AddPhotoPayload{
			PhotoURL: req.PhotoURL,
			Tenant:   tenant,
		})
		if err != nil {
			s.writeUpstreamError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	}
}
