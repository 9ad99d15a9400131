package http

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"skylab/admin/internal/dateutil"
	"skylab/admin/internal/season"
	"skylab/admin/internal/upstream"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleListSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.upstream.GetAllSeasonsByTenant(r.Context(), upstream.TenantAgc)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	sort.SliceStable(seasons, func(i, j int) bool {
		a, errA := time.Parse(dateutil.WireDate, seasons[i].StartDate)
		b, errB := time.Parse(dateutil.WireDate, seasons[j].StartDate)
		if errA != nil || errB != nil {
			return false
		}
		return a.After(b)
	})
	writeJSON(w, http.StatusOK, seasons)
}

type addSeasonRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsActive  bool   `json:"isActive"`
}

func (s *Server) handleAddSeason(w http.ResponseWriter, r *http.Request) {
	var req addSeasonRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	start, err := dateutil.WireDateFromInput(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_start_date")
		return
	}
	end, err := dateutil.WireDateFromInput(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_end_date")
		return
	}
	if err := dateutil.ValidateSeasonBounds(start, end); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_season_bounds")
		return
	}

	id, err := s.upstream.AddSeason(r.Context(), upstream.AddSeasonPayload{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		IsActive:  req.IsActive,
		Tenant:    upstream.TenantAgc,
	})
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type updateSeasonRequest struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	IsActive  *bool   `json:"isActive"`
}

func (s *Server) handleUpdateSeason(w http.ResponseWriter, r *http.Request) {
	var req updateSeasonRequest
	if err := decodeJSON(r, &req); err != nil || req.ID <= 0 {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	payload := upstream.UpdateSeasonPayload{ID: req.ID, Name: req.Name, IsActive: req.IsActive}
	if req.StartDate != nil {
		start, err := dateutil.WireDateFromInput(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date")
			return
		}
		payload.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := dateutil.WireDateFromInput(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_date")
			return
		}
		payload.EndDate = &end
	}
	if payload.StartDate != nil && payload.EndDate != nil {
		if err := dateutil.ValidateSeasonBounds(*payload.StartDate, *payload.EndDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_season_bounds")
			return
		}
	}
	if err := s.upstream.UpdateSeason(r.Context(), payload); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// seasonDetail is the manager view: the season with its membership roster
// and the competitors still addable to it.
type seasonDetail struct {
	Season  *upstream.Season      `json:"season"`
	Addable []upstream.Competitor `json:"addable"`
}

func (s *Server) seasonController(r *http.Request) (*season.Controller, bool) {
	id, ok := pathID(r, "seasonID")
	if !ok {
		return nil, false
	}
	return season.NewController(s.upstream, upstream.TenantAgc, id), true
}

func (s *Server) writeSeasonDetail(w http.ResponseWriter, ctrl *season.Controller) {
	writeJSON(w, http.StatusOK, seasonDetail{Season: ctrl.Season(), Addable: ctrl.Addable()})
}

func (s *Server) handleSeasonDetail(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.seasonController(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_season_id")
		return
	}
	if err := ctrl.Refresh(r.Context()); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	s.writeSeasonDetail(w, ctrl)
}

type addMembershipRequest struct {
	CompetitorID int64 `json:"competitorId"`
}

func (s *Server) handleAddMembership(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.seasonController(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_season_id")
		return
	}
	var req addMembershipRequest
	if err := decodeJSON(r, &req); err != nil || req.CompetitorID <= 0 {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if err := ctrl.Refresh(r.Context()); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	if err := ctrl.AddMembership(r.Context(), req.CompetitorID); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	s.writeSeasonDetail(w, ctrl)
}

func (s *Server) handleRemoveMembership(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.seasonController(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_season_id")
		return
	}
	competitorID, ok := pathID(r, "competitorID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_competitor_id")
		return
	}
	// Unconfirmed removals stop here; nothing is dispatched.
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "confirmation_required")
		return
	}
	if err := ctrl.Refresh(r.Context()); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	if err := ctrl.RemoveMembership(r.Context(), competitorID, true); err != nil {
		if errors.Is(err, season.ErrNotConfirmed) {
			writeError(w, http.StatusBadRequest, "confirmation_required")
			return
		}
		s.writeUpstreamError(w, r, err)
		return
	}
	s.writeSeasonDetail(w, ctrl)
}

type adjustPointsRequest struct {
	Points int `json:"points"`
}

func (s *Server) handleAdjustPoints(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.seasonController(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_season_id")
		return
	}
	competitorID, ok := pathID(r, "competitorID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_competitor_id")
		return
	}
	var req adjustPointsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	// Zero deltas never reach the upstream API.
	if req.Points == 0 {
		writeError(w, http.StatusBadRequest, "zero_delta")
		return
	}
	if err := ctrl.Refresh(r.Context()); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	if err := ctrl.AdjustPoints(r.Context(), competitorID, req.Points); err != nil {
		if errors.Is(err, season.ErrZeroDelta) {
			writeError(w, http.StatusBadRequest, "zero_delta")
			return
		}
		s.writeUpstreamError(w, r, err)
		return
	}
	s.writeSeasonDetail(w, ctrl)
}

type addCompetitorRequest struct {
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

func (s *Server) handleAddCompetitor(w http.ResponseWriter, r *http.Request) {
	var req addCompetitorRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if err := s.upstream.AddCompetitor(r.Context(), upstream.AddCompetitorPayload{
		Name:     req.Name,
		IsActive: req.IsActive,
		Tenant:   upstream.TenantAgc,
	}); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
