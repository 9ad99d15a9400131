// Package season mediates season/competitor membership and point
// mutations against the SkyLab API, keeping a per-view snapshot consistent
// with the authoritative store by refetching after every mutation.
package season

import (
	"context"
	"errors"
	"fmt"

	"skylab/admin/internal/upstream"
)

var (
	// ErrZeroDelta rejects a points adjustment of zero before any network
	// call is made.
	ErrZeroDelta = errors.New("points adjustment must be nonzero")

	// ErrNotConfirmed rejects a membership removal that was not explicitly
	// confirmed by the user.
	ErrNotConfirmed = errors.New("removal requires confirmation")

	// ErrNotLoaded reports an operation on a controller without a season
	// snapshot.
	ErrNotLoaded = errors.New("season not loaded")
)

// API is the slice of the upstream client the controller needs.
type API interface {
	GetSeasonByID(ctx context.Context, id int64) (*upstream.Season, error)
	GetAllCompetitorsByTenant(ctx context.Context, tenant upstream.Tenant) ([]upstream.Competitor, error)
	AddCompetitorToSeason(ctx context.Context, seasonID, competitorID int64) error
	RemoveCompetitorFromSeason(ctx context.Context, seasonID, competitorID int64) error
	AddCompetitor(ctx context.Context, payload upstream.AddCompetitorPayload) error
	AddPointsToCompetitor(ctx context.Context, id int64, points int) error
}

// Controller holds one view's snapshot of a season and the tenant's
// competitors. State is per view; failed mutations leave the snapshot
// exactly as it was.
type Controller struct {
	api      API
	tenant   upstream.Tenant
	seasonID int64

	season      *upstream.Season
	competitors []upstream.Competitor
}

func NewController(api API, tenant upstream.Tenant, seasonID int64) *Controller {
	return &Controller{api: api, tenant: tenant, seasonID: seasonID}
}

// Refresh refetches the season and the tenant competitor list from the
// authoritative store. On failure the previous snapshot is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	season, err := c.api.GetSeasonByID(ctx, c.seasonID)
	if err != nil {
		return fmt.Errorf("refresh season: %w", err)
	}
	competitors, err := c.api.GetAllCompetitorsByTenant(ctx, c.tenant)
	if err != nil {
		return fmt.Errorf("refresh competitors: %w", err)
	}
	c.season = season
	c.competitors = competitors
	return nil
}

// Season returns the current snapshot, or nil before the first Refresh.
func (c *Controller) Season() *upstream.Season {
	return c.season
}

// Competitors returns the tenant competitor list from the snapshot.
func (c *Controller) Competitors() []upstream.Competitor {
	return c.competitors
}

// Addable returns the competitors eligible to be added to the season:
// all tenant competitors minus current members. Recomputed on every call;
// never cached across a membership change.
func (c *Controller) Addable() []upstream.Competitor {
	if c.season == nil {
		return nil
	}
	return ListAddableCompetitors(c.competitors, c.season.Competitors)
}

// ListAddableCompetitors returns all \ members, by identity.
func ListAddableCompetitors(all, members []upstream.Competitor) []upstream.Competitor {
	memberIDs := make(map[int64]struct{}, len(members))
	for _, m := range members {
		memberIDs[m.ID] = struct{}{}
	}
	addable := make([]upstream.Competitor, 0, len(all))
	for _, competitor := range all {
		if _, isMember := memberIDs[competitor.ID]; !isMember {
			addable = append(addable, competitor)
		}
	}
	return addable
}

// AddMembership adds a competitor to the season. The client-side duplicate
// guard is a UX courtesy; the server remains authoritative. On confirmed
// success the competitor is appended to the local membership list and the
// whole view is refreshed.
func (c *Controller) AddMembership(ctx context.Context, competitorID int64) error {
	if c.season == nil {
		return ErrNotLoaded
	}
	for _, member := range c.season.Competitors {
		if member.ID == competitorID {
			return upstream.ErrAlreadyMember
		}
	}

	if err := c.api.AddCompetitorToSeason(ctx, c.seasonID, competitorID); err != nil {
		return err
	}

	for _, competitor := range c.competitors {
		if competitor.ID == competitorID {
			c.season.Competitors = append(c.season.Competitors, competitor)
			break
		}
	}
	return c.Refresh(ctx)
}

// RemoveMembership removes the membership edge only: the competitor's own
// record, points and competition count stay untouched. The destructive
// action must be confirmed by the caller before any dispatch.
func (c *Controller) RemoveMembership(ctx context.Context, competitorID int64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if c.season == nil {
		return ErrNotLoaded
	}

	if err := c.api.RemoveCompetitorFromSeason(ctx, c.seasonID, competitorID); err != nil {
		return err
	}

	members := c.season.Competitors
	for i, member := range members {
		if member.ID == competitorID {
			c.season.Competitors = append(members[:i:i], members[i+1:]...)
			break
		}
	}
	return c.Refresh(ctx)
}

// AdjustPoints applies a signed, nonzero adjustment to a competitor's
// total. The authoritative totals are refetched rather than recomputed
// locally, since server-side rules (e.g. floors) are not visible here.
func (c *Controller) AdjustPoints(ctx context.Context, competitorID int64, delta int) error {
	if delta == 0 {
		return ErrZeroDelta
	}
	if err := c.api.AddPointsToCompetitor(ctx, competitorID, delta); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// AddCompetitor registers a new competitor system-wide for the tenant,
// then refreshes so the addable list includes it.
func (c *Controller) AddCompetitor(ctx context.Context, name string, active bool) error {
	if name == "" {
		return errors.New("competitor name is required")
	}
	payload := upstream.AddCompetitorPayload{Name: name, IsActive: active, Tenant: c.tenant}
	if err := c.api.AddCompetitor(ctx, payload); err != nil {
		return err
	}
	return c.Refresh(ctx)
}
