package season

import (
	"context"
	"errors"
	"testing"

	"skylab/admin/internal/upstream"
)

type fakeAPI struct {
	season      upstream.Season
	competitors []upstream.Competitor

	addMembershipErr error
	removeErr        error
	pointsErr        error

	calls map[string]int
}

func newFakeAPI() *fakeAPI {
	competitors := []upstream.Competitor{
		{ID: 1, Name: "Ada", TotalPoints: 120, CompetitionCount: 4, IsActive: true, Tenant: upstream.TenantAgc},
		{ID: 2, Name: "Banu", TotalPoints: 80, CompetitionCount: 3, IsActive: true, Tenant: upstream.TenantAgc},
		{ID: 3, Name: "Cem", TotalPoints: -10, CompetitionCount: 2, IsActive: true, Tenant: upstream.TenantAgc},
	}
	return &fakeAPI{
		season: upstream.Season{
			ID: 7, Name: "2026 Spring", StartDate: "01-02-2026", EndDate: "30-06-2026",
			IsActive: true, Tenant: upstream.TenantAgc,
			Competitors: []upstream.Competitor{competitors[0]},
		},
		competitors: competitors,
		calls:       map[string]int{},
	}
}

func (f *fakeAPI) GetSeasonByID(_ context.Context, id int64) (*upstream.Season, error) {
	f.calls["getSeason"]++
	season := f.season
	season.Competitors = append([]upstream.Competitor(nil), f.season.Competitors...)
	return &season, nil
}

func (f *fakeAPI) GetAllCompetitorsByTenant(_ context.Context, _ upstream.Tenant) ([]upstream.Competitor, error) {
	f.calls["getCompetitors"]++
	return append([]upstream.Competitor(nil), f.competitors...), nil
}

func (f *fakeAPI) AddCompetitorToSeason(_ context.Context, _, competitorID int64) error {
	f.calls["addMembership"]++
	if f.addMembershipErr != nil {
		return f.addMembershipErr
	}
	for _, competitor := range f.competitors {
		if competitor.ID == competitorID {
			f.season.Competitors = append(f.season.Competitors, competitor)
		}
	}
	return nil
}

func (f *fakeAPI) RemoveCompetitorFromSeason(_ context.Context, _, competitorID int64) error {
	f.calls["removeMembership"]++
	if f.removeErr != nil {
		return f.removeErr
	}
	members := f.season.Competitors
	for i, member := range members {
		if member.ID == competitorID {
			f.season.Competitors = append(members[:i:i], members[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) AddCompetitor(_ context.Context, payload upstream.AddCompetitorPayload) error {
	f.calls["addCompetitor"]++
	f.competitors = append(f.competitors, upstream.Competitor{
		ID: int64(len(f.competitors) + 1), Name: payload.Name, IsActive: payload.IsActive, Tenant: payload.Tenant,
	})
	return nil
}

func (f *fakeAPI) AddPointsToCompetitor(_ context.Context, id int64, points int) error {
	f.calls["addPoints"]++
	if f.pointsErr != nil {
		return f.pointsErr
	}
	for i := range f.competitors {
		if f.competitors[i].ID == id {
			f.competitors[i].TotalPoints += points
		}
	}
	return nil
}

func loadedController(t *testing.T, api *fakeAPI) *Controller {
	t.Helper()
	ctrl := NewController(api, upstream.TenantAgc, 7)
	if err := ctrl.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return ctrl
}

func TestAddableIsSetDifference(t *testing.T) {
	ctrl := loadedController(t, newFakeAPI())

	addable := ctrl.Addable()
	members := ctrl.Season().Competitors

	memberIDs := map[int64]bool{}
	for _, m := range members {
		memberIDs[m.ID] = true
	}
	for _, a := range addable {
		if memberIDs[a.ID] {
			t.Fatalf("addable competitor %d is already a member", a.ID)
		}
	}
	// Every tenant competitor is either a member or addable.
	if len(addable)+len(members) != len(ctrl.Competitors()) {
		t.Fatalf("addable(%d) + members(%d) != all(%d)", len(addable), len(members), len(ctrl.Competitors()))
	}
}

func TestAddableRecomputedAfterMembershipChange(t *testing.T) {
	api := newFakeAPI()
	ctrl := loadedController(t, api)

	before := len(ctrl.Addable())
	if err := ctrl.AddMembership(context.Background(), 2); err != nil {
		t.Fatalf("add membership: %v", err)
	}
	if got := len(ctrl.Addable()); got != before-1 {
		t.Fatalf("expected addable to shrink from %d to %d, got %d", before, before-1, got)
	}
}

func TestAddMembershipDuplicateRejectedLocally(t *testing.T) {
	api := newFakeAPI()
	ctrl := loadedController(t, api)

	err := ctrl.AddMembership(context.Background(), 1)
	if !errors.Is(err, upstream.ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	if api.calls["addMembership"] != 0 {
		t.Fatalf("duplicate add must not reach the network, got %d calls", api.calls["addMembership"])
	}
}

func TestAddMembershipTransportErrorKeepsSnapshot(t *testing.T) {
	api := newFakeAPI()
	ctrl := loadedController(t, api)
	api.addMembershipErr = &upstream.TransportError{Op: "seasons.addCompetitor", Err: errors.New("connection refused")}

	err := ctrl.AddMembership(context.Background(), 2)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if len(ctrl.Season().Competitors) != 1 {
		t.Fatalf("snapshot must be unchanged on failure, got %d members", len(ctrl.Season().Competitors))
	}
}

func TestRemoveMembershipRequiresConfirmation(t *testing.T) {
	api := newFakeAPI()
	ctrl := loadedController(t, api)

	err := ctrl.RemoveMembership(context.Background(), 1, false)
	if !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if api.calls["removeMembership"] != 0 {
		t.Fatalf("unconfirmed removal must not dispatch, got %d calls", api.calls["removeMembership"])
	}
}

func TestRemoveMembershipKeepsCompetitorRecord(t *testing.T) {
	api := newFakeAPI()
	ctrl := loadedController(t, api)

	if err := ctrl.RemoveMembership(context.Background(), 1, true); err != nil {
		t.Fatalf("remove membership: %v", err)
	}
	for _, member := range ctrl.Season().Competitors {
		if member.ID == 1 {
			t.Fatalf("competitor 1 still a member after removal")
		}
	}
	// The competitor's own ledger fields are untouched.
	for _, competitor := range ctrl.Competitors() {
		if competitor.ID == 1 {
			if competitor.TotalPoints != 120 || competitor.CompetitionCount != 4 {
				t.Fatalf("removal mutated the competitor record: %+v", competitor)
			}
			return
		}
	}
	t.Fatalf("competitor 1 missing from tenant list")
}

func TestAdjustPointsZeroDeltaNoNetwork(t *testing.T) {
	api := newFakeAPI()
	ctrl := loadedController(t, api)
	refreshes := api.calls["getSeason"]

	err := ctrl.AdjustPoints(context.Background(), 42, 0)
	if !errors.Is(err, ErrZeroDelta) {
		t.Fatalf("expected ErrZeroDelta, got %v", err)
	}
	if api.calls["addPoints"] != 0 {
		t.Fatalf("zero delta must issue zero network calls, got %d", api.calls["addPoints"])
	}
	if api.calls["getSeason"] != refreshes {
		t.Fatalf("zero delta must not trigger a refresh")
	}
}

func TestAdjustPointsRefreshesInsteadOfLocalMath(t *testing.T) {
	api := newFakeAPI()
	ctrl := loadedController(t, api)

	if err := ctrl.AdjustPoints(context.Background(), 1, -30); err != nil {
		t.Fatalf("adjust points: %v", err)
	}
	for _, competitor := range ctrl.Competitors() {
		if competitor.ID == 1 && competitor.TotalPoints != 90 {
			t.Fatalf("expected authoritative total 90, got %d", competitor.TotalPoints)
		}
	}
	if api.calls["getSeason"] < 2 || api.calls["getCompetitors"] < 2 {
		t.Fatalf("expected a full refresh after the mutation, calls=%v", api.calls)
	}
}

func TestAdjustPointsTransportErrorKeepsSnapshot(t *testing.T) {
	api := newFakeAPI()
	ctrl := loadedController(t, api)
	api.pointsErr = &upstream.TransportError{Op: "competitors.addPoints", Err: errors.New("timeout")}

	if err := ctrl.AdjustPoints(context.Background(), 1, 10); err == nil {
		t.Fatalf("expected transport error")
	}
	for _, competitor := range ctrl.Competitors() {
		if competitor.ID == 1 && competitor.TotalPoints != 120 {
			t.Fatalf("snapshot changed on failure: %d", competitor.TotalPoints)
		}
	}
}

func TestAddCompetitorRefreshesAddable(t *testing.T) {
	api := newFakeAPI()
	ctrl := loadedController(t, api)
	before := len(ctrl.Addable())

	if err := ctrl.AddCompetitor(context.Background(), "Derya", true); err != nil {
		t.Fatalf("add competitor: %v", err)
	}
	if got := len(ctrl.Addable()); got != before+1 {
		t.Fatalf("expected addable to grow from %d, got %d", before, got)
	}
}

func TestListAddableCompetitorsEmptySets(t *testing.T) {
	if got := ListAddableCompetitors(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	all := []upstream.Competitor{{ID: 1}, {ID: 2}}
	if got := ListAddableCompetitors(all, all); len(got) != 0 {
		t.Fatalf("all members: expected empty, got %v", got)
	}
	if got := ListAddableCompetitors(all, nil); len(got) != 2 {
		t.Fatalf("no members: expected all, got %v", got)
	}
}
