// Package upstream is the client of the SkyLab REST API, the authoritative
// store for every entity the dashboard manages. All responses arrive in a
// {success, message, httpStatus, data} envelope and every operation
// branches on success, never on HTTP status alone.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"skylab/admin/internal/metrics"
)

type credentialKey struct{}

// WithCredential attaches the caller's bearer credential to ctx; the
// client forwards it on every outgoing request.
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, credentialKey{}, credential)
}

// CredentialFrom returns the bearer credential stored in ctx, if any.
func CredentialFrom(ctx context.Context) (string, bool) {
	credential, ok := ctx.Value(credentialKey{}).(string)
	return credential, ok && credential != ""
}

// bearerTransport attaches the context credential to outgoing requests.
type bearerTransport struct {
	base http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if credential, ok := CredentialFrom(req.Context()); ok {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	HTTPStatus string          `json:"httpStatus"`
	Data       json.RawMessage `json:"data"`
}

// Client calls the SkyLab API.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics

	// reads collapses identical concurrent season/competitor fetches so
	// rapid repeated clicks produce a single flight. Results are never
	// cached past the flight.
	reads singleflight.Group
}

func New(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{},
		},
		metrics: m,
	}
}

func (c *Client) count(op, result string) {
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(op, result).Inc()
	}
}

// do executes one API call. out, when non-nil, receives the envelope data.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			c.count(op, "transport_error")
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		c.count(op, "transport_error")
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.count(op, "transport_error")
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.count(op, "transport_error")
		return &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		c.count(op, "transport_error")
		return &TransportError{Op: op, Err: fmt.Errorf("decode envelope (status %d): %w", resp.StatusCode, err)}
	}
	if !env.Success {
		c.count(op, "api_error")
		return &APIError{Op: op, Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.count(op, "transport_error")
			return &TransportError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	c.count(op, "ok")
	return nil
}

// Auth

// Login exchanges credentials for a bearer token (the envelope data is the
// token string).
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var token string
	if err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", nil, body, &token); err != nil {
		return "", err
	}
	if token == "" {
		return "", &TransportError{Op: "auth.login", Err: fmt.Errorf("empty token in response")}
	}
	return token, nil
}

// Seasons

func (c *Client) GetSeasonByID(ctx context.Context, id int64) (*Season, error) {
	credential, _ := CredentialFrom(ctx)
	key := fmt.Sprintf("season:%d:%s", id, credential)
	value, err, _ := c.reads.Do(key, func() (any, error) {
		query := url.Values{"id": {strconv.FormatInt(id, 10)}}
		var season Season
		if err := c.do(ctx, "seasons.getById", http.MethodGet, "/seasons/getSeasonById", query, nil, &season); err != nil {
			return nil, err
		}
		return &season, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Season), nil
}

func (c *Client) GetAllSeasonsByTenant(ctx context.Context, tenant Tenant) ([]Season, error) {
	query := url.Values{"tenant": {string(tenant)}}
	var seasons []Season
	if err := c.do(ctx, "seasons.getAllByTenant", http.MethodGet, "/seasons/getAllSeasonsByTenant", query, nil, &seasons); err != nil {
		return nil, err
	}
	return seasons, nil
}

func (c *Client) AddSeason(ctx context.Context, payload AddSeasonPayload) (int64, error) {
	var id int64
	if err := c.do(ctx, "seasons.add", http.MethodPost, "/seasons/addSeason", nil, payload, &id); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Client) UpdateSeason(ctx context.Context, payload UpdateSeasonPayload) error {
	return c.do(ctx, "seasons.update", http.MethodPut, "/seasons/updateSeason", nil, payload, nil)
}

func (c *Client) AddCompetitorToSeason(ctx context.Context, seasonID, competitorID int64) error {
	query := url.Values{
		"seasonId":     {strconv.FormatInt(seasonID, 10)},
		"competitorId": {strconv.FormatInt(competitorID, 10)},
	}
	err := c.do(ctx, "seasons.addCompetitor", http.MethodPost, "/seasons/addCompetitorToSeason", query, nil, nil)
	if apiErr, ok := IsAPIError(err); ok && apiErr.Status == http.StatusConflict {
		return fmt.Errorf("%w: %s", ErrAlreadyMember, apiErr.Message)
	}
	return err
}

func (c *Client) RemoveCompetitorFromSeason(ctx context.Context, seasonID, competitorID int64) error {
	query := url.Values{
		"seasonId":     {strconv.FormatInt(seasonID, 10)},
		"competitorId": {strconv.FormatInt(competitorID, 10)},
	}
	return c.do(ctx, "seasons.removeCompetitor", http.MethodDelete, "/seasons/removeCompetitorFromSeason", query, nil, nil)
}

// Competitors

func (c *Client) GetAllCompetitorsByTenant(ctx context.Context, tenant Tenant) ([]Competitor, error) {
	credential, _ := CredentialFrom(ctx)
	key := fmt.Sprintf("competitors:%s:%s", tenant, credential)
	value, err, _ := c.reads.Do(key, func() (any, error) {
		query := url.Values{"tenant": {string(tenant)}}
		var competitors []Competitor
		if err := c.do(ctx, "competitors.getAllByTenant", http.MethodGet, "/competitors/getAllCompetitorsByTenant", query, nil, &competitors); err != nil {
			return nil, err
		}
		return competitors, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]Competitor), nil
}

func (c *Client) AddCompetitor(ctx context.Context, payload AddCompetitorPayload) error {
	return c.do(ctx, "competitors.add", http.MethodPost, "/competitors/addCompetitor", nil, payload, nil)
}

// AddPointsToCompetitor applies a signed adjustment to the competitor's
// total. The authoritative result is read back by refetching; no local
// arithmetic happens here.
func (c *Client) AddPointsToCompetitor(ctx context.Context, id int64, points int) error {
	query := url.Values{
		"id":     {strconv.FormatInt(id, 10)},
		"points": {strconv.Itoa(points)},
	}
	return c.do(ctx, "competitors.addPoints", http.MethodPost, "/competitors/addPointsToCompetitor", query, nil, nil)
}

// Events

func (c *Client) GetEventsByTenant(ctx context.Context, tenant Tenant) ([]Event, error) {
	query := url.Values{"tenant": {string(tenant)}}
	var events []Event
	if err := c.do(ctx, "events.getAllByTenant", http.MethodGet, "/events/getAllByTenant", query, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) AddEvent(ctx context.Context, payload AddEventPayload) error {
	return c.do(ctx, "events.add", http.MethodPost, "/events/addEvent", nil, payload, nil)
}

func (c *Client) UpdateEvent(ctx context.Context, payload UpdateEventPayload) error {
	return c.do(ctx, "events.update", http.MethodPost, "/events/updateEvent", nil, payload, nil)
}

// Staff

func (c *Client) GetStaffByTenant(ctx context.Context, tenant Tenant) ([]Staff, error) {
	query := url.Values{"tenant": {string(tenant)}}
	var staff []Staff
	if err := c.do(ctx, "staff.getAllByTenant", http.MethodGet, "/staff/getAllByTenant", query, nil, &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (c *Client) AddStaff(ctx context.Context, payload AddStaffPayload) error {
	return c.do(ctx, "staff.add", http.MethodPost, "/staff/addStaff", nil, payload, nil)
}

func (c *Client) UpdateStaff(ctx context.Context, payload UpdateStaffPayload) error {
	return c.do(ctx, "staff.update", http.MethodPost, "/staff/updateStaff", nil, payload, nil)
}

// Announcements

func (c *Client) GetAnnouncementsByTenant(ctx context.Context, tenant Tenant) ([]Announcement, error) {
	query := url.Values{"tenant": {string(tenant)}}
	var announcements []Announcement
	if err := c.do(ctx, "announcements.getAllByTenant", http.MethodGet, "/announcements/getAllByTenant", query, nil, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (c *Client) AddAnnouncement(ctx context.Context, payload AddAnnouncementPayload) error {
	return c.do(ctx, "announcements.add", http.MethodPost, "/announcements/addAnnouncement", nil, payload, nil)
}

func (c *Client) UpdateAnnouncement(ctx context.Context, payload UpdateAnnouncementPayload) error {
	return c.do(ctx, "announcements.update", http.MethodPost, "/announcements/updateAnnouncement", nil, payload, nil)
}

// Photos

func (c *Client) AddPhoto(ctx context.Context, payload AddPhotoPayload) (int64, error) {
	var id int64
	if err := c.do(ctx, "photos.add", http.MethodPost, "/photos/addPhoto", nil, payload, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Users

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, "users.getAll", http.MethodGet, "/users/getAllUsers", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) AddUser(ctx context.Context, payload AddUserPayload) error {
	return c.do(ctx, "users.add", http.MethodPost, "/users/addUser", nil, payload, nil)
}

func (c *Client) AddRoleToUser(ctx context.Context, username, role string) error {
	query := url.Values{"username": {username}, "role": {role}}
	return c.do(ctx, "users.addRole", http.MethodPost, "/users/addRole", query, nil, nil)
}

func (c *Client) RemoveRoleFromUser(ctx context.Context, username, role string) error {
	query := url.Values{"username": {username}, "role": {role}}
	return c.do(ctx, "users.removeRole", http.MethodPost, "/users/removeRole", query, nil, nil)
}

func (c *Client) ResetPassword(ctx context.Context, username string) error {
	body := map[string]string{"username": username}
	return c.do(ctx, "users.resetPassword", http.MethodPost, "/users/resetPassword", nil, body, nil)
}

func (c *Client) ChangePassword(ctx context.Context, payload ChangePasswordPayload) error {
	return c.do(ctx, "users.changePassword", http.MethodPost, "/users/changePassword", nil, payload, nil)
}
