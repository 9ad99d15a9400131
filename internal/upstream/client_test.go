package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"skylab/admin/internal/metrics"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := New(server.URL, 5*time.Second, metrics.NewWith(prometheus.NewRegistry()))
	return client, server
}

func TestBearerCredentialAttached(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"message":"","data":[]}`))
	}))

	ctx := WithCredential(context.Background(), "tok123")
	if _, err := client.GetAllSeasonsByTenant(ctx, TenantAgc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestNoCredentialNoHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"message":"","data":"tok"}`))
	}))

	if _, err := client.Login(context.Background(), "admin", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("login must not carry a credential, got %q", gotAuth)
	}
}

func TestEnvelopeFailureBecomesAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 with a failed envelope: the envelope wins.
		w.Write([]byte(`{"success":false,"message":"sezon bulunamadi","data":null}`))
	}))

	_, err := client.GetSeasonByID(context.Background(), 99)
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "sezon bulunamadi" {
		t.Fatalf("expected upstream message, got %q", apiErr.Message)
	}
}

func TestGetSeasonByID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seasons/getSeasonById" || r.URL.Query().Get("id") != "7" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.URL.RawQuery)
		}
		w.Write([]byte(`{"success":true,"message":"","data":{"id":7,"name":"2026 Spring","startDate":"01-02-2026","endDate":"30-06-2026","isActive":true,"tenant":"AGC","competitors":[{"id":3,"name":"Ada","totalPoints":120,"competitionCount":4,"isActive":true,"tenant":"AGC"}]}}`))
	}))

	season, err := client.GetSeasonByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if season.ID != 7 || season.Name != "2026 Spring" {
		t.Fatalf("unexpected season %+v", season)
	}
	if len(season.Competitors) != 1 || season.Competitors[0].TotalPoints != 120 {
		t.Fatalf("unexpected competitors %+v", season.Competitors)
	}
}

func TestAddCompetitorToSeasonConflict(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"success":false,"message":"yarismaci zaten sezonda","data":null}`))
	}))

	err := client.AddCompetitorToSeason(context.Background(), 7, 3)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := New(server.URL, 5*time.Second, metrics.NewWith(prometheus.NewRegistry()))
	server.Close()

	err := client.AddPointsToCompetitor(context.Background(), 42, 5)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestNonJSONBodyIsTransportError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))

	err := client.RemoveCompetitorFromSeason(context.Background(), 7, 3)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError for non-envelope body, got %v", err)
	}
}

func TestLoginEmptyToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"","data":""}`))
	}))

	if _, err := client.Login(context.Background(), "admin", "pw"); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestAddSeasonReturnsID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Write([]byte(`{"success":true,"message":"","data":12}`))
	}))

	id, err := client.AddSeason(context.Background(), AddSeasonPayload{
		Name: "2026 Fall", StartDate: "01-09-2026", EndDate: "31-12-2026", IsActive: true, Tenant: TenantAgc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 12 {
		t.Fatalf("expected id 12, got %d", id)
	}
}
