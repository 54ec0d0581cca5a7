package datastore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dugoutlabs/ballclub/internal/domain/player"
	"github.com/dugoutlabs/ballclub/internal/domain/team"
	"github.com/dugoutlabs/ballclub/internal/domain/user"
	"github.com/dugoutlabs/ballclub/internal/platform/session"
	"github.com/dugoutlabs/ballclub/internal/usecase"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientConfig{
		BaseURL:    baseURL,
		AnonKey:    "anon-key",
		ServiceKey: "service-key",
	})
}

func sessionCtx(ctx context.Context, token string) context.Context {
	return session.WithSession(ctx, user.Session{
		AccessToken: token,
		User:        user.User{ID: "user-1"},
	})
}

func TestTeamRepository_List(t *testing.T) {
	var gotPath, gotOrder, gotBearer, gotAPIKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOrder = r.URL.Query().Get("order")
		gotBearer = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"t2","name":"River Cats","user_id":"user-1","created_at":"2026-03-02T12:00:00Z"},
			{"id":"t1","name":"Tigers","user_id":"user-1","created_at":"2026-03-01T12:00:00Z"}
		]`))
	}))
	defer srv.Close()

	repo := NewTeamRepository(newTestClient(srv.URL))
	teams, err := repo.List(sessionCtx(t.Context(), "tok-1"))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if gotPath != "/rest/v1/teams" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotOrder != "created_at.desc" {
		t.Fatalf("order = %q", gotOrder)
	}
	if gotBearer != "Bearer tok-1" {
		t.Fatalf("authorization = %q", gotBearer)
	}
	if gotAPIKey != "anon-key" {
		t.Fatalf("apikey = %q", gotAPIKey)
	}
	if len(teams) != 2 || teams[0].Name != "River Cats" {
		t.Fatalf("unexpected teams: %+v", teams)
	}
}

func TestTeamRepository_GetByID_SingleObjectRead(t *testing.T) {
	var gotAccept, gotFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotFilter = r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"t1","name":"Tigers","user_id":"user-1","created_at":"2026-03-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	repo := NewTeamRepository(newTestClient(srv.URL))
	item, exists, err := repo.GetByID(t.Context(), "t1")
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}

	if gotAccept != acceptSingleObject {
		t.Fatalf("accept = %q", gotAccept)
	}
	if gotFilter != "eq.t1" {
		t.Fatalf("id filter = %q", gotFilter)
	}
	if !exists || item.Name != "Tigers" {
		t.Fatalf("unexpected result: exists=%t item=%+v", exists, item)
	}
}

func TestTeamRepository_GetByID_NoRowIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
	}))
	defer srv.Close()

	repo := NewTeamRepository(newTestClient(srv.URL))
	_, exists, err := repo.GetByID(t.Context(), "missing")
	if err != nil {
		t.Fatalf("expected no error for missing row, got %v", err)
	}
	if exists {
		t.Fatal("expected exists=false")
	}
}

func TestTeamRepository_Create_InsertEcho(t *testing.T) {
	var gotPrefer, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"t9","name":"Harbor Hawks","user_id":"user-1","created_at":"2026-08-29T09:00:00Z"}`))
	}))
	defer srv.Close()

	repo := NewTeamRepository(newTestClient(srv.URL))
	created, err := repo.Create(sessionCtx(t.Context(), "tok-1"), team.NewTeam{Name: "Harbor Hawks", UserID: "user-1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("method = %q", gotMethod)
	}
	if gotPrefer != "return=representation" {
		t.Fatalf("prefer = %q", gotPrefer)
	}
	if created.ID != "t9" {
		t.Fatalf("expected server-assigned id, got %q", created.ID)
	}
}

func TestPlayerRepository_ListByTeam(t *testing.T) {
	var gotFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("team_id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"p1","team_id":"t1","first_name":"Babe","last_name":"Ruth","email":"babe@example.com"}]`))
	}))
	defer srv.Close()

	repo := NewPlayerRepository(newTestClient(srv.URL))
	players, err := repo.ListByTeam(t.Context(), "t1")
	if err != nil {
		t.Fatalf("list by team failed: %v", err)
	}
	if gotFilter != "eq.t1" {
		t.Fatalf("team_id filter = %q", gotFilter)
	}
	if len(players) != 1 || players[0].FirstName != "Babe" {
		t.Fatalf("unexpected players: %+v", players)
	}
}

func TestPlayerRepository_Create_ValidatesInput(t *testing.T) {
	repo := NewPlayerRepository(newTestClient("http://unused.invalid"))

	_, err := repo.Create(t.Context(), player.NewPlayer{TeamID: "t1", FirstName: "", LastName: "Ruth", Email: "babe@example.com"})
	if err == nil {
		t.Fatal("expected validation error before any request")
	}
}

func TestClient_BearerPrecedence(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	if got := client.bearer(sessionCtx(context.Background(), "tok-1")); got != "tok-1" {
		t.Fatalf("session bearer = %q, want tok-1", got)
	}
	if got := client.bearer(context.Background()); got != "service-key" {
		t.Fatalf("service bearer = %q, want service-key", got)
	}

	anonOnly := NewClient(ClientConfig{BaseURL: "http://unused.invalid", AnonKey: "anon-key"})
	if got := anonOnly.bearer(context.Background()); got != "anon-key" {
		t.Fatalf("anon bearer = %q, want anon-key", got)
	}
}

func TestClient_ReadsCollapseConcurrentIdenticalCalls(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(50 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	repo := NewTeamRepository(newTestClient(srv.URL))
	ctx := sessionCtx(context.Background(), "tok-1")

	const workers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, _ = repo.List(ctx)
		}()
	}
	close(start)
	wg.Wait()

	// All callers share one bearer and one URL; the reads collapse to far
	// fewer requests than callers.
	if got := hits.Load(); got >= workers {
		t.Fatalf("expected deduplicated reads, server saw %d hits", got)
	}
}

func TestClient_TransportFailureMapsToDependencyUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	repo := NewTeamRepository(newTestClient(srv.URL))
	_, err := repo.List(t.Context())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestClient_PolicyRejectionMapsToUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"JWT expired"}`))
	}))
	defer srv.Close()

	repo := NewTeamRepository(newTestClient(srv.URL))
	_, err := repo.List(sessionCtx(t.Context(), "stale"))
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_ConstraintRejectionMapsToInvalidInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"duplicate key value violates unique constraint \"players_email_key\""}`))
	}))
	defer srv.Close()

	repo := NewPlayerRepository(newTestClient(srv.URL))
	_, err := repo.Create(sessionCtx(t.Context(), "tok-1"), player.NewPlayer{
		TeamID:    "t1",
		FirstName: "Ty",
		LastName:  "Cobb",
		Email:     "ty@example.com",
	})
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "duplicate key value") {
		t.Fatalf("expected the collaborator message verbatim, got %v", err)
	}
}
