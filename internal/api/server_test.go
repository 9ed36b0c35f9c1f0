package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/auth"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
	"github.com/ramonehamilton/EDH-Tracker/internal/api/handlers"
	"github.com/ramonehamilton/EDH-Tracker/internal/metrics"
	"github.com/ramonehamilton/EDH-Tracker/internal/scheduler"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

type stubCards map[string]models.Commander

func (s stubCards) GetCommander(_ context.Context, name string) *models.Commander {
	if c, ok := s[name]; ok {
		return &c
	}
	return nil
}

func (s stubCards) Suggest(_ context.Context, query string) []string {
	var out []string
	for name := range s {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(query)) {
			out = append(out, name)
		}
	}
	return out
}

func (s stubCards) ImageURL(_ context.Context, name string) string {
	if _, ok := s[name]; ok {
		return "https://img.example/" + name + ".jpg"
	}
	return ""
}

var testCards = stubCards{
	"Krenko, Mob Boss": {Name: "Krenko, Mob Boss", ColorIdentity: []models.ManaColor{models.Red}, Type: "Legendary Creature"},
}

func newTestServer(t *testing.T, jobs ...handlers.Job) *Server {
	t.Helper()

	store, err := storage.NewMemoryService()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	services := &Services{
		Friends:    friends.NewService(store, nil),
		Collection: collection.NewService(store, testCards, nil),
		Cards:      testCards,
		Jobs:       jobs,
	}
	return NewServer(&Config{Port: 0, AdminUsers: []string{"admin"}}, services, nil)
}

func do(t *testing.T, s *Server, method, path, uid string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req.Header.Set(auth.HeaderUserID, uid)
		req.Header.Set(auth.HeaderUserEmail, uid+"@example.com")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// data decodes the "data" envelope of a success response into v.
func data(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func profileOf(t *testing.T, s *Server, uid string) map[string]interface{} {
	t.Helper()
	rec := do(t, s, http.MethodGet, "/api/v1/profile", uid, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p map[string]interface{}
	data(t, rec, &p)
	return p
}

func TestNewServer_NilConfig(t *testing.T) {
	server := NewServer(nil, &Services{}, nil)
	assert.Equal(t, 8080, server.Port())
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRequiresUser(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/decks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContentTypeEnforced(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decks", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set(auth.HeaderUserID, "u1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)

	p := profileOf(t, s, "alice")
	friendID, _ := p["friendId"].(string)
	assert.Len(t, friendID, models.FriendIDLength)
	assert.Equal(t, "alice", p["username"])

	// Stable across calls.
	assert.Equal(t, friendID, profileOf(t, s, "alice")["friendId"])

	rec := do(t, s, http.MethodPut, "/api/v1/profile/username", "alice", map[string]string{"username": "  Alice  "})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Alice", profileOf(t, s, "alice")["username"])

	rec = do(t, s, http.MethodPut, "/api/v1/profile/username", "alice", map[string]string{"username": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecksGamesAndStats(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/decks", "u1", map[string]interface{}{
		"name":      "Goblins",
		"commander": map[string]string{"name": "Krenko, Mob Boss"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var deck models.Deck
	data(t, rec, &deck)
	assert.Equal(t, int64(1), deck.ID)
	assert.Equal(t, []models.ManaColor{models.Red}, deck.Commander.ColorIdentity)

	rec = do(t, s, http.MethodPost, "/api/v1/decks", "u1", map[string]interface{}{
		"name":      "goblins",
		"commander": map[string]string{"name": "Krenko, Mob Boss"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/games", "u1", map[string]interface{}{
		"date":   "2024-03-01",
		"deckId": 1,
		"won":    true,
		"opponents": []map[string]string{
			{"name": "Bob", "commander": "Atraxa, Praetors' Voice"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var game models.Game
	data(t, rec, &game)
	assert.Equal(t, "R", game.WinnerColorIdentity)
	assert.Equal(t, 2, game.TotalPlayers)

	rec = do(t, s, http.MethodPost, "/api/v1/games", "u1", map[string]interface{}{
		"date": "2024-03-02", "deckId": 99, "won": false,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/games", "u1", map[string]interface{}{
		"date": "March 2nd", "deckId": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/stats/overview", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var overview models.OverviewStats
	data(t, rec, &overview)
	assert.Equal(t, 1, overview.TotalGames)
	assert.Equal(t, 100, overview.WinRate)
	assert.Equal(t, "1W", overview.CurrentStreak)

	rec = do(t, s, http.MethodGet, "/api/v1/stats?range=2023", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard models.Dashboard
	data(t, rec, &dashboard)
	assert.Equal(t, 0, dashboard.Overview.TotalGames)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/stats/bogus", "u1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/stats?range=fortnight", "u1", nil).Code)

	rec = do(t, s, http.MethodGet, "/api/v1/buddies", "u1", nil)
	var buddies []string
	data(t, rec, &buddies)
	assert.Equal(t, []string{"Bob"}, buddies)

	rec = do(t, s, http.MethodDelete, "/api/v1/games/1", "u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/v1/games/1", "u1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodDelete, "/api/v1/games/abc", "u1", nil).Code)
}

func TestDeckLifecycle(t *testing.T) {
	s := newTestServer(t)

	for _, name := range []string{"A", "B"} {
		rec := do(t, s, http.MethodPost, "/api/v1/decks", "u1", map[string]interface{}{
			"name":      name,
			"commander": map[string]interface{}{"name": "Krenko, Mob Boss"},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodPut, "/api/v1/decks/order", "u1", map[string]interface{}{"deckIds": []int64{2, 1}}).Code)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodPut, "/api/v1/decks/1/archive", "u1", map[string]bool{"archived": true}).Code)

	var decks []models.Deck
	data(t, do(t, s, http.MethodGet, "/api/v1/decks", "u1", nil), &decks)
	require.Len(t, decks, 1)
	assert.Equal(t, "B", decks[0].Name)

	data(t, do(t, s, http.MethodGet, "/api/v1/decks?archived=true", "u1", nil), &decks)
	assert.Len(t, decks, 2)

	rec := do(t, s, http.MethodPut, "/api/v1/decks/2", "u1", map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/decks/2", "u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/v1/decks/2", "u1", nil).Code)
}

func TestFriendFlow(t *testing.T) {
	s := newTestServer(t)

	aliceID := profileOf(t, s, "alice")["friendId"].(string)
	bobID := profileOf(t, s, "bob")["friendId"].(string)
	profileOf(t, s, "carol")

	rec := do(t, s, http.MethodPost, "/api/v1/friends/requests", "alice", map[string]string{"friendId": strings.ToLower(bobID)})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest,
		do(t, s, http.MethodPost, "/api/v1/friends/requests", "alice", map[string]string{"friendId": bobID}).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, s, http.MethodPost, "/api/v1/friends/requests", "alice", map[string]string{"friendId": aliceID}).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, s, http.MethodPost, "/api/v1/friends/requests", "alice", map[string]string{"friendId": "short"}).Code)
	assert.Equal(t, http.StatusNotFound,
		do(t, s, http.MethodPost, "/api/v1/friends/requests", "alice", map[string]string{"friendId": "ZZZZZZZZ"}).Code)

	var requests []models.FriendRequest
	data(t, do(t, s, http.MethodGet, "/api/v1/friends/requests", "bob", nil), &requests)
	require.Len(t, requests, 1)
	assert.Equal(t, aliceID, requests[0].FromFriendID)
	assert.Equal(t, "alice", requests[0].FromUsername)

	rec = do(t, s, http.MethodPost, "/api/v1/friends/requests/"+aliceID+"/accept", "bob", nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/v1/friends/requests/"+bobID+"/accept", "carol", nil).Code)

	var list []models.Friend
	data(t, do(t, s, http.MethodGet, "/api/v1/friends", "alice", nil), &list)
	require.Len(t, list, 1)
	assert.Equal(t, bobID, list[0].FriendID)
	assert.Equal(t, "bob", list[0].Username)

	rec = do(t, s, http.MethodGet, "/api/v1/friends/"+bobID, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var public models.FriendPublicData
	data(t, rec, &public)
	assert.Equal(t, bobID, public.FriendID)
	assert.NotNil(t, public.Games)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/v1/friends/"+aliceID+"/stats", "bob", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/friends/"+bobID, "carol", nil).Code)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/friends/"+bobID, "alice", nil).Code)
	data(t, do(t, s, http.MethodGet, "/api/v1/friends", "alice", nil), &list)
	assert.Empty(t, list)

	// Decline is idempotent.
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/v1/friends/requests/"+aliceID, "carol", nil).Code)
}

func TestCards(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/cards/commander?name=Krenko,%20Mob%20Boss", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var commander models.Commander
	data(t, rec, &commander)
	assert.Equal(t, "Legendary Creature", commander.Type)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/cards/commander?name=Nobody", "u1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/cards/commander", "u1", nil).Code)

	var names []string
	data(t, do(t, s, http.MethodGet, "/api/v1/cards/suggest?q=kre", "u1", nil), &names)
	assert.Equal(t, []string{"Krenko, Mob Boss"}, names)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/v1/cards/image?name=Krenko,%20Mob%20Boss", "u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/cards/image?name=Nobody", "u1", nil).Code)
}

func seedGame(t *testing.T, s *Server, uid string) {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/v1/decks", uid, map[string]interface{}{
		"name":      "Goblins",
		"commander": map[string]string{"name": "Krenko, Mob Boss"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/v1/games", uid, map[string]interface{}{
		"date": "2024-03-01", "deckId": 1, "won": false, "winnerColorIdentity": "ub",
		"opponents": []map[string]string{{"name": "Bob", "commander": "Yuriko, the Tiger's Shadow"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	seedGame(t, s, "u1")

	rec := do(t, s, http.MethodGet, "/api/v1/export/games", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "games_")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,date,deck"))
	assert.Contains(t, rec.Body.String(), "Dimir")

	rec = do(t, s, http.MethodGet, "/api/v1/export/buddies?format=json", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var buddies []models.BuddyStat
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buddies))
	require.Len(t, buddies, 1)
	assert.Equal(t, 1, buddies[0].Losses)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/export/overview", "u1", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/v1/export/overview?format=json", "u1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/v1/export/games?format=xml", "u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/export/unknown", "u1", nil).Code)
}

func TestBackupAndRestore(t *testing.T) {
	s := newTestServer(t)
	seedGame(t, s, "u1")

	for _, gzip := range []bool{false, true} {
		path := "/api/v1/export/backup"
		contentType := "application/json"
		if gzip {
			path += "?gzip=true"
			contentType = "application/gzip"
		}

		rec := do(t, s, http.MethodGet, path, "u1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/import/backup", bytes.NewReader(rec.Body.Bytes()))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(auth.HeaderUserID, "u2")
		restored := httptest.NewRecorder()
		s.Handler().ServeHTTP(restored, req)
		require.Equal(t, http.StatusOK, restored.Code, restored.Body.String())

		var games []models.Game
		data(t, do(t, s, http.MethodGet, "/api/v1/games", "u2", nil), &games)
		require.Len(t, games, 1)
		assert.Equal(t, "UB", games[0].WinnerColorIdentity)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/backup", strings.NewReader(`{"version":42}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderUserID, "u2")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCharts(t *testing.T) {
	s := newTestServer(t)
	seedGame(t, s, "u1")

	for _, kind := range []string{"lifetime", "monthly", "colors"} {
		rec := do(t, s, http.MethodGet, "/api/v1/charts/"+kind, "u1", nil)
		require.Equal(t, http.StatusOK, rec.Code, kind)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	}
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/charts/radar", "u1", nil).Code)
}

func TestAdminReconcile(t *testing.T) {
	s := newTestServer(t)
	profileOf(t, s, "alice")

	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodPost, "/api/v1/admin/reconcile", "alice", nil).Code)

	rec := do(t, s, http.MethodPost, "/api/v1/admin/reconcile?dryRun=true", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report friends.ReconcileReport
	data(t, rec, &report)
	assert.GreaterOrEqual(t, report.ProfilesScanned, 1)
}

func TestAdminMetrics(t *testing.T) {
	s := newTestServer(t)
	profileOf(t, s, "alice")
	profileOf(t, s, "alice")

	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodGet, "/api/v1/admin/metrics", "alice", nil).Code)

	rec := do(t, s, http.MethodGet, "/api/v1/admin/metrics?reset=true", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats metrics.APIStats
	data(t, rec, &stats)
	assert.GreaterOrEqual(t, stats.Requests, uint64(3))
	assert.GreaterOrEqual(t, stats.ClientErrors, uint64(1))

	found := false
	for route, latency := range stats.Routes {
		if strings.HasPrefix(route, "GET /api/v1/profile") {
			found = true
			assert.Equal(t, 2, latency.Count)
		}
	}
	assert.True(t, found, "profile route missing from %v", stats.Routes)

	assert.Equal(t, uint64(1), s.Metrics().Stats().Requests, "only the reset request itself is counted after reset")
}

func TestAdminJobs(t *testing.T) {
	ran := make(chan struct{}, 1)
	job, err := scheduler.New(func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}, scheduler.Config{Name: "reconcile", Interval: time.Hour}, nil)
	require.NoError(t, err)

	s := newTestServer(t, job)

	rec := do(t, s, http.MethodPost, "/api/v1/admin/jobs/reconcile/run", "admin", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "a stopped job cannot be triggered")

	require.NoError(t, job.Start(context.Background()))
	t.Cleanup(func() { _ = job.Stop() })

	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodPost, "/api/v1/admin/jobs/reconcile/run", "alice", nil).Code)

	rec = do(t, s, http.MethodPost, "/api/v1/admin/jobs/reconcile/run", "admin", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("triggered job did not run")
	}

	rec = do(t, s, http.MethodGet, "/api/v1/admin/jobs", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var statuses []handlers.JobStatus
	data(t, rec, &statuses)
	require.Len(t, statuses, 1)
	assert.Equal(t, "reconcile", statuses[0].Name)
	assert.True(t, statuses[0].Running)
	assert.Equal(t, "1h0m0s", statuses[0].Interval)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/v1/admin/jobs/nope/run", "admin", nil).Code)
}
