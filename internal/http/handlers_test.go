package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/auth"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/config"
	"github.com/ismlunati/padelMeet/internal/database"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/playtomic"
	"github.com/ismlunati/padelMeet/internal/processor"
	"github.com/ismlunati/padelMeet/internal/schedule"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDate     = "2025-06-10"
	testPassword = "password"
)

type testEnv struct {
	server    *Server
	metrics   *metrics.Mock
	playtomic *playtomic.MockClient
	tokens    map[string]string
}

// setupTestServer wires the server against an in-memory database with two
// courts, an admin and four players, all logged in.
func setupTestServer(t *testing.T) (*testEnv, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	ctx := context.Background()
	clubStore := club.New(db)
	require.NoError(t, clubStore.UpsertCourt(ctx, club.Court{ID: "1", Name: "Pista Central", ExternalName: "Court 1"}))
	require.NoError(t, clubStore.UpsertCourt(ctx, club.Court{ID: "2", Name: "Pista 2"}))

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	players := []club.PlayerInfo{
		{ID: "admin", Name: "Admin", Email: "admin@example.com", Role: club.RoleAdmin},
		{ID: "p1", Name: "Ana", Email: "p1@example.com"},
		{ID: "p2", Name: "Bea", Email: "p2@example.com"},
		{ID: "p3", Name: "Carla", Email: "p3@example.com"},
		{ID: "p4", Name: "Dani", Email: "p4@example.com"},
	}
	for _, p := range players {
		p.PasswordHash = hash
		require.NoError(t, clubStore.UpsertPlayer(ctx, p))
	}

	metr := metrics.NewMock()
	service := matchmaking.NewService(matchmaking.NewStore(db), clubStore)
	ptc := playtomic.NewMockClient()
	importer := processor.NewImporter(clubStore, ptc, service, metr, "tenant-1")
	authenticator := auth.New(clubStore, "test-secret", time.Hour)
	cfg := config.Config{AllowedOrigins: []string{"http://localhost:5173"}}

	server := NewServer(cfg, clubStore, service, schedule.New(clubStore, service), authenticator, importer,
		metr, metrics.NewMetricsHandler(prometheus.NewRegistry()), metrics.New(db))

	env := &testEnv{server: server, metrics: metr, playtomic: ptc, tokens: map[string]string{}}
	for _, p := range players {
		session, err := authenticator.Login(ctx, p.Email, testPassword)
		require.NoError(t, err)
		env.tokens[p.ID] = session.Token
	}
	return env, teardown
}

// do sends a request as the given player ("" for anonymous) and returns the recorder.
func (e *testEnv) do(t *testing.T, method, target, as string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+e.tokens[as])
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()
	require.Equal(t, status, rr.Code, rr.Body.String())
	body := decode[errorResponse](t, rr)
	assert.Equal(t, kind, body.Error)
	assert.NotEmpty(t, body.Message)
}

func TestHealthCheckHandler(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	rr := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestLoginHandler(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	rr := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "p1@example.com", Password: testPassword})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var session struct {
		User  club.PlayerInfo `json:"user"`
		Token string          `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &session))
	assert.Equal(t, "p1", session.User.ID)
	assert.NotEmpty(t, session.Token)
	assert.NotContains(t, rr.Body.String(), "password", "the hash never leaves the server")

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "p1@example.com", Password: "nope"})
	assertError(t, rr, http.StatusUnauthorized, "UNAUTHORIZED")

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"p1@example.com","password":"x","remember":true}`)
	assertError(t, rr, http.StatusBadRequest, "VALIDATION_ERROR")

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"p1@example.com"}`)
	assertError(t, rr, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	credentials := `{"email":"p1@example.com","password":"` + testPassword + `"}`
	tests := []struct {
		name string
		body string
		want int
	}{
		{"single object", credentials, http.StatusOK},
		{"trailing newline", credentials + "\n", http.StatusOK},
		{"closing brace", credentials + "}", http.StatusBadRequest},
		{"closing bracket", credentials + "]", http.StatusBadRequest},
		{"second object", credentials + " {}", http.StatusBadRequest},
		{"garbage", credentials + "x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/auth/login", "", tt.body)
			if tt.want == http.StatusOK {
				assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
				return
			}
			assertError(t, rr, tt.want, "VALIDATION_ERROR")
		})
	}
}

func TestAuthentication(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	assertError(t, env.do(t, http.MethodGet, "/api/me", "", nil), http.StatusUnauthorized, "UNAUTHORIZED")

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()
	env.server.ServeHTTP(rr, req)
	assertError(t, rr, http.StatusUnauthorized, "UNAUTHORIZED")

	rr = env.do(t, http.MethodGet, "/api/me", "p2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Bea", decode[club.PlayerInfo](t, rr).Name)

	// Admin-only routes reject players.
	rr = env.do(t, http.MethodPost, "/api/matches", "p1", createMatchRequest{CourtID: "1", Date: testDate, Time: "18:00"})
	assertError(t, rr, http.StatusForbidden, "FORBIDDEN")
	assert.Equal(t, 1, env.metrics.RejectedCommands("FORBIDDEN"))
}

func TestMatchLifecycle(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	rr := env.do(t, http.MethodPost, "/api/time-slot-requests", "p2", timeSlotRequest{Date: testDate, Time: "18:00"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/matches", "admin", createMatchRequest{
		CourtID: "1", Date: testDate, Time: "18:00", InvitedPlayerIDs: []string{"p1", "p2", "p3"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	match := decode[matchmaking.Match](t, rr)
	assert.Equal(t, matchmaking.StatusOrganizing, match.Status)
	assert.Equal(t, []string{"admin"}, match.PlayerIDs)
	assert.Equal(t, []string{"p1", "p2", "p3"}, match.InvitedPlayerIDs)

	rr = env.do(t, http.MethodGet, "/api/time-slot-requests?date="+testDate, "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]matchmaking.TimeSlotRequest](t, rr), "organizing clears the slot's requests")

	rr = env.do(t, http.MethodGet, "/api/me/invitations", "p1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[[]matchmaking.Match](t, rr), 1)

	// Second organizer on the same slot.
	rr = env.do(t, http.MethodPost, "/api/bookings", "p4", bookingRequest{CourtID: "1", Date: testDate, Time: "18:00"})
	assertError(t, rr, http.StatusConflict, "SLOT_OCCUPIED")

	// Uninvited response.
	rr = env.do(t, http.MethodPost, "/api/matches/"+match.ID+"/response", "p4", respondRequest{Response: matchmaking.ResponseAccept})
	assertError(t, rr, http.StatusForbidden, "NOT_INVITED")

	for _, p := range []string{"p1", "p2", "p3"} {
		rr = env.do(t, http.MethodPost, "/api/matches/"+match.ID+"/response", p, respondRequest{Response: matchmaking.ResponseAccept})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	match = decode[matchmaking.Match](t, rr)
	assert.Equal(t, matchmaking.StatusConfirmed, match.Status)
	assert.Empty(t, match.InvitedPlayerIDs)

	rr = env.do(t, http.MethodPost, "/api/matches/"+match.ID+"/invitations", "admin", inviteRequest{PlayerIDs: []string{"p4"}})
	assertError(t, rr, http.StatusConflict, "INVALID_STATE")

	rr = env.do(t, http.MethodGet, "/api/me/matches", "p3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]matchmaking.Match](t, rr), 1)

	// Players cannot cancel a match they do not organize; the admin can.
	assertError(t, env.do(t, http.MethodPost, "/api/matches/"+match.ID+"/cancel", "p2", nil), http.StatusForbidden, "FORBIDDEN")
	rr = env.do(t, http.MethodPost, "/api/matches/"+match.ID+"/cancel", "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, matchmaking.StatusCancelled, decode[matchmaking.Match](t, rr).Status)

	rr = env.do(t, http.MethodPost, "/api/bookings", "p4", bookingRequest{CourtID: "1", Date: testDate, Time: "18:00"})
	require.Equal(t, http.StatusCreated, rr.Code, "a cancelled match frees the slot")
	booked := decode[matchmaking.Match](t, rr)
	assert.Equal(t, "p4", booked.BookedByID)
	assert.Empty(t, booked.PlayerIDs)

	rr = env.do(t, http.MethodGet, "/api/matches/"+booked.ID, "p1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assertError(t, env.do(t, http.MethodGet, "/api/matches/missing", "p1", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestConcurrentLastSeat(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	rr := env.do(t, http.MethodPost, "/api/matches", "admin", createMatchRequest{
		CourtID: "2", Date: testDate, Time: "19:30", InvitedPlayerIDs: []string{"p1", "p2", "p3", "p4"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	match := decode[matchmaking.Match](t, rr)
	for _, p := range []string{"p1", "p2"} {
		rr = env.do(t, http.MethodPost, "/api/matches/"+match.ID+"/response", p, respondRequest{Response: matchmaking.ResponseAccept})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i, p := range []string{"p3", "p4"} {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			codes[i] = env.do(t, http.MethodPost, "/api/matches/"+match.ID+"/response", p, respondRequest{Response: matchmaking.ResponseAccept}).Code
		}(i, p)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusConflict}, codes)
}

func TestScheduleHandlers(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/bookings", "p1", bookingRequest{CourtID: "2", Date: testDate, Time: "09:00"}).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/time-slot-requests", "p2", timeSlotRequest{Date: testDate, Time: "21:00"}).Code)

	rr := env.do(t, http.MethodGet, "/api/schedule?date="+testDate, "p2", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	sched := decode[schedule.Schedule](t, rr)
	assert.Equal(t, 2, sched.DayOfWeek)
	assert.Len(t, sched.Matches, 1)
	assert.Len(t, sched.TimeSlotRequests, 1)
	assert.Equal(t, club.DefaultSlotTimes, sched.SlotTimes)

	rr = env.do(t, http.MethodGet, "/api/schedule/grid?date="+testDate, "p2", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	grid := decode[schedule.Grid](t, rr)
	require.Len(t, grid.Rows, len(club.DefaultSlotTimes))
	assert.Equal(t, schedule.CellBooked, grid.Rows[0].Cells[1].State)
	assert.True(t, grid.Rows[len(grid.Rows)-1].ViewerInterested)

	assertError(t, env.do(t, http.MethodGet, "/api/schedule", "p2", nil), http.StatusBadRequest, "VALIDATION_ERROR")
	assertError(t, env.do(t, http.MethodGet, "/api/schedule?date=10-06-2025", "p2", nil), http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestOpeningHoursHandlers(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	rr := env.do(t, http.MethodGet, "/api/opening-hours", "p1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[map[string][]string](t, rr), 7)

	rr = env.do(t, http.MethodPut, "/api/opening-hours", "p1", map[string][]string{"2": {"18:00"}})
	assertError(t, rr, http.StatusForbidden, "FORBIDDEN")

	rr = env.do(t, http.MethodPut, "/api/opening-hours", "admin", map[string][]string{"9": {"18:00"}})
	assertError(t, rr, http.StatusBadRequest, "VALIDATION_ERROR")

	rr = env.do(t, http.MethodPut, "/api/opening-hours", "admin", map[string][]string{"2": {"19:30", "18:00"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	hours := decode[map[string][]string](t, rr)
	assert.Equal(t, []string{"18:00", "19:30"}, hours["2"])
	assert.Empty(t, hours["3"])

	// 2025-06-10 is a Tuesday; 09:00 is no longer bookable.
	rr = env.do(t, http.MethodPost, "/api/bookings", "p1", bookingRequest{CourtID: "1", Date: testDate, Time: "09:00"})
	assertError(t, rr, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestPlayersAndCourtsHandlers(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	rr := env.do(t, http.MethodGet, "/api/players", "p1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]club.PlayerInfo](t, rr), 5)

	rr = env.do(t, http.MethodGet, "/api/courts", "p1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]club.Court](t, rr), 2)

	rr = env.do(t, http.MethodPut, "/api/players/p3/role", "admin", roleRequest{Role: club.RoleAdmin})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, club.RoleAdmin, decode[club.PlayerInfo](t, rr).Role)

	assertError(t, env.do(t, http.MethodPut, "/api/players/p3/role", "admin", roleRequest{Role: "owner"}), http.StatusBadRequest, "VALIDATION_ERROR")
	assertError(t, env.do(t, http.MethodPut, "/api/players/nobody/role", "admin", roleRequest{Role: club.RolePlayer}), http.StatusNotFound, "NOT_FOUND")
}

func TestImportPlaytomicHandler(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	start, err := time.Parse("2006-01-02 15:04", testDate+" 16:30")
	require.NoError(t, err)
	env.playtomic.GetMatchesFunc = func(params *playtomic.SearchMatchesParams) ([]playtomic.MatchSummary, error) {
		return []playtomic.MatchSummary{{MatchID: "ext-1", Start: start}}, nil
	}
	env.playtomic.GetBookingFunc = func(matchID string) (playtomic.Booking, error) {
		return playtomic.Booking{MatchID: matchID, ResourceName: "Court 1", Start: start, GameStatus: playtomic.GameStatusPending}, nil
	}

	for i, want := range []int{1, 0} {
		rr := env.do(t, http.MethodPost, "/api/admin/import/playtomic?date="+testDate, "admin", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		report := decode[processor.ImportReport](t, rr)
		assert.Equal(t, want, report.Created, "run %d", i)
		assert.Equal(t, 1-want, report.Existing, "run %d", i)
	}

	rr := env.do(t, http.MethodGet, "/api/schedule?date="+testDate, "p1", nil)
	sched := decode[schedule.Schedule](t, rr)
	require.Len(t, sched.Matches, 1)
	assert.Equal(t, matchmaking.SourcePlaytomic, sched.Matches[0].Source)
	assert.Equal(t, "ext-1", sched.Matches[0].ExternalID)

	assertError(t, env.do(t, http.MethodPost, "/api/admin/import/playtomic?date="+testDate, "p1", nil), http.StatusForbidden, "FORBIDDEN")
}

func TestStatsAndMetrics(t *testing.T) {
	env, teardown := setupTestServer(t)
	defer teardown()

	env.server.Counters.Increment("events.court-booked")
	rr := env.do(t, http.MethodGet, "/api/admin/stats", "admin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[map[string]int](t, rr)["events.court-booked"])

	assert.Positive(t, env.metrics.RequestCount("GET /api/admin/stats"))

	rr = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	assertError(t, env.do(t, http.MethodGet, "/api/nowhere", "p1", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		"NOT_FOUND":        http.StatusNotFound,
		"SLOT_OCCUPIED":    http.StatusConflict,
		"MATCH_FULL":       http.StatusConflict,
		"UNAUTHORIZED":     http.StatusUnauthorized,
		"FORBIDDEN":        http.StatusForbidden,
		"VALIDATION_ERROR": http.StatusBadRequest,
		"INVALID_STATE":    http.StatusConflict,
		"NOT_INVITED":      http.StatusForbidden,
		"PLAYER_BUSY":      http.StatusConflict,
		"INTERNAL":         http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, statusFor(apperr.Kind(kind)), kind)
	}
}
