package playtomic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cest = time.FixedZone("CEST", 2*60*60)

type searchResult struct {
	MatchID   string `json:"match_id"`
	StartDate string `json:"start_date"`
}

func TestGetMatches_ClubLocalDay(t *testing.T) {
	var pages atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/matches", r.URL.Path)
		// Local midnight in a UTC+2 club is 22:00 UTC the day before.
		assert.Equal(t, "2025-06-09T22:00:00", r.URL.Query().Get("from_start_date"))
		assert.Equal(t, "tenant-1", r.URL.Query().Get("tenant_id"))
		assert.Equal(t, SortStartDateAsc, r.URL.Query().Get("sort"))
		pages.Add(1)

		// A full page whose tail is already past the local day.
		results := []searchResult{
			{MatchID: "late-yesterday", StartDate: "2025-06-09T21:30:00"},
			{MatchID: "after-midnight", StartDate: "2025-06-09T22:30:00"},
			{MatchID: "evening", StartDate: "2025-06-10T19:30:00"},
		}
		for len(results) < 300 {
			results = append(results, searchResult{MatchID: fmt.Sprintf("next-%d", len(results)), StartDate: "2025-06-10T22:00:00"})
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(results))
	}))
	defer server.Close()

	c := NewClient(WithBaseURL(server.URL), WithLocation(cest))
	matches, err := c.GetMatches(context.Background(), &SearchMatchesParams{
		SportID:   "PADEL",
		Sort:      SortStartDateAsc,
		TenantIDs: []string{"tenant-1"},
		Date:      "2025-06-10",
	})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "after-midnight", matches[0].MatchID)
	assert.Equal(t, "2025-06-10", matches[0].Date())
	assert.Equal(t, "00:30", matches[0].Start.Format("15:04"))
	assert.Equal(t, "evening", matches[1].MatchID)
	assert.Equal(t, "21:30", matches[1].Start.Format("15:04"))
	assert.Equal(t, int32(1), pages.Load(), "paging stops once results pass the day")
}

func TestGetMatches_Errors(t *testing.T) {
	c := NewClient(WithLocation(cest))
	_, err := c.GetMatches(context.Background(), &SearchMatchesParams{Date: "10/06/2025"})
	assert.Error(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"match_id": "m1", "start_date": "soon"}]`)
	}))
	defer server.Close()

	c = NewClient(WithBaseURL(server.URL), WithLocation(cest))
	_, err = c.GetMatches(context.Background(), &SearchMatchesParams{Date: "2025-06-10"})
	assert.Error(t, err)
}

func TestGetBooking(t *testing.T) {
	// Sample JSON response from the Playtomic API
	mockJSONResponse := `{
		"owner_id": "user-123",
		"start_date": "2025-06-10T16:00:00",
		"end_date": "2025-06-10T17:30:00",
		"status": "CONFIRMED",
		"game_status": "PENDING",
		"resource_name": "Court 1",
		"tenant": { "tenant_id": "tenant-abc", "tenant_name": "Padel Club" }
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/matches/match-abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, mockJSONResponse)
	}))
	defer server.Close()

	c := APIClient{
		httpClient: server.Client(),
		apiClient:  client.NewClient(), // Dummy client, not used in this specific test
		BaseURL:    server.URL,
		location:   cest,
	}

	booking, err := c.GetBooking(context.Background(), "match-abc")
	require.NoError(t, err)
	assert.Equal(t, "match-abc", booking.MatchID)
	assert.Equal(t, "Court 1", booking.ResourceName)
	assert.Equal(t, "2025-06-10", booking.Date())
	assert.Equal(t, "18:00", booking.Time(), "start is converted to the club's zone")
	assert.Equal(t, GameStatusPending, booking.GameStatus)
	assert.False(t, booking.Cancelled())
}

func TestGetBooking_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-OK status", http.StatusNotFound, `{}`},
		{"malformed body", http.StatusOK, `{`},
		{"bad start date", http.StatusOK, `{"start_date": "tomorrow"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			c := NewClient(WithBaseURL(server.URL), WithLocation(time.UTC))
			_, err := c.GetBooking(context.Background(), "match-abc")
			assert.Error(t, err)
		})
	}
}

func TestBookingCancelled(t *testing.T) {
	assert.True(t, Booking{GameStatus: GameStatusCanceled}.Cancelled())
	assert.True(t, Booking{Status: "CANCELED"}.Cancelled())
	assert.False(t, Booking{GameStatus: GameStatusPlayed}.Cancelled())
}
