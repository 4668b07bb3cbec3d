package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetScheduleForDate(t *testing.T) {
	clubStore := club.NewMock()
	clubStore.Hours = club.OpeningHours{time.Tuesday: {"19:30", "18:00"}}

	offHours := matchmaking.Match{ID: "m2", CourtID: "1", Date: "2025-06-10", Time: "21:00", Status: matchmaking.StatusBooked}
	reader := &matchmaking.MockService{
		ListMatchesForDateFunc: func(ctx context.Context, date string) ([]matchmaking.Match, error) {
			return []matchmaking.Match{offHours}, nil
		},
		ListRequestsForDateFunc: func(ctx context.Context, date string) ([]matchmaking.TimeSlotRequest, error) {
			return []matchmaking.TimeSlotRequest{{ID: "r1", PlayerID: "p1", Date: date, Time: "18:00"}}, nil
		},
	}

	s, err := New(clubStore, reader).GetScheduleForDate(context.Background(), "2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, 2, s.DayOfWeek)
	assert.Equal(t, []string{"18:00", "19:30"}, s.SlotTimes)
	require.Len(t, s.Matches, 1, "matches outside the current hours are kept")
	assert.Equal(t, "m2", s.Matches[0].ID)
	assert.Len(t, s.TimeSlotRequests, 1)
	assert.Equal(t, []string{"2025-06-10"}, reader.ListMatchesForDateCalls)
}

func TestGetScheduleForDate_ClosedDay(t *testing.T) {
	clubStore := club.NewMock()
	clubStore.Hours = club.OpeningHours{}

	s, err := New(clubStore, &matchmaking.MockService{}).GetScheduleForDate(context.Background(), "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, 0, s.DayOfWeek)
	assert.NotNil(t, s.SlotTimes)
	assert.Empty(t, s.SlotTimes)
}

func TestGetScheduleForDate_Errors(t *testing.T) {
	_, err := New(club.NewMock(), &matchmaking.MockService{}).GetScheduleForDate(context.Background(), "2025/06/10")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	boom := errors.New("db down")
	reader := &matchmaking.MockService{
		ListMatchesForDateFunc: func(ctx context.Context, date string) ([]matchmaking.Match, error) { return nil, boom },
	}
	_, err = New(club.NewMock(), reader).GetScheduleForDate(context.Background(), "2025-06-10")
	assert.ErrorIs(t, err, boom)
}

func TestBuildGrid(t *testing.T) {
	s := &Schedule{
		Date:      "2025-06-10",
		DayOfWeek: 2,
		SlotTimes: []string{"18:00", "19:30"},
		Matches: []matchmaking.Match{
			{ID: "org", CourtID: "1", Time: "18:00", Capacity: 4, Status: matchmaking.StatusOrganizing,
				PlayerIDs: []string{"p1", "p2"}, InvitedPlayerIDs: []string{"viewer"}},
			{ID: "full", CourtID: "2", Time: "18:00", Capacity: 4, Status: matchmaking.StatusConfirmed,
				PlayerIDs: []string{"p3", "p4", "p5", "viewer"}},
			{ID: "late", CourtID: "1", Time: "22:30", Capacity: 4, Status: matchmaking.StatusBooked, BookedByID: "viewer"},
			{ID: "ghost", CourtID: "9", Time: "19:30", Capacity: 4, Status: matchmaking.StatusBooked},
		},
		TimeSlotRequests: []matchmaking.TimeSlotRequest{
			{PlayerID: "p7", Time: "19:30"},
			{PlayerID: "viewer", Time: "19:30"},
		},
	}
	courts := []club.Court{{ID: "1", Name: "Court 1"}, {ID: "2", Name: "Court 2"}}

	grid := BuildGrid(s, courts, "viewer")
	require.Len(t, grid.Rows, 3)
	assert.Equal(t, []string{"18:00", "19:30", "22:30"}, []string{grid.Rows[0].Time, grid.Rows[1].Time, grid.Rows[2].Time})

	first := grid.Rows[0]
	assert.True(t, first.Open)
	assert.Equal(t, Cell{CourtID: "1", State: CellOrganizing, MatchID: "org", Players: 2, OpenSpots: 2, ViewerInvited: true}, first.Cells[0])
	assert.Equal(t, Cell{CourtID: "2", State: CellConfirmed, MatchID: "full", Players: 4, ViewerPlaying: true}, first.Cells[1])
	assert.False(t, first.ViewerInterested)
	assert.Empty(t, first.InterestedPlayerIDs)

	second := grid.Rows[1]
	assert.Equal(t, CellFree, second.Cells[0].State)
	assert.Equal(t, CellFree, second.Cells[1].State, "matches on unknown courts are ignored")
	assert.True(t, second.ViewerInterested)
	assert.Equal(t, []string{"p7", "viewer"}, second.InterestedPlayerIDs)

	late := grid.Rows[2]
	assert.False(t, late.Open)
	assert.Equal(t, CellBooked, late.Cells[0].State)
	assert.True(t, late.Cells[0].ViewerPlaying)

	anonymous := BuildGrid(s, courts, "")
	assert.False(t, anonymous.Rows[1].ViewerInterested)
	assert.False(t, anonymous.Rows[0].Cells[0].ViewerInvited)
}
