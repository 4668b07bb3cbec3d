package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/playtomic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, start string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", start)
	require.NoError(t, err)
	return ts
}

func booking(t *testing.T, id, resource, start string, status playtomic.GameStatus) playtomic.Booking {
	return playtomic.Booking{MatchID: id, ResourceName: resource, Start: at(t, start), GameStatus: status}
}

func TestImport(t *testing.T) {
	clubStore := club.NewMock()
	clubStore.Courts["1"] = club.Court{ID: "1", Name: "Pista Central", ExternalName: "Court 1"}
	clubStore.Courts["2"] = club.Court{ID: "2", Name: "Pista 2", ExternalName: "Court 2"}

	bookings := map[string]playtomic.Booking{
		"new":       booking(t, "new", "Court 1", "2025-06-10 18:00", playtomic.GameStatusPending),
		"mirrored":  booking(t, "mirrored", "Court 2", "2025-06-10 18:00", playtomic.GameStatusPending),
		"clash":     booking(t, "clash", "Court 1", "2025-06-10 19:30", playtomic.GameStatusPending),
		"cancelled": booking(t, "cancelled", "Court 1", "2025-06-10 21:00", playtomic.GameStatusCanceled),
		"unmapped":  booking(t, "unmapped", "Court 7", "2025-06-10 09:00", playtomic.GameStatusPending),
		"moved":     booking(t, "moved", "Court 1", "2025-06-12 10:30", playtomic.GameStatusPending),
		"tomorrow":  booking(t, "tomorrow", "Court 1", "2025-06-11 09:00", playtomic.GameStatusPending),
	}
	client := playtomic.NewMockClient()
	client.GetMatchesFunc = func(params *playtomic.SearchMatchesParams) ([]playtomic.MatchSummary, error) {
		return []playtomic.MatchSummary{
			{MatchID: "unmapped", Start: at(t, "2025-06-10 09:00")},
			{MatchID: "moved", Start: at(t, "2025-06-10 12:00")},
			{MatchID: "new", Start: at(t, "2025-06-10 18:00")},
			{MatchID: "mirrored", Start: at(t, "2025-06-10 18:00")},
			{MatchID: "clash", Start: at(t, "2025-06-10 19:30")},
			{MatchID: "broken", Start: at(t, "2025-06-10 20:00")},
			{MatchID: "cancelled", Start: at(t, "2025-06-10 21:00")},
			{MatchID: "tomorrow", Start: at(t, "2025-06-11 09:00")},
		}, nil
	}
	client.GetBookingFunc = func(matchID string) (playtomic.Booking, error) {
		b, ok := bookings[matchID]
		if !ok {
			return playtomic.Booking{}, errors.New("received non-OK HTTP status: 500")
		}
		return b, nil
	}

	svc := &matchmaking.MockService{}
	svc.MirrorExternalBookingFunc = func(ctx context.Context, b matchmaking.ExternalBooking) (*matchmaking.Match, bool, error) {
		switch b.ExternalID {
		case "mirrored":
			return &matchmaking.Match{ID: "local-2", ExternalID: b.ExternalID}, false, nil
		case "clash":
			return nil, false, apperr.SlotOccupied("court 1 is taken")
		}
		return &matchmaking.Match{ID: "local-1", ExternalID: b.ExternalID}, true, nil
	}
	metr := metrics.NewMock()

	report, err := NewImporter(clubStore, client, svc, metr, "tenant-1").Import(context.Background(), "2025-06-10")
	require.NoError(t, err)

	require.Len(t, client.GetMatchesCalls, 1)
	assert.Equal(t, []string{"tenant-1"}, client.GetMatchesCalls[0].TenantIDs)
	assert.Equal(t, "2025-06-10", client.GetMatchesCalls[0].Date)
	assert.Equal(t, playtomic.SortStartDateAsc, client.GetMatchesCalls[0].Sort)
	assert.NotContains(t, client.GetBookingCalls, "tomorrow")

	assert.Equal(t, 7, report.Fetched)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Existing)
	assert.Equal(t, 1, report.Conflict)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Results, report.Fetched)
	assert.Equal(t, report.Fetched, report.Created+report.Existing+report.Conflict+report.Skipped+report.Failed)

	require.Len(t, svc.MirrorExternalBookingCalls, 3)
	assert.Equal(t, matchmaking.ExternalBooking{ExternalID: "new", CourtID: "1", Date: "2025-06-10", Time: "18:00"}, svc.MirrorExternalBookingCalls[0])

	assert.Equal(t, 1, metr.ExternalBookings(OutcomeCreated))
	assert.Equal(t, 1, metr.ExternalBookings(OutcomeConflict))
	assert.Equal(t, 3, metr.ExternalBookings(OutcomeSkipped))
	assert.Equal(t, 1, metr.ExternalBookings(OutcomeFailed))
}

func TestImport_IgnoresOtherDates(t *testing.T) {
	client := playtomic.NewMockClient()
	client.GetMatchesFunc = func(params *playtomic.SearchMatchesParams) ([]playtomic.MatchSummary, error) {
		var summaries []playtomic.MatchSummary
		for i := 0; i < 50; i++ {
			day := "2025-06-09 21:00"
			if i%2 == 0 {
				day = "2025-06-11 09:00"
			}
			summaries = append(summaries, playtomic.MatchSummary{MatchID: fmt.Sprintf("other-%d", i), Start: at(t, day)})
		}
		return summaries, nil
	}
	client.GetBookingFunc = func(matchID string) (playtomic.Booking, error) {
		return playtomic.Booking{}, errors.New("received non-OK HTTP status: 500")
	}
	svc := &matchmaking.MockService{}

	report, err := NewImporter(club.NewMock(), client, svc, metrics.NewMock(), "tenant-1").Import(context.Background(), "2025-06-10")
	require.NoError(t, err)

	assert.Empty(t, client.GetBookingCalls, "no detail request for bookings on other days")
	assert.Zero(t, report.Fetched)
	assert.Zero(t, report.Failed)
	assert.Empty(t, report.Results)
	assert.Empty(t, svc.MirrorExternalBookingCalls)
}

func TestImportErrors(t *testing.T) {
	client := playtomic.NewMockClient()
	svc := &matchmaking.MockService{}

	_, err := NewImporter(club.NewMock(), client, svc, metrics.NewMock(), "").Import(context.Background(), "2025-06-10")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	im := NewImporter(club.NewMock(), client, svc, metrics.NewMock(), "tenant-1")
	_, err = im.Import(context.Background(), "10-06-2025")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	client.GetMatchesFunc = func(params *playtomic.SearchMatchesParams) ([]playtomic.MatchSummary, error) {
		return nil, errors.New("timeout")
	}
	_, err = im.Import(context.Background(), "2025-06-10")
	assert.Error(t, err)
	assert.Empty(t, svc.MirrorExternalBookingCalls)
}
