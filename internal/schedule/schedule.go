package schedule

import (
	"context"
	"fmt"
	"slices"

	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
)

// New creates an Assembler.
func New(clubStore club.ClubStore, matches MatchReader) Assembler {
	return &assembler{
		club:    clubStore,
		matches: matches,
	}
}

// GetScheduleForDate returns the day's slot times with every live match of
// the date, including matches at times the opening hours no longer list.
func (a *assembler) GetScheduleForDate(ctx context.Context, date string) (*Schedule, error) {
	day, err := club.ParseDate(date)
	if err != nil {
		return nil, err
	}
	hours, err := a.club.GetOpeningHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get opening hours: %w", err)
	}
	matches, err := a.matches.ListMatchesForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	requests, err := a.matches.ListRequestsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list time slot requests: %w", err)
	}

	slots := hours.Slots(day.Weekday())
	if slots == nil {
		slots = []string{}
	}
	return &Schedule{
		Date:             date,
		DayOfWeek:        int(day.Weekday()),
		SlotTimes:        slots,
		Matches:          matches,
		TimeSlotRequests: requests,
	}, nil
}

// BuildGrid lays a schedule out as rows of times by columns of courts. Rows
// are the opening-hours times plus the time of any match outside them.
// Matches on courts not in courts are left out.
func BuildGrid(s *Schedule, courts []club.Court, viewerID string) Grid {
	times := slices.Clone(s.SlotTimes)
	for _, m := range s.Matches {
		if !slices.Contains(times, m.Time) {
			times = append(times, m.Time)
		}
	}
	slices.Sort(times)

	type key struct{ court, time string }
	byCell := make(map[key]matchmaking.Match, len(s.Matches))
	for _, m := range s.Matches {
		byCell[key{m.CourtID, m.Time}] = m
	}
	interested := make(map[string][]string)
	for _, r := range s.TimeSlotRequests {
		interested[r.Time] = append(interested[r.Time], r.PlayerID)
	}

	rows := make([]Row, 0, len(times))
	for _, t := range times {
		row := Row{
			Time:                t,
			Open:                slices.Contains(s.SlotTimes, t),
			Cells:               make([]Cell, 0, len(courts)),
			InterestedPlayerIDs: []string{},
		}
		if ids, ok := interested[t]; ok {
			row.InterestedPlayerIDs = ids
			row.ViewerInterested = viewerID != "" && slices.Contains(ids, viewerID)
		}
		for _, c := range courts {
			m, ok := byCell[key{c.ID, t}]
			if !ok {
				row.Cells = append(row.Cells, Cell{CourtID: c.ID, State: CellFree})
				continue
			}
			row.Cells = append(row.Cells, cellFor(&m, viewerID))
		}
		rows = append(rows, row)
	}

	return Grid{
		Date:      s.Date,
		DayOfWeek: s.DayOfWeek,
		Courts:    courts,
		Rows:      rows,
	}
}

func cellFor(m *matchmaking.Match, viewerID string) Cell {
	cell := Cell{CourtID: m.CourtID, MatchID: m.ID, Players: len(m.PlayerIDs)}
	switch m.Status {
	case matchmaking.StatusBooked:
		cell.State = CellBooked
		cell.ViewerPlaying = viewerID != "" && m.BookedByID == viewerID
		return cell
	case matchmaking.StatusConfirmed:
		cell.State = CellConfirmed
	default:
		cell.State = CellOrganizing
		cell.OpenSpots = max(m.Capacity-len(m.PlayerIDs), 0)
	}
	if viewerID != "" {
		cell.ViewerPlaying = m.HasPlayer(viewerID)
		cell.ViewerInvited = m.IsInvited(viewerID)
	}
	return cell
}
