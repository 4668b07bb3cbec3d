package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/playtomic"
)

// NewImporter creates an Importer for one Playtomic tenant.
func NewImporter(clubStore club.ClubStore, client playtomic.PlaytomicClient, mirror Mirror, metrics metrics.Metrics, tenantID string) *Importer {
	return &Importer{
		club:      clubStore,
		playtomic: client,
		mirror:    mirror,
		metrics:   metrics,
		tenantID:  tenantID,
	}
}

// Import mirrors the tenant's bookings on date as BOOKED matches. Bookings
// that collide with a local match are reported as conflicts and left alone.
// A failure on one booking never aborts the run.
func (im *Importer) Import(ctx context.Context, date string) (*ImportReport, error) {
	if im.tenantID == "" {
		return nil, apperr.InvalidState("playtomic import is not configured")
	}
	if _, err := club.ParseDate(date); err != nil {
		return nil, err
	}

	log.Info("Importing Playtomic bookings", "tenant", im.tenantID, "date", date)
	summaries, err := im.playtomic.GetMatches(ctx, &playtomic.SearchMatchesParams{
		SportID:   "PADEL",
		Sort:      playtomic.SortStartDateAsc,
		TenantIDs: []string{im.tenantID},
		Date:      date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playtomic matches: %w", err)
	}

	// Every summary on date is fetched and ends in exactly one outcome.
	report := &ImportReport{Date: date, Results: []ImportResult{}}
	for _, summary := range summaries {
		if summary.Date() != date {
			continue
		}
		report.Fetched++
		booking, err := im.playtomic.GetBooking(ctx, summary.MatchID)
		if err != nil {
			log.Error("Failed to fetch Playtomic booking", "error", err, "matchID", summary.MatchID)
			im.record(report, ImportResult{ExternalID: summary.MatchID, Time: summary.Start.Format("15:04"), Outcome: OutcomeFailed, Reason: err.Error()})
			continue
		}
		im.record(report, im.importOne(ctx, booking, date))
	}

	log.Info("Finished Playtomic import", "date", date, "fetched", report.Fetched, "created", report.Created,
		"existing", report.Existing, "conflict", report.Conflict, "skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

func (im *Importer) importOne(ctx context.Context, booking playtomic.Booking, date string) ImportResult {
	result := ImportResult{ExternalID: booking.MatchID, Time: booking.Time()}
	if booking.Date() != date {
		result.Outcome, result.Reason = OutcomeSkipped, "moved to "+booking.Date()
		return result
	}
	if booking.Cancelled() {
		result.Outcome, result.Reason = OutcomeSkipped, "cancelled on playtomic"
		return result
	}

	court, err := im.club.FindCourtByExternalName(ctx, booking.ResourceName)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn("No court mapped to Playtomic resource", "resource", booking.ResourceName, "matchID", booking.MatchID)
			result.Outcome, result.Reason = OutcomeSkipped, fmt.Sprintf("no court mapped to %q", booking.ResourceName)
			return result
		}
		result.Outcome, result.Reason = OutcomeFailed, err.Error()
		return result
	}
	result.CourtID = court.ID

	match, created, err := im.mirror.MirrorExternalBooking(ctx, matchmaking.ExternalBooking{
		ExternalID: booking.MatchID,
		CourtID:    court.ID,
		Date:       booking.Date(),
		Time:       booking.Time(),
	})
	switch {
	case errors.Is(err, apperr.ErrSlotOccupied):
		log.Warn("Playtomic booking conflicts with a local match", "matchID", booking.MatchID, "court", court.ID, "time", booking.Time())
		result.Outcome, result.Reason = OutcomeConflict, err.Error()
	case err != nil:
		result.Outcome, result.Reason = OutcomeFailed, err.Error()
	case created:
		result.Outcome, result.MatchID = OutcomeCreated, match.ID
	default:
		result.Outcome, result.MatchID = OutcomeExisting, match.ID
	}
	return result
}

func (im *Importer) record(report *ImportReport, result ImportResult) {
	switch result.Outcome {
	case OutcomeCreated:
		report.Created++
	case OutcomeExisting:
		report.Existing++
	case OutcomeConflict:
		report.Conflict++
	case OutcomeSkipped:
		report.Skipped++
	case OutcomeFailed:
		report.Failed++
	}
	im.metrics.IncExternalBooking(result.Outcome)
	report.Results = append(report.Results, result)
}
