package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/lock"
)

type engine struct {
	repo   Repository
	club   club.ClubStore
	locker lock.Locker
	events EventSink
	now    func() time.Time
	newID  func() string
}

// Option configures the engine.
type Option func(*engine)

// WithLocker replaces the in-process locker, e.g. with a Redis one shared by
// several instances.
func WithLocker(l lock.Locker) Option {
	return func(e *engine) { e.locker = l }
}

func WithEventSink(sink EventSink) Option {
	return func(e *engine) { e.events = sink }
}

func WithClock(now func() time.Time) Option {
	return func(e *engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *engine) { e.newID = newID }
}

type discardSink struct{}

func (discardSink) Publish(context.Context, Event) {}

// NewService creates the engine. Reference data (courts, players, opening
// hours) is read from clubStore; matches and requests live in repo.
func NewService(repo Repository, clubStore club.ClubStore, opts ...Option) Service {
	e := &engine{
		repo:   repo,
		club:   clubStore,
		locker: lock.NewLocal(),
		events: discardSink{},
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// checkSlot validates the date and time formats and, when requireOpen is set,
// that the time is a bookable slot on the date's weekday.
func (e *engine) checkSlot(ctx context.Context, date, slot string, requireOpen bool) error {
	day, err := club.ParseDate(date)
	if err != nil {
		return err
	}
	if err := club.ValidateTime(slot); err != nil {
		return err
	}
	if !requireOpen {
		return nil
	}
	open, err := e.club.IsOpen(ctx, day, slot)
	if err != nil {
		return err
	}
	if !open {
		return apperr.Validation("%s is not a bookable time on %s", slot, day.Weekday())
	}
	return nil
}

// withLocks runs fn in one transaction while holding keys.
func (e *engine) withLocks(ctx context.Context, keys []string, fn func(q Queries) error) error {
	unlock, err := e.locker.Lock(ctx, keys...)
	if err != nil {
		return fmt.Errorf("failed to acquire locks: %w", err)
	}
	defer unlock()
	return e.repo.Transact(ctx, fn)
}

func (e *engine) emit(ctx context.Context, event Event) {
	event.At = e.now()
	e.events.Publish(ctx, event)
}

// rejected logs a refused command and hands the error back unchanged.
func rejected(op string, err error, keyvals ...any) error {
	if kind := apperr.KindOf(err); kind != apperr.KindInternal {
		log.Warn("Rejected "+op, append(keyvals, "kind", kind, "reason", err)...)
	} else {
		log.Error("Failed "+op, append(keyvals, "error", err)...)
	}
	return err
}

func (e *engine) CreateMatchAndInvite(ctx context.Context, p CreateMatchParams) (*Match, error) {
	const op = "create match"
	if p.OrganizerID == "" {
		return nil, rejected(op, apperr.Validation("organizer is required"))
	}
	if err := e.checkSlot(ctx, p.Date, p.Time, true); err != nil {
		return nil, rejected(op, err, "date", p.Date, "time", p.Time)
	}
	if _, err := e.club.GetCourt(ctx, p.CourtID); err != nil {
		return nil, rejected(op, err, "court", p.CourtID)
	}
	if _, err := e.club.GetPlayer(ctx, p.OrganizerID); err != nil {
		return nil, rejected(op, err, "organizer", p.OrganizerID)
	}
	invited := uniqueExcept(p.InvitedPlayerIDs, []string{p.OrganizerID})
	if _, err := e.club.GetPlayers(ctx, invited); err != nil {
		return nil, rejected(op, err)
	}

	now := e.now()
	match := &Match{
		ID:               e.newID(),
		CourtID:          p.CourtID,
		Date:             p.Date,
		Time:             p.Time,
		Capacity:         DefaultCapacity,
		Status:           StatusOrganizing,
		PlayerIDs:        []string{p.OrganizerID},
		InvitedPlayerIDs: invited,
		OrganizerID:      p.OrganizerID,
		Source:           SourceClub,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	var cleared int64
	keys := []string{lock.SlotKey(p.CourtID, p.Date, p.Time), lock.PlayerSlotKey(p.OrganizerID, p.Date, p.Time)}
	err := e.withLocks(ctx, keys, func(q Queries) error {
		if err := ensureSlotFree(ctx, q, p.CourtID, p.Date, p.Time); err != nil {
			return err
		}
		if err := ensureNotBusy(ctx, q, p.OrganizerID, p.Date, p.Time, ""); err != nil {
			return err
		}
		if err := q.InsertMatch(ctx, match); err != nil {
			return err
		}
		var err error
		cleared, err = q.DeleteRequestsForSlot(ctx, p.Date, p.Time)
		return err
	})
	if err != nil {
		return nil, rejected(op, err, "court", p.CourtID, "date", p.Date, "time", p.Time)
	}

	log.Info("Created match", "id", match.ID, "court", match.CourtID, "date", match.Date, "time", match.Time,
		"organizer", match.OrganizerID, "invited", len(match.InvitedPlayerIDs), "cleared_requests", cleared)
	e.emit(ctx, Event{Type: EventMatchCreated, Match: match, ActorID: p.OrganizerID, PlayerIDs: match.InvitedPlayerIDs})
	return match, nil
}

func (e *engine) InvitePlayersToMatch(ctx context.Context, matchID string, playerIDs []string) (*Match, error) {
	const op = "invite players"
	candidates := uniqueExcept(playerIDs, nil)
	if _, err := e.club.GetPlayers(ctx, candidates); err != nil {
		return nil, rejected(op, err, "match", matchID)
	}

	var match *Match
	var added []string
	err := e.withLocks(ctx, []string{lock.MatchKey(matchID)}, func(q Queries) error {
		var err error
		match, err = q.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if match.Status != StatusOrganizing {
			return apperr.InvalidState("match %s is %s, invitations are closed", matchID, match.Status)
		}
		for _, id := range candidates {
			if match.HasPlayer(id) || match.IsInvited(id) {
				continue
			}
			match.InvitedPlayerIDs = append(match.InvitedPlayerIDs, id)
			added = append(added, id)
		}
		if len(added) == 0 {
			return nil
		}
		match.UpdatedAt = e.now()
		return q.UpdateMatch(ctx, match)
	})
	if err != nil {
		return nil, rejected(op, err, "match", matchID)
	}

	if len(added) > 0 {
		log.Info("Invited players", "match", matchID, "players", added)
		e.emit(ctx, Event{Type: EventPlayersInvited, Match: match, PlayerIDs: added})
	}
	return match, nil
}

func (e *engine) RespondToInvitation(ctx context.Context, matchID, playerID string, response Response) (*Match, error) {
	const op = "invitation response"
	if !response.Valid() {
		return nil, rejected(op, apperr.Validation("response must be ACCEPT or DECLINE, got %q", response))
	}
	// Date and time never change, so they can be read before locking to
	// build the player's slot key.
	current, err := e.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, rejected(op, err, "match", matchID)
	}

	var match *Match
	var changed bool
	keys := []string{lock.MatchKey(matchID), lock.PlayerSlotKey(playerID, current.Date, current.Time)}
	err = e.withLocks(ctx, keys, func(q Queries) error {
		var err error
		match, err = q.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if response == ResponseDecline {
			changed, err = decline(match, playerID)
		} else {
			changed, err = accept(ctx, q, match, playerID)
		}
		if err != nil || !changed {
			return err
		}
		match.UpdatedAt = e.now()
		return q.UpdateMatch(ctx, match)
	})
	if err != nil {
		return nil, rejected(op, err, "match", matchID, "player", playerID, "response", response)
	}
	if !changed {
		return match, nil
	}

	if response == ResponseDecline {
		log.Info("Invitation declined", "match", matchID, "player", playerID)
		e.emit(ctx, Event{Type: EventInvitationDeclined, Match: match, ActorID: playerID})
		return match, nil
	}
	log.Info("Invitation accepted", "match", matchID, "player", playerID, "players", len(match.PlayerIDs), "capacity", match.Capacity)
	e.emit(ctx, Event{Type: EventInvitationAccepted, Match: match, ActorID: playerID})
	if match.Status == StatusConfirmed {
		log.Info("Match confirmed", "match", matchID, "players", match.PlayerIDs)
		e.emit(ctx, Event{Type: EventMatchConfirmed, Match: match, ActorID: playerID})
	}
	return match, nil
}

func decline(match *Match, playerID string) (bool, error) {
	if !match.IsInvited(playerID) {
		return false, apperr.NotInvited("player %s has no pending invitation to match %s", playerID, match.ID)
	}
	match.InvitedPlayerIDs = slices.DeleteFunc(match.InvitedPlayerIDs, func(id string) bool { return id == playerID })
	return true, nil
}

func accept(ctx context.Context, q Queries, match *Match, playerID string) (bool, error) {
	if match.HasPlayer(playerID) {
		return false, nil
	}
	switch match.Status {
	case StatusOrganizing:
	case StatusConfirmed:
		return false, apperr.MatchFull("match %s is already full", match.ID)
	default:
		return false, apperr.InvalidState("match %s is %s and takes no players", match.ID, match.Status)
	}
	if match.IsFull() {
		return false, apperr.MatchFull("match %s is already full", match.ID)
	}
	if !match.IsInvited(playerID) {
		return false, apperr.NotInvited("player %s was not invited to match %s", playerID, match.ID)
	}
	if err := ensureNotBusy(ctx, q, playerID, match.Date, match.Time, match.ID); err != nil {
		return false, err
	}

	match.PlayerIDs = append(match.PlayerIDs, playerID)
	match.InvitedPlayerIDs = slices.DeleteFunc(match.InvitedPlayerIDs, func(id string) bool { return id == playerID })
	if match.IsFull() {
		match.Status = StatusConfirmed
		match.InvitedPlayerIDs = []string{}
	}
	return true, nil
}

func (e *engine) BookCourt(ctx context.Context, courtID, date, slot, playerID string) (*Match, error) {
	const op = "book court"
	if err := e.checkSlot(ctx, date, slot, true); err != nil {
		return nil, rejected(op, err, "date", date, "time", slot)
	}
	if _, err := e.club.GetCourt(ctx, courtID); err != nil {
		return nil, rejected(op, err, "court", courtID)
	}
	if _, err := e.club.GetPlayer(ctx, playerID); err != nil {
		return nil, rejected(op, err, "player", playerID)
	}

	now := e.now()
	match := &Match{
		ID:               e.newID(),
		CourtID:          courtID,
		Date:             date,
		Time:             slot,
		Capacity:         DefaultCapacity,
		Status:           StatusBooked,
		PlayerIDs:        []string{},
		InvitedPlayerIDs: []string{},
		BookedByID:       playerID,
		Source:           SourceClub,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	keys := []string{lock.SlotKey(courtID, date, slot), lock.PlayerSlotKey(playerID, date, slot)}
	err := e.withLocks(ctx, keys, func(q Queries) error {
		if err := ensureSlotFree(ctx, q, courtID, date, slot); err != nil {
			return err
		}
		if err := ensureNotBusy(ctx, q, playerID, date, slot, ""); err != nil {
			return err
		}
		return q.InsertMatch(ctx, match)
	})
	if err != nil {
		return nil, rejected(op, err, "court", courtID, "date", date, "time", slot, "player", playerID)
	}

	log.Info("Booked court", "id", match.ID, "court", courtID, "date", date, "time", slot, "player", playerID)
	e.emit(ctx, Event{Type: EventCourtBooked, Match: match, ActorID: playerID})
	return match, nil
}

func (e *engine) CancelMatch(ctx context.Context, matchID string, actor Actor) (*Match, error) {
	const op = "cancel match"
	current, err := e.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, rejected(op, err, "match", matchID)
	}

	var match *Match
	keys := []string{lock.MatchKey(matchID), lock.SlotKey(current.CourtID, current.Date, current.Time)}
	err = e.withLocks(ctx, keys, func(q Queries) error {
		var err error
		match, err = q.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if match.Status == StatusCancelled {
			return apperr.InvalidState("match %s is already cancelled", matchID)
		}
		if !mayCancel(match, actor) {
			return apperr.Forbidden("player %s may not cancel match %s", actor.ID, matchID)
		}
		match.Status = StatusCancelled
		match.InvitedPlayerIDs = []string{}
		match.UpdatedAt = e.now()
		return q.UpdateMatch(ctx, match)
	})
	if err != nil {
		return nil, rejected(op, err, "match", matchID, "actor", actor.ID)
	}

	log.Info("Cancelled match", "id", matchID, "court", match.CourtID, "date", match.Date, "time", match.Time, "actor", actor.ID)
	e.emit(ctx, Event{Type: EventMatchCancelled, Match: match, ActorID: actor.ID})
	return match, nil
}

// mayCancel: admins always; otherwise the organizer of an organized match or
// the booker of a booked one.
func mayCancel(m *Match, actor Actor) bool {
	if actor.Admin {
		return true
	}
	if actor.ID == "" {
		return false
	}
	if m.Status == StatusBooked {
		return m.BookedByID == actor.ID
	}
	return m.OrganizerID == actor.ID
}

func (e *engine) MirrorExternalBooking(ctx context.Context, b ExternalBooking) (*Match, bool, error) {
	const op = "mirror external booking"
	if b.ExternalID == "" {
		return nil, false, rejected(op, apperr.Validation("external id is required"))
	}
	// Bookings made elsewhere are mirrored even outside the club's hours.
	if err := e.checkSlot(ctx, b.Date, b.Time, false); err != nil {
		return nil, false, rejected(op, err, "external_id", b.ExternalID)
	}
	if _, err := e.club.GetCourt(ctx, b.CourtID); err != nil {
		return nil, false, rejected(op, err, "court", b.CourtID)
	}

	now := e.now()
	match := &Match{
		ID:               e.newID(),
		CourtID:          b.CourtID,
		Date:             b.Date,
		Time:             b.Time,
		Capacity:         DefaultCapacity,
		Status:           StatusBooked,
		PlayerIDs:        []string{},
		InvitedPlayerIDs: []string{},
		Source:           SourcePlaytomic,
		ExternalID:       b.ExternalID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	created := true
	err := e.withLocks(ctx, []string{lock.SlotKey(b.CourtID, b.Date, b.Time)}, func(q Queries) error {
		existing, err := q.FindMatchByExternalID(ctx, b.ExternalID)
		if err == nil {
			match, created = existing, false
			return nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if err := ensureSlotFree(ctx, q, b.CourtID, b.Date, b.Time); err != nil {
			return err
		}
		return q.InsertMatch(ctx, match)
	})
	if err != nil {
		return nil, false, rejected(op, err, "external_id", b.ExternalID, "court", b.CourtID, "date", b.Date, "time", b.Time)
	}
	if !created {
		log.Debug("External booking already mirrored", "external_id", b.ExternalID, "match", match.ID)
		return match, false, nil
	}

	log.Info("Mirrored external booking", "id", match.ID, "external_id", b.ExternalID, "court", b.CourtID, "date", b.Date, "time", b.Time)
	e.emit(ctx, Event{Type: EventCourtBooked, Match: match})
	return match, true, nil
}

func (e *engine) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	return e.repo.GetMatch(ctx, matchID)
}

func (e *engine) ListMatchesForDate(ctx context.Context, date string) ([]Match, error) {
	if _, err := club.ParseDate(date); err != nil {
		return nil, err
	}
	return e.repo.ListMatchesByDate(ctx, date)
}

func (e *engine) ListMatchesForPlayer(ctx context.Context, playerID, fromDate string) ([]Match, error) {
	if fromDate != "" {
		if _, err := club.ParseDate(fromDate); err != nil {
			return nil, err
		}
	}
	return e.repo.ListMatchesForPlayer(ctx, playerID, fromDate)
}

func (e *engine) ListInvitationsForPlayer(ctx context.Context, playerID string) ([]Match, error) {
	return e.repo.ListInvitationsForPlayer(ctx, playerID)
}

func (e *engine) AddTimeSlotRequest(ctx context.Context, playerID, date, slot string) (*TimeSlotRequest, error) {
	const op = "time slot request"
	if err := e.checkSlot(ctx, date, slot, true); err != nil {
		return nil, rejected(op, err, "date", date, "time", slot)
	}
	if _, err := e.club.GetPlayer(ctx, playerID); err != nil {
		return nil, rejected(op, err, "player", playerID)
	}

	var request *TimeSlotRequest
	created := false
	err := e.withLocks(ctx, []string{lock.PlayerSlotKey(playerID, date, slot)}, func(q Queries) error {
		existing, err := q.FindRequest(ctx, playerID, date, slot)
		if err == nil {
			request = existing
			return nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		request = &TimeSlotRequest{
			ID:        e.newID(),
			PlayerID:  playerID,
			Date:      date,
			Time:      slot,
			CreatedAt: e.now(),
		}
		created = true
		return q.InsertRequest(ctx, request)
	})
	if err != nil {
		return nil, rejected(op, err, "player", playerID, "date", date, "time", slot)
	}

	if created {
		log.Info("Recorded time slot request", "id", request.ID, "player", playerID, "date", date, "time", slot)
		e.emit(ctx, Event{Type: EventTimeSlotRequested, Request: request, ActorID: playerID})
	}
	return request, nil
}

func (e *engine) ListRequestsForDate(ctx context.Context, date string) ([]TimeSlotRequest, error) {
	if _, err := club.ParseDate(date); err != nil {
		return nil, err
	}
	return e.repo.ListRequestsForDate(ctx, date)
}

func ensureSlotFree(ctx context.Context, q Queries, courtID, date, slot string) error {
	existing, err := q.FindActiveMatchAt(ctx, courtID, date, slot)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return apperr.SlotOccupied("court %s is already taken at %s %s by match %s", courtID, date, slot, existing.ID)
}

func ensureNotBusy(ctx context.Context, q Queries, playerID, date, slot, excludeMatchID string) error {
	busy, err := q.PlayerBusyAt(ctx, playerID, date, slot, excludeMatchID)
	if err != nil {
		return err
	}
	if busy {
		return apperr.PlayerBusy("player %s already plays at %s %s", playerID, date, slot)
	}
	return nil
}

// uniqueExcept drops empty ids, duplicates and anything in exclude while
// keeping the first-seen order.
func uniqueExcept(ids, exclude []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(exclude, id) || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
