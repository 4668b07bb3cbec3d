package matchmaking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/database"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements Queries on top of a connection or a transaction.
type queries struct {
	conn dbtx
}

type sqlRepository struct {
	*queries
	store
}

// NewStore creates a Repository backed by the matches and
// time_slot_requests tables.
func NewStore(db *sql.DB) Repository {
	return &sqlRepository{
		queries: &queries{conn: db},
		store:   store{db: db},
	}
}

// Transact runs fn in one transaction. Write transactions are serialized so
// SQLite never reports a busy database to a caller.
func (r *sqlRepository) Transact(ctx context.Context, fn func(q Queries) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{conn: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const matchColumns = `id, court_id, date, time, capacity, status, organizer_id, booked_by_id, source, external_id, created_at, updated_at`

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var status, source string
	var organizerID, bookedByID, externalID sql.NullString
	var createdAt, updatedAt int64
	err := scanner.Scan(&m.ID, &m.CourtID, &m.Date, &m.Time, &m.Capacity, &status,
		&organizerID, &bookedByID, &source, &externalID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.Status = MatchStatus(status)
	m.Source = Source(source)
	m.OrganizerID = organizerID.String
	m.BookedByID = bookedByID.String
	m.ExternalID = externalID.String
	m.CreatedAt = time.Unix(createdAt, 0).UTC()
	m.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	m.PlayerIDs = []string{}
	m.InvitedPlayerIDs = []string{}
	return &m, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (q *queries) getOneMatch(ctx context.Context, notFound error, where string, args ...any) (*Match, error) {
	row := q.conn.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE `+where, args...)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if err := q.loadRoster(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// listMatches collects the rows before loading rosters: with a single
// SQLite connection a second query cannot run while rows are open.
func (q *queries) listMatches(ctx context.Context, query string, args ...any) ([]Match, error) {
	rows, err := q.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close match rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match rows: %w", err)
	}

	for i := range matches {
		if err := q.loadRoster(ctx, &matches[i]); err != nil {
			return nil, err
		}
	}
	if matches == nil {
		matches = []Match{}
	}
	return matches, nil
}

func (q *queries) loadRoster(ctx context.Context, m *Match) error {
	players, err := q.column(ctx, `SELECT player_id FROM match_players WHERE match_id = ? ORDER BY position`, m.ID)
	if err != nil {
		return fmt.Errorf("failed to load players of match %s: %w", m.ID, err)
	}
	invited, err := q.column(ctx, `SELECT player_id FROM match_invitations WHERE match_id = ? ORDER BY rowid`, m.ID)
	if err != nil {
		return fmt.Errorf("failed to load invitations of match %s: %w", m.ID, err)
	}
	m.PlayerIDs = players
	m.InvitedPlayerIDs = invited
	return nil
}

func (q *queries) column(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := q.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (q *queries) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	return q.getOneMatch(ctx, apperr.NotFound("match %s not found", matchID), `id = ?`, matchID)
}

func (q *queries) FindActiveMatchAt(ctx context.Context, courtID, date, time string) (*Match, error) {
	return q.getOneMatch(ctx, apperr.NotFound("no match on court %s at %s %s", courtID, date, time),
		`court_id = ? AND date = ? AND time = ? AND status != ?`, courtID, date, time, StatusCancelled)
}

func (q *queries) FindMatchByExternalID(ctx context.Context, externalID string) (*Match, error) {
	return q.getOneMatch(ctx, apperr.NotFound("no match with external id %s", externalID), `external_id = ?`, externalID)
}

func (q *queries) InsertMatch(ctx context.Context, m *Match) error {
	_, err := q.conn.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CourtID, m.Date, m.Time, m.Capacity, string(m.Status),
		nullable(m.OrganizerID), nullable(m.BookedByID), string(m.Source), nullable(m.ExternalID),
		m.CreatedAt.Unix(), m.UpdatedAt.Unix(),
	)
	if database.IsUniqueViolation(err) {
		if strings.Contains(err.Error(), "external_id") {
			return apperr.InvalidState("external booking %s is already stored", m.ExternalID)
		}
		return apperr.SlotOccupied("court %s is already taken at %s %s", m.CourtID, m.Date, m.Time)
	}
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return q.writeRoster(ctx, m)
}

func (q *queries) UpdateMatch(ctx context.Context, m *Match) error {
	res, err := q.conn.ExecContext(ctx, `UPDATE matches SET status = ?, booked_by_id = ?, updated_at = ? WHERE id = ?`,
		string(m.Status), nullable(m.BookedByID), m.UpdatedAt.Unix(), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("match %s not found", m.ID)
	}
	if _, err := q.conn.ExecContext(ctx, `DELETE FROM match_players WHERE match_id = ?`, m.ID); err != nil {
		return fmt.Errorf("failed to clear match players: %w", err)
	}
	if _, err := q.conn.ExecContext(ctx, `DELETE FROM match_invitations WHERE match_id = ?`, m.ID); err != nil {
		return fmt.Errorf("failed to clear match invitations: %w", err)
	}
	return q.writeRoster(ctx, m)
}

func (q *queries) writeRoster(ctx context.Context, m *Match) error {
	for i, playerID := range m.PlayerIDs {
		if _, err := q.conn.ExecContext(ctx, `INSERT INTO match_players (match_id, player_id, position) VALUES (?, ?, ?)`,
			m.ID, playerID, i); err != nil {
			return fmt.Errorf("failed to insert player %s into match %s: %w", playerID, m.ID, err)
		}
	}
	for _, playerID := range m.InvitedPlayerIDs {
		if _, err := q.conn.ExecContext(ctx, `INSERT INTO match_invitations (match_id, player_id, invited_at) VALUES (?, ?, ?)`,
			m.ID, playerID, m.UpdatedAt.Unix()); err != nil {
			return fmt.Errorf("failed to invite player %s to match %s: %w", playerID, m.ID, err)
		}
	}
	return nil
}

func (q *queries) ListMatchesByDate(ctx context.Context, date string) ([]Match, error) {
	return q.listMatches(ctx, `SELECT `+matchColumns+` FROM matches WHERE date = ? AND status != ? ORDER BY time, court_id`,
		date, StatusCancelled)
}

func (q *queries) ListMatchesForPlayer(ctx context.Context, playerID, fromDate string) ([]Match, error) {
	return q.listMatches(ctx, `
		SELECT `+matchColumns+` FROM matches m
		WHERE m.status != ? AND m.date >= ?
		  AND (m.organizer_id = ? OR m.booked_by_id = ?
		       OR EXISTS (SELECT 1 FROM match_players mp WHERE mp.match_id = m.id AND mp.player_id = ?))
		ORDER BY m.date, m.time, m.court_id`,
		StatusCancelled, fromDate, playerID, playerID, playerID)
}

func (q *queries) ListInvitationsForPlayer(ctx context.Context, playerID string) ([]Match, error) {
	return q.listMatches(ctx, `
		SELECT `+matchColumns+` FROM matches m
		WHERE m.status = ?
		  AND EXISTS (SELECT 1 FROM match_invitations mi WHERE mi.match_id = m.id AND mi.player_id = ?)
		ORDER BY m.date, m.time, m.court_id`,
		StatusOrganizing, playerID)
}

func (q *queries) PlayerBusyAt(ctx context.Context, playerID, date, time, excludeMatchID string) (bool, error) {
	var busy bool
	err := q.conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM matches m
			WHERE m.date = ? AND m.time = ? AND m.status != ? AND m.id != ?
			  AND (m.booked_by_id = ?
			       OR EXISTS (SELECT 1 FROM match_players mp WHERE mp.match_id = m.id AND mp.player_id = ?))
		)`,
		date, time, StatusCancelled, excludeMatchID, playerID, playerID).Scan(&busy)
	if err != nil {
		return false, fmt.Errorf("failed to check player schedule: %w", err)
	}
	return busy, nil
}

const requestColumns = `id, player_id, date, time, created_at`

func scanRequest(scanner interface{ Scan(...any) error }) (*TimeSlotRequest, error) {
	var r TimeSlotRequest
	var createdAt int64
	if err := scanner.Scan(&r.ID, &r.PlayerID, &r.Date, &r.Time, &createdAt); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &r, nil
}

func (q *queries) FindRequest(ctx context.Context, playerID, date, time string) (*TimeSlotRequest, error) {
	row := q.conn.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM time_slot_requests WHERE player_id = ? AND date = ? AND time = ?`,
		playerID, date, time)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("no request from %s for %s %s", playerID, date, time)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time slot request: %w", err)
	}
	return r, nil
}

func (q *queries) InsertRequest(ctx context.Context, r *TimeSlotRequest) error {
	_, err := q.conn.ExecContext(ctx, `INSERT INTO time_slot_requests (`+requestColumns+`) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.PlayerID, r.Date, r.Time, r.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert time slot request: %w", err)
	}
	return nil
}

func (q *queries) DeleteRequestsForSlot(ctx context.Context, date, time string) (int64, error) {
	res, err := q.conn.ExecContext(ctx, `DELETE FROM time_slot_requests WHERE date = ? AND time = ?`, date, time)
	if err != nil {
		return 0, fmt.Errorf("failed to clear time slot requests: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared requests: %w", err)
	}
	return n, nil
}

func (q *queries) ListRequestsForDate(ctx context.Context, date string) ([]TimeSlotRequest, error) {
	rows, err := q.conn.QueryContext(ctx, `SELECT `+requestColumns+` FROM time_slot_requests WHERE date = ? ORDER BY time, created_at, rowid`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query time slot requests: %w", err)
	}
	defer rows.Close()

	requests := []TimeSlotRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time slot request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}
