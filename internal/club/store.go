package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ismlunati/padelMeet/internal/apperr"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

const playerColumns = `id, name, email, password_hash, role, avatar_url, created_at`

// scanPlayer is a helper function to scan a single player row.
func scanPlayer(scanner interface{ Scan(...any) error }) (*PlayerInfo, error) {
	var p PlayerInfo
	var role string
	var createdAt int64
	if err := scanner.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &role, &p.AvatarURL, &createdAt); err != nil {
		return nil, err
	}
	p.Role = Role(role)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

func (s *store) GetPlayer(ctx context.Context, playerID string) (*PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, playerID)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("player %s not found", playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *store) GetPlayerByEmail(ctx context.Context, email string) (*PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("no player with email %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by email: %w", err)
	}
	return p, nil
}

func (s *store) GetPlayers(ctx context.Context, playerIDs []string) ([]PlayerInfo, error) {
	if len(playerIDs) == 0 {
		return []PlayerInfo{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(playerIDs)), ",")
	args := make([]any, len(playerIDs))
	for i, id := range playerIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]PlayerInfo, len(playerIDs))
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		byID[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	players := make([]PlayerInfo, 0, len(playerIDs))
	for _, id := range playerIDs {
		p, ok := byID[id]
		if !ok {
			return nil, apperr.NotFound("player %s not found", id)
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *store) ListPlayers(ctx context.Context) ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := []PlayerInfo{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// UpsertPlayer inserts a player or updates an existing one. An empty password
// hash keeps the stored one.
func (s *store) UpsertPlayer(ctx context.Context, player PlayerInfo) error {
	if player.ID == "" || player.Email == "" {
		return apperr.Validation("player id and email are required")
	}
	if player.Role == "" {
		player.Role = RolePlayer
	}
	if !player.Role.Valid() {
		return apperr.Validation("invalid role %q", player.Role)
	}
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, name, email, password_hash, role, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			password_hash = CASE WHEN excluded.password_hash = '' THEN players.password_hash ELSE excluded.password_hash END,
			role = excluded.role,
			avatar_url = excluded.avatar_url;
	`, player.ID, player.Name, strings.ToLower(strings.TrimSpace(player.Email)), player.PasswordHash, string(player.Role), player.AvatarURL, player.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", player.ID, err)
	}
	log.Debug("Upserted player", "id", player.ID, "role", player.Role)
	return nil
}

func (s *store) SetRole(ctx context.Context, playerID string, role Role) error {
	if !role.Valid() {
		return apperr.Validation("invalid role %q", role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE players SET role = ? WHERE id = ?`, string(role), playerID)
	if err != nil {
		return fmt.Errorf("failed to update player role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("player %s not found", playerID)
	}
	log.Info("Updated player role", "id", playerID, "role", role)
	return nil
}

const courtColumns = `id, name, location, surface, indoor, price_per_hour, image_url, external_name`

func scanCourt(scanner interface{ Scan(...any) error }) (*Court, error) {
	var c Court
	var external sql.NullString
	if err := scanner.Scan(&c.ID, &c.Name, &c.Location, &c.Surface, &c.Indoor, &c.PricePerHour, &c.ImageURL, &external); err != nil {
		return nil, err
	}
	c.ExternalName = external.String
	return &c, nil
}

func (s *store) GetCourt(ctx context.Context, courtID string) (*Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := scanCourt(s.db.QueryRowContext(ctx, `SELECT `+courtColumns+` FROM courts WHERE id = ?`, courtID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("court %s not found", courtID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get court: %w", err)
	}
	return c, nil
}

func (s *store) FindCourtByExternalName(ctx context.Context, name string) (*Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := scanCourt(s.db.QueryRowContext(ctx,
		`SELECT `+courtColumns+` FROM courts WHERE external_name = ? COLLATE NOCASE OR (external_name IS NULL AND name = ? COLLATE NOCASE) LIMIT 1`,
		name, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("no court mapped to %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find court: %w", err)
	}
	return c, nil
}

func (s *store) ListCourts(ctx context.Context) ([]Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+courtColumns+` FROM courts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts: %w", err)
	}
	defer rows.Close()

	courts := []Court{}
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan court row: %w", err)
		}
		courts = append(courts, *c)
	}
	return courts, rows.Err()
}

func (s *store) UpsertCourt(ctx context.Context, court Court) error {
	if court.ID == "" || court.Name == "" {
		return apperr.Validation("court id and name are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var external any
	if court.ExternalName != "" {
		external = court.ExternalName
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courts (id, name, location, surface, indoor, price_per_hour, image_url, external_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			surface = excluded.surface,
			indoor = excluded.indoor,
			price_per_hour = excluded.price_per_hour,
			image_url = excluded.image_url,
			external_name = excluded.external_name;
	`, court.ID, court.Name, court.Location, court.Surface, court.Indoor, court.PricePerHour, court.ImageURL, external)
	if err != nil {
		return fmt.Errorf("failed to upsert court %s: %w", court.ID, err)
	}
	return nil
}

func (s *store) GetOpeningHours(ctx context.Context) (OpeningHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openingHoursLocked(ctx)
}

func (s *store) openingHoursLocked(ctx context.Context) (OpeningHours, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT day, time FROM opening_hours ORDER BY day, time`)
	if err != nil {
		return nil, fmt.Errorf("failed to query opening hours: %w", err)
	}
	defer rows.Close()

	hours := OpeningHours{}
	for rows.Next() {
		var day int
		var slot string
		if err := rows.Scan(&day, &slot); err != nil {
			return nil, fmt.Errorf("failed to scan opening hours row: %w", err)
		}
		hours[time.Weekday(day)] = append(hours[time.Weekday(day)], slot)
	}
	return hours, rows.Err()
}

func (s *store) UpdateOpeningHours(ctx context.Context, hours OpeningHours) (OpeningHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM opening_hours`); err != nil {
		return nil, fmt.Errorf("failed to clear opening hours: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO opening_hours (day, time) VALUES (?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare opening hours insert: %w", err)
	}
	defer stmt.Close()

	for day, slots := range hours {
		if day < time.Sunday || day > time.Saturday {
			return nil, apperr.Validation("invalid day of week %d", day)
		}
		for _, slot := range slots {
			if err := ValidateTime(slot); err != nil {
				return nil, err
			}
			if _, err := stmt.ExecContext(ctx, int(day), slot); err != nil {
				return nil, fmt.Errorf("failed to insert opening hour %d %s: %w", day, slot, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit opening hours: %w", err)
	}
	log.Info("Updated opening hours", "days", len(hours))

	updated := make(OpeningHours, len(hours))
	for day := range hours {
		updated[day] = hours.Slots(day)
	}
	return updated, nil
}

func (s *store) IsOpen(ctx context.Context, date time.Time, slot string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM opening_hours WHERE day = ? AND time = ?`, int(date.Weekday()), slot).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check opening hours: %w", err)
	}
	return true, nil
}
