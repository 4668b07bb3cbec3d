package club

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ismlunati/padelMeet/internal/apperr"
)

// MockStore is an in-memory ClubStore for tests. It is safe for concurrent use.
// Players, Courts and Hours are the backing data; the Func fields override
// individual methods.
type MockStore struct {
	mu sync.Mutex

	Players map[string]PlayerInfo
	Courts  map[string]Court
	Hours   OpeningHours

	GetPlayerFunc          func(ctx context.Context, playerID string) (*PlayerInfo, error)
	GetCourtFunc           func(ctx context.Context, courtID string) (*Court, error)
	UpdateOpeningHoursFunc func(ctx context.Context, hours OpeningHours) (OpeningHours, error)

	// Call records
	GetCourtCalls           []string
	UpdateOpeningHoursCalls []OpeningHours
	SetRoleCalls            []struct {
		PlayerID string
		Role     Role
	}
}

// NewMock creates a mock with the default opening hours on every day.
func NewMock() *MockStore {
	hours := OpeningHours{}
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours[day] = slices.Clone(DefaultSlotTimes)
	}
	return &MockStore{
		Players: map[string]PlayerInfo{},
		Courts:  map[string]Court{},
		Hours:   hours,
	}
}

func (m *MockStore) GetPlayer(ctx context.Context, playerID string) (*PlayerInfo, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, playerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Players[playerID]
	if !ok {
		return nil, apperr.NotFound("player %s not found", playerID)
	}
	return &p, nil
}

func (m *MockStore) GetPlayerByEmail(ctx context.Context, email string) (*PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Players {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("no player with email %s", email)
}

func (m *MockStore) GetPlayers(ctx context.Context, playerIDs []string) ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := make([]PlayerInfo, 0, len(playerIDs))
	for _, id := range playerIDs {
		p, ok := m.Players[id]
		if !ok {
			return nil, apperr.NotFound("player %s not found", id)
		}
		players = append(players, p)
	}
	return players, nil
}

func (m *MockStore) ListPlayers(ctx context.Context) ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := make([]PlayerInfo, 0, len(m.Players))
	for _, p := range m.Players {
		players = append(players, p)
	}
	slices.SortFunc(players, func(a, b PlayerInfo) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return players, nil
}

func (m *MockStore) UpsertPlayer(ctx context.Context, player PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if player.Role == "" {
		player.Role = RolePlayer
	}
	m.Players[player.ID] = player
	return nil
}

func (m *MockStore) SetRole(ctx context.Context, playerID string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetRoleCalls = append(m.SetRoleCalls, struct {
		PlayerID string
		Role     Role
	}{playerID, role})
	p, ok := m.Players[playerID]
	if !ok {
		return apperr.NotFound("player %s not found", playerID)
	}
	p.Role = role
	m.Players[playerID] = p
	return nil
}

func (m *MockStore) GetCourt(ctx context.Context, courtID string) (*Court, error) {
	m.mu.Lock()
	m.GetCourtCalls = append(m.GetCourtCalls, courtID)
	m.mu.Unlock()
	if m.GetCourtFunc != nil {
		return m.GetCourtFunc(ctx, courtID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Courts[courtID]
	if !ok {
		return nil, apperr.NotFound("court %s not found", courtID)
	}
	return &c, nil
}

func (m *MockStore) ListCourts(ctx context.Context) ([]Court, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	courts := make([]Court, 0, len(m.Courts))
	for _, c := range m.Courts {
		courts = append(courts, c)
	}
	slices.SortFunc(courts, func(a, b Court) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return courts, nil
}

func (m *MockStore) UpsertCourt(ctx context.Context, court Court) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Courts[court.ID] = court
	return nil
}

func (m *MockStore) FindCourtByExternalName(ctx context.Context, name string) (*Court, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Courts {
		if c.ExternalName == name || (c.ExternalName == "" && c.Name == name) {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("no court mapped to %q", name)
}

func (m *MockStore) GetOpeningHours(ctx context.Context) (OpeningHours, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(OpeningHours, len(m.Hours))
	for day := range m.Hours {
		out[day] = m.Hours.Slots(day)
	}
	return out, nil
}

func (m *MockStore) UpdateOpeningHours(ctx context.Context, hours OpeningHours) (OpeningHours, error) {
	m.mu.Lock()
	m.UpdateOpeningHoursCalls = append(m.UpdateOpeningHoursCalls, hours)
	m.mu.Unlock()
	if m.UpdateOpeningHoursFunc != nil {
		return m.UpdateOpeningHoursFunc(ctx, hours)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hours = hours
	return hours, nil
}

func (m *MockStore) IsOpen(ctx context.Context, date time.Time, slot string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Hours.Contains(date.Weekday(), slot), nil
}
