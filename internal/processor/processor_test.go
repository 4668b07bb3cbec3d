package processor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/notifier"
	"github.com/ismlunati/padelMeet/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounters struct {
	mu     sync.Mutex
	values map[string]int
}

func (c *memCounters) Increment(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key]++
}

func (c *memCounters) GetAll() (map[string]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out, nil
}

type fixture struct {
	club     *club.MockStore
	notif    *notifier.Mock
	metrics  *metrics.Mock
	pubsub   *pubsub.MockPubSubClient
	counters *memCounters
	p        *Processor
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		club:     club.NewMock(),
		notif:    notifier.NewMock(),
		metrics:  metrics.NewMock(),
		pubsub:   pubsub.NewMock(),
		counters: &memCounters{values: map[string]int{}},
	}
	f.club.Courts["1"] = club.Court{ID: "1", Name: "Pista Central"}
	for id, name := range map[string]string{"p1": "Ana", "p2": "Bea", "p3": "Carla", "p4": "Dani"} {
		f.club.Players[id] = club.PlayerInfo{ID: id, Name: name}
	}
	opts = append([]Option{WithCounters(f.counters), WithTopic("events")}, opts...)
	f.p = New(f.club, f.notif, f.metrics, f.pubsub, opts...)
	return f
}

func organizingMatch() *matchmaking.Match {
	return &matchmaking.Match{
		ID: "m1", CourtID: "1", Date: "2025-06-10", Time: "18:00", Capacity: 4,
		Status: matchmaking.StatusOrganizing, PlayerIDs: []string{"p1"},
		InvitedPlayerIDs: []string{"p2", "p3"}, OrganizerID: "p1",
	}
}

func TestHandle(t *testing.T) {
	t.Run("created match is published, counted and announced with names", func(t *testing.T) {
		f := setup(t)
		f.p.handle(context.Background(), matchmaking.Event{Type: matchmaking.EventMatchCreated, Match: organizingMatch(), ActorID: "p1"})

		assert.Equal(t, 1, f.metrics.LifecycleEvents("match-created"))
		assert.Equal(t, 1, f.metrics.EventsPublished())
		all, _ := f.counters.GetAll()
		assert.Equal(t, 1, all["events.match-created"])

		calls := f.pubsub.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "events", calls[0].Topic)
		var decoded matchmaking.Event
		require.NoError(t, pubsub.Decode(calls[0].Payload, &decoded))
		assert.Equal(t, matchmaking.EventMatchCreated, decoded.Type)
		require.NotNil(t, decoded.Match)
		assert.Equal(t, "m1", decoded.Match.ID)

		require.Len(t, f.notif.SendMatchOrganizingCalls, 1)
		a := f.notif.SendMatchOrganizingCalls[0]
		assert.Equal(t, "Pista Central", a.Court.Name)
		assert.Equal(t, "Ana", a.Organizer)
		assert.Equal(t, []string{"Ana"}, a.PlayerNames)
	})

	t.Run("invitation events are not announced", func(t *testing.T) {
		f := setup(t)
		for _, typ := range []matchmaking.EventType{matchmaking.EventPlayersInvited, matchmaking.EventInvitationAccepted, matchmaking.EventInvitationDeclined} {
			f.p.handle(context.Background(), matchmaking.Event{Type: typ, Match: organizingMatch()})
		}
		f.p.handle(context.Background(), matchmaking.Event{
			Type:    matchmaking.EventTimeSlotRequested,
			Request: &matchmaking.TimeSlotRequest{ID: "r1", PlayerID: "p2", Date: "2025-06-10", Time: "18:00"},
		})
		assert.Equal(t, 0, f.notif.Calls())
		assert.Equal(t, 4, f.metrics.EventsPublished())
		assert.Equal(t, 1, f.metrics.LifecycleEvents("time-slot-requested"))
	})

	t.Run("confirmed, booked and cancelled are announced", func(t *testing.T) {
		f := setup(t)
		confirmed := organizingMatch()
		confirmed.Status = matchmaking.StatusConfirmed
		confirmed.PlayerIDs = []string{"p1", "p2", "p3", "p4"}
		f.p.handle(context.Background(), matchmaking.Event{Type: matchmaking.EventMatchConfirmed, Match: confirmed})

		booked := &matchmaking.Match{ID: "m2", CourtID: "1", Date: "2025-06-10", Time: "19:30", Status: matchmaking.StatusBooked, BookedByID: "p2"}
		f.p.handle(context.Background(), matchmaking.Event{Type: matchmaking.EventCourtBooked, Match: booked})

		cancelled := *booked
		cancelled.Status = matchmaking.StatusCancelled
		f.p.handle(context.Background(), matchmaking.Event{Type: matchmaking.EventMatchCancelled, Match: &cancelled, ActorID: "p2"})

		require.Len(t, f.notif.SendMatchConfirmedCalls, 1)
		assert.Equal(t, []string{"Ana", "Bea", "Carla", "Dani"}, f.notif.SendMatchConfirmedCalls[0].PlayerNames)
		require.Len(t, f.notif.SendCourtBookedCalls, 1)
		assert.Equal(t, "Bea", f.notif.SendCourtBookedCalls[0].BookedBy)
		require.Len(t, f.notif.SendMatchCancelledCalls, 1)
		assert.Equal(t, "Bea", f.notif.SendMatchCancelledCalls[0].CancelledBy)
	})

	t.Run("unknown references fall back to ids", func(t *testing.T) {
		f := setup(t)
		m := organizingMatch()
		m.CourtID = "9"
		m.PlayerIDs = []string{"p1", "ghost"}
		f.p.handle(context.Background(), matchmaking.Event{Type: matchmaking.EventMatchCreated, Match: m})

		require.Len(t, f.notif.SendMatchOrganizingCalls, 1)
		a := f.notif.SendMatchOrganizingCalls[0]
		assert.Equal(t, "9", a.Court.Name)
		assert.Equal(t, []string{"Ana", "ghost"}, a.PlayerNames)
	})

	t.Run("publish failure is counted and does not stop the announcement", func(t *testing.T) {
		f := setup(t)
		f.pubsub.SendMessageFunc = func(topic string, data any) error { return errors.New("unavailable") }
		f.notif.SendCourtBookedFunc = func(a notifier.Announcement, dryRun bool) error { return errors.New("slack down") }

		booked := &matchmaking.Match{ID: "m2", CourtID: "1", Status: matchmaking.StatusBooked, Source: matchmaking.SourcePlaytomic}
		f.p.handle(context.Background(), matchmaking.Event{Type: matchmaking.EventCourtBooked, Match: booked})

		assert.Equal(t, 1, f.metrics.EventsPublishFailed())
		assert.Equal(t, 0, f.metrics.EventsPublished())
		assert.Len(t, f.notif.SendCourtBookedCalls, 1)
	})

	t.Run("nil notifier only publishes", func(t *testing.T) {
		f := setup(t)
		p := New(f.club, nil, f.metrics, f.pubsub)
		p.handle(context.Background(), matchmaking.Event{Type: matchmaking.EventMatchConfirmed, Match: organizingMatch()})
		assert.Equal(t, 1, f.metrics.EventsPublished())
	})
}

func TestPublishDeliversInBackground(t *testing.T) {
	f := setup(t)
	f.p.Start()

	for i := 0; i < 5; i++ {
		f.p.Publish(context.Background(), matchmaking.Event{Type: matchmaking.EventPlayersInvited, Match: organizingMatch()})
	}
	f.p.Stop()

	assert.Equal(t, 5, f.metrics.LifecycleEvents("players-invited"))
	assert.Len(t, f.pubsub.Calls(), 5)

	// Events after Stop are dropped without panicking.
	f.p.Publish(context.Background(), matchmaking.Event{Type: matchmaking.EventPlayersInvited})
	f.p.Stop()
	assert.Equal(t, 5, f.metrics.LifecycleEvents("players-invited"))
}

func TestPublishDropsWhenQueueIsFull(t *testing.T) {
	f := setup(t, WithBuffer(1))

	f.p.Publish(context.Background(), matchmaking.Event{Type: matchmaking.EventPlayersInvited})
	f.p.Publish(context.Background(), matchmaking.Event{Type: matchmaking.EventPlayersInvited})

	assert.Equal(t, 1, f.metrics.EventsPublishFailed())
	f.p.Start()
	f.p.Stop()
	assert.Equal(t, 1, f.metrics.LifecycleEvents("players-invited"))
}
