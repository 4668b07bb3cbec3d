package processor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/notifier"
	"github.com/ismlunati/padelMeet/internal/pubsub"
)

const (
	defaultTopic  = "padel-match-events"
	defaultBuffer = 256
	eventTimeout  = 10 * time.Second
)

// WithTopic sets the Pub/Sub topic lifecycle events are published to.
func WithTopic(topic string) Option {
	return func(p *Processor) { p.topic = topic }
}

// WithCounters persists a lifetime counter per event type.
func WithCounters(counters metrics.MetricsStore) Option {
	return func(p *Processor) { p.counters = counters }
}

// WithDryRun logs Slack messages instead of posting them.
func WithDryRun(dryRun bool) Option {
	return func(p *Processor) { p.dryRun = dryRun }
}

// WithBuffer sets how many events may wait for the worker.
func WithBuffer(size int) Option {
	return func(p *Processor) { p.events = make(chan matchmaking.Event, size) }
}

// New creates a new Processor. notifier may be nil when Slack is not configured.
func New(clubStore club.ClubStore, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, opts ...Option) *Processor {
	p := &Processor{
		club:     clubStore,
		notifier: notifier,
		metrics:  metrics,
		pubsub:   pubsub,
		topic:    defaultTopic,
		events:   make(chan matchmaking.Event, defaultBuffer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ matchmaking.EventSink = (*Processor)(nil)

// Publish queues an event for delivery. It never blocks: when the queue is
// full the event is dropped and counted as a failed publish.
func (p *Processor) Publish(ctx context.Context, ev matchmaking.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		log.Warn("Processor stopped, dropping event", "type", ev.Type)
		return
	}
	select {
	case p.events <- ev:
	default:
		log.Warn("Event queue full, dropping event", "type", ev.Type)
		p.metrics.IncEventsPublishFailed()
	}
}

// Start launches the delivery worker.
func (p *Processor) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for ev := range p.events {
			ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
			p.handle(ctx, ev)
			cancel()
		}
		log.Info("Event processor drained")
	}()
	log.Info("Event processor started", "topic", p.topic)
}

// Stop refuses new events and waits until the queued ones are delivered.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.events)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Processor) handle(ctx context.Context, ev matchmaking.Event) {
	log.Debug("Processing lifecycle event", "type", ev.Type, "actor", ev.ActorID)
	p.metrics.IncLifecycleEvent(string(ev.Type))
	if p.counters != nil {
		p.counters.Increment("events." + string(ev.Type))
	}

	if p.pubsub != nil {
		if err := p.pubsub.SendMessage(ctx, p.topic, ev); err != nil {
			log.Error("Failed to publish lifecycle event", "error", err, "type", ev.Type)
			p.metrics.IncEventsPublishFailed()
		} else {
			p.metrics.IncEventsPublished()
		}
	}

	if p.notifier == nil || ev.Match == nil {
		return
	}
	var send func(notifier.Announcement, bool) error
	switch ev.Type {
	case matchmaking.EventMatchCreated:
		if ev.Match.Status == matchmaking.StatusOrganizing && !ev.Match.IsFull() {
			send = p.notifier.SendMatchOrganizing
		}
	case matchmaking.EventMatchConfirmed:
		send = p.notifier.SendMatchConfirmed
	case matchmaking.EventCourtBooked:
		send = p.notifier.SendCourtBooked
	case matchmaking.EventMatchCancelled:
		send = p.notifier.SendMatchCancelled
	}
	if send == nil {
		return
	}
	if err := send(p.announcement(ctx, ev), p.dryRun); err != nil {
		log.Error("Failed to announce match", "error", err, "type", ev.Type, "match", ev.Match.ID)
	}
}

// announcement resolves the ids of a match to display names. Lookup failures
// fall back to the raw ids.
func (p *Processor) announcement(ctx context.Context, ev matchmaking.Event) notifier.Announcement {
	m := ev.Match
	a := notifier.Announcement{
		Match:       m,
		Court:       club.Court{ID: m.CourtID, Name: m.CourtID},
		Organizer:   p.playerName(ctx, m.OrganizerID),
		BookedBy:    p.playerName(ctx, m.BookedByID),
		PlayerNames: p.playerNames(ctx, m.PlayerIDs),
	}
	if court, err := p.club.GetCourt(ctx, m.CourtID); err == nil {
		a.Court = *court
	} else {
		log.Warn("Failed to resolve court for announcement", "error", err, "court", m.CourtID)
	}
	if ev.Type == matchmaking.EventMatchCancelled {
		a.CancelledBy = p.playerName(ctx, ev.ActorID)
	}
	return a
}

func (p *Processor) playerName(ctx context.Context, playerID string) string {
	if playerID == "" {
		return ""
	}
	player, err := p.club.GetPlayer(ctx, playerID)
	if err != nil {
		log.Warn("Failed to resolve player name", "error", err, "player", playerID)
		return playerID
	}
	return player.Name
}

func (p *Processor) playerNames(ctx context.Context, playerIDs []string) []string {
	players, err := p.club.GetPlayers(ctx, playerIDs)
	if err != nil {
		names := make([]string, 0, len(playerIDs))
		for _, id := range playerIDs {
			names = append(names, p.playerName(ctx, id))
		}
		return names
	}
	names := make([]string, 0, len(players))
	for _, player := range players {
		names = append(names, player.Name)
	}
	return names
}
