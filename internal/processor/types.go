package processor

import (
	"sync"

	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/playtomic"
	"github.com/ismlunati/padelMeet/internal/pubsub"
)

// Processor receives lifecycle events from the match engine and fans them out
// to Pub/Sub, metrics and the club's Slack channel. Delivery runs on a
// background worker so a slow side effect never holds a command's locks.
type Processor struct {
	club     club.ClubStore
	notifier Notifier
	metrics  metrics.Metrics
	counters metrics.MetricsStore
	pubsub   pubsub.PubSubClient
	topic    string
	dryRun   bool

	events  chan matchmaking.Event
	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// Option configures a Processor.
type Option func(*Processor)

// Importer mirrors a Playtomic tenant's bookings into the club schedule.
type Importer struct {
	club      club.ClubStore
	playtomic playtomic.PlaytomicClient
	mirror    Mirror
	metrics   metrics.Metrics
	tenantID  string
}

// Import outcomes, also used as metric labels.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeConflict = "conflict"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// ImportReport summarizes one import run.
type ImportReport struct {
	Date     string         `json:"date"`
	Fetched  int            `json:"fetched"`
	Created  int            `json:"created"`
	Existing int            `json:"existing"`
	Conflict int            `json:"conflict"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	Results  []ImportResult `json:"results"`
}

// ImportResult is the outcome for one external booking.
type ImportResult struct {
	ExternalID string `json:"externalId"`
	CourtID    string `json:"courtId,omitempty"`
	Time       string `json:"time,omitempty"`
	Outcome    string `json:"outcome"`
	MatchID    string `json:"matchId,omitempty"`
	Reason     string `json:"reason,omitempty"`
}
