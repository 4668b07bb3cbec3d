package playtomic

import (
	"net/http"
	"time"

	"github.com/rafa-garcia/go-playtomic-api/client"
)

const (
	dateLayout = "2006-01-02"
	// apiLayout is how Playtomic writes start dates, always in UTC.
	apiLayout = "2006-01-02T15:04:05"
)

// APIClient is a custom Playtomic API client that implements the PlaytomicClient interface.
type APIClient struct {
	httpClient *http.Client
	apiClient  *client.Client
	BaseURL    string
	location   *time.Location
}

// SortStartDateAsc orders search results by start date, earliest first.
const SortStartDateAsc = "start_date,ASC"

// SearchMatchesParams defines the parameters for searching for matches.
type SearchMatchesParams struct {
	SportID   string
	Sort      string
	TenantIDs []string
	// Date limits the search to one club-local day (YYYY-MM-DD).
	Date string
}

// MatchSummary contains the essential details of a match from a search result.
type MatchSummary struct {
	MatchID string
	// Start is in the club's time zone.
	Start time.Time
}

// Date is the club-local date the match starts on (YYYY-MM-DD).
func (m MatchSummary) Date() string {
	return m.Start.Format(dateLayout)
}

// GameStatus defines the status of a game.
type GameStatus string

const (
	GameStatusPending    GameStatus = "PENDING"
	GameStatusPlayed     GameStatus = "PLAYED"
	GameStatusUnknown    GameStatus = "UNKNOWN"
	GameStatusCanceled   GameStatus = "CANCELED"
	GameStatusWaitingFor GameStatus = "WAITING_FOR"
	GameStatusExpired    GameStatus = "EXPIRED"
	GameStatusInProgress GameStatus = "IN_PROGRESS"
)

// Booking is a court reservation made on Playtomic.
type Booking struct {
	MatchID      string
	ResourceName string
	// Start is in the club's time zone.
	Start      time.Time
	Status     string
	GameStatus GameStatus
}

// Date is the club-local date of the booking (YYYY-MM-DD).
func (b Booking) Date() string {
	return b.Start.Format(dateLayout)
}

// Time is the club-local start time (HH:MM).
func (b Booking) Time() string {
	return b.Start.Format("15:04")
}

// Cancelled reports whether the booking no longer holds its court.
func (b Booking) Cancelled() bool {
	return b.GameStatus == GameStatusCanceled || b.Status == "CANCELED"
}

// playtomicMatchResponse defines the structure for the JSON response from the Playtomic API for a single match.
type playtomicMatchResponse struct {
	StartDate    string `json:"start_date"`
	Status       string `json:"status"`
	GameStatus   string `json:"game_status"`
	ResourceName string `json:"resource_name"`
}
