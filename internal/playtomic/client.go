package playtomic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/rafa-garcia/go-playtomic-api/models"
)

// Option configures an APIClient.
type Option func(*APIClient)

// WithLocation sets the club's time zone used to turn Playtomic's UTC start
// dates into local dates and slot times. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *APIClient) { c.location = loc }
}

// WithBaseURL points search and detail requests at another host.
func WithBaseURL(url string) Option {
	return func(c *APIClient) { c.BaseURL = url }
}

// NewClient creates a new custom Playtomic client.
func NewClient(opts ...Option) PlaytomicClient {
	c := &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    "https://api.playtomic.io",
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.apiClient = client.NewClient(
		client.WithBaseURL(c.BaseURL+"/v1"),
		client.WithTimeout(10*time.Second),
		client.WithRetries(3),
	)
	return c
}

// Ensure APIClient implements the PlaytomicClient interface.
var _ PlaytomicClient = (*APIClient)(nil)

// GetMatches fetches every match matching params, following pages. With a
// Date, only matches starting on that club-local day are returned, and when
// sorted by SortStartDateAsc paging stops at the first match past it.
func (c *APIClient) GetMatches(ctx context.Context, params *SearchMatchesParams) ([]MatchSummary, error) {
	const pageSize = 300
	var (
		allMatches  []MatchSummary
		page        = 0
		from, until time.Time
	)
	if params.Date != "" {
		day, err := time.ParseInLocation(dateLayout, params.Date, c.location)
		if err != nil {
			return nil, fmt.Errorf("invalid search date %q: %w", params.Date, err)
		}
		from, until = day, day.AddDate(0, 0, 1)
	}

	for {
		externalParams := &models.SearchMatchesParams{
			SportID:   params.SportID,
			Sort:      params.Sort,
			TenantIDs: params.TenantIDs,
			Size:      pageSize,
			Page:      page,
		}
		if !from.IsZero() {
			// Playtomic reads from_start_date as UTC.
			externalParams.FromStartDate = from.UTC().Format(apiLayout)
		}

		log.Debug("Fetching matches from Playtomic API", "params", externalParams)
		matches, err := c.apiClient.GetMatches(ctx, externalParams)
		if err != nil {
			return nil, fmt.Errorf("error fetching matches from playtomic api: %w", err)
		}

		log.Debug("Fetched matches page", "count", len(matches), "page", page)
		pastDay := false
		for _, m := range matches {
			start, err := c.localTime(m.StartDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start of match %s: %w", m.MatchID, err)
			}
			if !until.IsZero() && !start.Before(until) {
				pastDay = true
				continue
			}
			if start.Before(from) {
				continue
			}
			allMatches = append(allMatches, MatchSummary{MatchID: m.MatchID, Start: start})
		}

		if len(matches) < pageSize || (pastDay && params.Sort == SortStartDateAsc) {
			break
		}
		page++
	}
	log.Info("Fetched all matches", "count", len(allMatches), "date", params.Date)
	return allMatches, nil
}

// localTime parses a Playtomic UTC timestamp into the club's zone.
func (c *APIClient) localTime(raw string) (time.Time, error) {
	t, err := time.Parse(apiLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(c.location), nil
}

// GetBooking fetches the details of one match, including its court and start.
func (c *APIClient) GetBooking(ctx context.Context, matchID string) (Booking, error) {
	url := fmt.Sprintf("%s/v1/matches/%s", c.BaseURL, matchID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PlaytomicGoClient/1.0")

	log.Debug("Requesting match from Playtomic API", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Playtomic API", "status", resp.StatusCode, "body", string(body))
		return Booking{}, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var matchResponse playtomicMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&matchResponse); err != nil {
		return Booking{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return c.toBooking(matchID, matchResponse)
}

func (c *APIClient) toBooking(matchID string, r playtomicMatchResponse) (Booking, error) {
	start, err := c.localTime(r.StartDate)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to parse start time: %w", err)
	}

	gameStatus := GameStatus(r.GameStatus)
	switch gameStatus {
	case GameStatusPending, GameStatusPlayed, GameStatusCanceled, GameStatusWaitingFor, GameStatusExpired, GameStatusInProgress:
	default:
		log.Warn("Unknown game status received from Playtomic API", "status", r.GameStatus, "matchID", matchID)
		gameStatus = GameStatusUnknown
	}

	return Booking{
		MatchID:      matchID,
		ResourceName: r.ResourceName,
		Start:        start,
		Status:       r.Status,
		GameStatus:   gameStatus,
	}, nil
}
