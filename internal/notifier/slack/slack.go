package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/ismlunati/padelMeet/internal/metrics"
	"github.com/ismlunati/padelMeet/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts match announcements to the club channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendMatchOrganizing(a notifier.Announcement, dryRun bool) error {
	_, _, err := s.sendMessage(formatMatchOrganizing(a), dryRun)
	return err
}

func (s *Notifier) SendMatchConfirmed(a notifier.Announcement, dryRun bool) error {
	_, _, err := s.sendMessage(formatMatchConfirmed(a), dryRun)
	return err
}

func (s *Notifier) SendCourtBooked(a notifier.Announcement, dryRun bool) error {
	_, _, err := s.sendMessage(formatCourtBooked(a), dryRun)
	return err
}

func (s *Notifier) SendMatchCancelled(a notifier.Announcement, dryRun bool) error {
	_, _, err := s.sendMessage(formatMatchCancelled(a), dryRun)
	return err
}

// whenText renders the match slot, e.g. "Tuesday 10 Jun, 18:00".
func whenText(m *matchmaking.Match) string {
	t, err := time.Parse("2006-01-02 15:04", m.Date+" "+m.Time)
	if err != nil {
		return m.Date + " " + m.Time
	}
	return t.Format("Monday 02 Jan, 15:04")
}

func header(text string) slack.Block {
	return slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", text, true, false))
}

func section(text string) slack.Block {
	return slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil)
}

func detailsText(a notifier.Announcement) string {
	court := a.Court.Name
	if court == "" {
		court = a.Match.CourtID
	}
	return fmt.Sprintf("Court: %s\nTime: %s", court, whenText(a.Match))
}

func playersText(names []string) string {
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "• "+name)
	}
	return "Players:\n" + strings.Join(lines, "\n")
}

// formatMatchOrganizing creates the call for players of a freshly organized match.
func formatMatchOrganizing(a notifier.Announcement) slack.Message {
	blocks := []slack.Block{
		header("🎾 Players wanted! 🎾"),
		section(detailsText(a)),
	}
	if len(a.PlayerNames) > 0 {
		blocks = append(blocks, section(playersText(a.PlayerNames)))
	}
	open := a.Match.Capacity - len(a.Match.PlayerIDs)
	note := fmt.Sprintf("%d spot(s) left", open)
	if a.Organizer != "" {
		note = fmt.Sprintf("%s is organizing, %s", a.Organizer, note)
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", note, true, false)))
	return slack.NewBlockMessage(blocks...)
}

// formatMatchConfirmed creates the message for a full roster.
func formatMatchConfirmed(a notifier.Announcement) slack.Message {
	blocks := []slack.Block{
		header("🎾 Match confirmed! 🎾"),
		section(detailsText(a)),
	}
	if len(a.PlayerNames) > 0 {
		blocks = append(blocks, section(playersText(a.PlayerNames)))
	}
	return slack.NewBlockMessage(blocks...)
}

// formatCourtBooked creates the message for a whole-court booking.
func formatCourtBooked(a notifier.Announcement) slack.Message {
	blocks := []slack.Block{
		header("📅 Court booked"),
		section(detailsText(a)),
	}
	by := a.BookedBy
	if a.Match.Source == matchmaking.SourcePlaytomic {
		by = "Playtomic"
	}
	if by != "" {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", "Booked by "+by, true, false)))
	}
	return slack.NewBlockMessage(blocks...)
}

// formatMatchCancelled creates the message for a cancelled match.
func formatMatchCancelled(a notifier.Announcement) slack.Message {
	blocks := []slack.Block{
		header("❌ Match cancelled"),
		section(detailsText(a) + "\nThe court is free again."),
	}
	if a.CancelledBy != "" {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", "Cancelled by "+a.CancelledBy, true, false)))
	}
	return slack.NewBlockMessage(blocks...)
}
