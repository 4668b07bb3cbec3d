package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ismlunati/padelMeet/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	date     string
	slot     string
	courtID  string
	players  string
	fromDate string
	showGrid bool
	email    string
	password string
)

func init() {
	rootCmd.AddCommand(healthCmd, loginCmd, meCmd, playersCmd, courtsCmd, hoursCmd, scheduleCmd,
		bookCmd, requestCmd, organizeCmd, inviteCmd, respondCmd, cancelCmd, invitationsCmd,
		matchesCmd, importCmd, statsCmd, metricsCmd)
	hoursCmd.AddCommand(hoursSetCmd)

	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	scheduleCmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, default today)")
	scheduleCmd.Flags().BoolVar(&showGrid, "grid", false, "Render the courts x times grid")
	importCmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, default today)")
	matchesCmd.Flags().StringVar(&fromDate, "from", "", "Only matches on or after this date (default today)")

	for _, cmd := range []*cobra.Command{bookCmd, requestCmd, organizeCmd} {
		cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
		cmd.Flags().StringVar(&slot, "time", "", "Slot start time (HH:MM)")
		_ = cmd.MarkFlagRequired("date")
		_ = cmd.MarkFlagRequired("time")
	}
	for _, cmd := range []*cobra.Command{bookCmd, organizeCmd} {
		cmd.Flags().StringVar(&courtID, "court", "", "Court id")
		_ = cmd.MarkFlagRequired("court")
	}
	organizeCmd.Flags().StringVar(&players, "invite", "", "Comma separated player ids to invite")
	inviteCmd.Flags().StringVar(&players, "players", "", "Comma separated player ids to invite")
	_ = inviteCmd.MarkFlagRequired("players")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := call(http.MethodGet, "/health", nil)
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print a bearer token for --token or $PADEL_TOKEN",
	RunE: func(cmd *cobra.Command, args []string) error {
		var session struct {
			User struct {
				Name string `json:"name"`
				Role string `json:"role"`
			} `json:"user"`
			Token     string    `json:"token"`
			ExpiresAt time.Time `json:"expiresAt"`
		}
		err := callInto(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, &session)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Logged in as %s (%s), token expires %s\n", session.User.Name, session.User.Role, session.ExpiresAt.Format(time.RFC1123))
		fmt.Println(session.Token)
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the logged in player",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodGet, "/api/me", nil)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the club's players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodGet, "/api/players", nil)
	},
}

var courtsCmd = &cobra.Command{
	Use:   "courts",
	Short: "List the club's courts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodGet, "/api/courts", nil)
	},
}

var hoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Show the weekly opening hours (0 = Sunday)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodGet, "/api/opening-hours", nil)
	},
}

var hoursSetCmd = &cobra.Command{
	Use:     "set <json>",
	Short:   "Replace the opening hours (admin)",
	Example: `padel-cli hours set '{"1":["18:00","19:30"],"6":["09:00","10:30"]}'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var hours map[string][]string
		if err := json.Unmarshal([]byte(args[0]), &hours); err != nil {
			return fmt.Errorf("invalid opening hours: %w", err)
		}
		return printResponse(http.MethodPut, "/api/opening-hours", hours)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the schedule for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		day := orToday(date)
		if !showGrid {
			return printResponse(http.MethodGet, "/api/schedule?date="+url.QueryEscape(day), nil)
		}
		var grid schedule.Grid
		if err := callInto(http.MethodGet, "/api/schedule/grid?date="+url.QueryEscape(day), nil, &grid); err != nil {
			return err
		}
		return renderGrid(os.Stdout, grid)
	},
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a whole court for yourself",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodPost, "/api/bookings", map[string]string{"courtId": courtID, "date": date, "time": slot})
	},
}

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Tell the organizers you want to play at a time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodPost, "/api/time-slot-requests", map[string]string{"date": date, "time": slot})
	},
}

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Open a match on a court and invite players (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodPost, "/api/matches", map[string]any{
			"courtId":          courtID,
			"date":             date,
			"time":             slot,
			"invitedPlayerIds": splitIDs(players),
		})
	},
}

var inviteCmd = &cobra.Command{
	Use:   "invite <match-id>",
	Short: "Invite more players to an organizing match (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodPost, "/api/matches/"+url.PathEscape(args[0])+"/invitations", map[string]any{"playerIds": splitIDs(players)})
	},
}

var respondCmd = &cobra.Command{
	Use:       "respond <match-id> <accept|decline>",
	Short:     "Answer an invitation",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"accept", "decline"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodPost, "/api/matches/"+url.PathEscape(args[0])+"/response", map[string]string{"response": strings.ToUpper(args[1])})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <match-id>",
	Short: "Cancel a match or booking and free the court",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodPost, "/api/matches/"+url.PathEscape(args[0])+"/cancel", nil)
	},
}

var invitationsCmd = &cobra.Command{
	Use:   "invitations",
	Short: "List your pending invitations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodGet, "/api/me/invitations", nil)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List your upcoming matches and bookings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodGet, "/api/me/matches?from="+url.QueryEscape(orToday(fromDate)), nil)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Mirror a day of Playtomic bookings into the schedule (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodPost, "/api/admin/import/playtomic?date="+url.QueryEscape(orToday(date)), nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lifetime event counters (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(http.MethodGet, "/api/admin/stats", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := call(http.MethodGet, "/metrics", nil)
		if err != nil {
			return err
		}
		fmt.Print(string(body))
		return nil
	},
}

// orToday returns d, or today's local date when d is empty.
func orToday(d string) string {
	if d == "" {
		return time.Now().Format("2006-01-02")
	}
	return d
}

func splitIDs(raw string) []string {
	ids := []string{}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// renderGrid prints one line per start time and one column per court.
func renderGrid(w io.Writer, g schedule.Grid) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (day %d)", g.Date, g.DayOfWeek)
	for _, c := range g.Courts {
		fmt.Fprintf(tw, "\t%s", c.Name)
	}
	fmt.Fprintln(tw, "\tinterested")

	for _, row := range g.Rows {
		label := row.Time
		if !row.Open {
			label += "*"
		}
		fmt.Fprint(tw, label)
		for _, cell := range row.Cells {
			fmt.Fprintf(tw, "\t%s", cellText(cell))
		}
		interest := fmt.Sprint(len(row.InterestedPlayerIDs))
		if row.ViewerInterested {
			interest += " (you)"
		}
		fmt.Fprintf(tw, "\t%s\n", interest)
	}
	return tw.Flush()
}

func cellText(c schedule.Cell) string {
	var text string
	switch c.State {
	case schedule.CellFree:
		return "-"
	case schedule.CellOrganizing:
		text = fmt.Sprintf("organizing %d/%d", c.Players, c.Players+c.OpenSpots)
	case schedule.CellConfirmed:
		text = "confirmed"
	case schedule.CellBooked:
		text = "booked"
	default:
		text = string(c.State)
	}
	switch {
	case c.ViewerPlaying:
		text += " (you)"
	case c.ViewerInvited:
		text += " (invited)"
	}
	return text
}
