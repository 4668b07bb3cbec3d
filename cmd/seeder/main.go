package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ismlunati/padelMeet/internal/apperr"
	"github.com/ismlunati/padelMeet/internal/auth"
	"github.com/ismlunati/padelMeet/internal/club"
	"github.com/ismlunati/padelMeet/internal/database"
	"github.com/ismlunati/padelMeet/internal/matchmaking"
	"github.com/joho/godotenv"
)

// demoPassword is shared by every seeded account.
const demoPassword = "password"

var demoCourts = []club.Court{
	{ID: "1", Name: "Pista Central", Location: "Main building", Surface: "Panoramic glass", Indoor: true, PricePerHour: 24, ExternalName: "Court 1"},
	{ID: "2", Name: "Pista 2", Location: "Main building", Surface: "Artificial grass", Indoor: true, PricePerHour: 20, ExternalName: "Court 2"},
	{ID: "3", Name: "Pista Exterior", Location: "Terrace", Surface: "Artificial grass", Indoor: false, PricePerHour: 16, ExternalName: "Court 3"},
}

var demoPlayers = []club.PlayerInfo{
	{ID: "admin", Name: "Club Admin", Email: "admin@example.com", Role: club.RoleAdmin},
	{ID: "player", Name: "Demo Player", Email: "player@example.com"},
	{ID: "player-1", Name: "Lucía Martín", Email: "lucia@example.com"},
	{ID: "player-2", Name: "Javier Ruiz", Email: "javier@example.com"},
	{ID: "player-3", Name: "Marta Gómez", Email: "marta@example.com"},
	{ID: "player-4", Name: "Pablo Sanz", Email: "pablo@example.com"},
}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":           "padel.db",
		"TURSO_PRIMARY_URL": "",
		"TURSO_AUTH_TOKEN":  "",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	clubStore := club.New(db)
	if err := seedClub(ctx, clubStore); err != nil {
		log.Fatalf("Failed to seed club: %s", err)
	}

	service := matchmaking.NewService(matchmaking.NewStore(db), clubStore)
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	if err := seedDay(ctx, service, tomorrow); err != nil {
		log.Fatalf("Failed to seed matches: %s", err)
	}
	log.Info("Seeding finished", "login", "admin@example.com / player@example.com", "password", demoPassword)
}

func seedClub(ctx context.Context, clubStore club.ClubStore) error {
	for _, c := range demoCourts {
		if err := clubStore.UpsertCourt(ctx, c); err != nil {
			return fmt.Errorf("failed to upsert court %s: %w", c.ID, err)
		}
	}

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}
	for _, p := range demoPlayers {
		p.PasswordHash = hash
		if err := clubStore.UpsertPlayer(ctx, p); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	log.Info("Ensured demo courts and players exist.", "courts", len(demoCourts), "players", len(demoPlayers))
	return nil
}

// seedDay fills date with one match of every kind. Re-running the seeder
// leaves an already seeded day alone.
func seedDay(ctx context.Context, service matchmaking.Service, date string) error {
	skipTaken := func(what string, err error) error {
		if errors.Is(err, apperr.ErrSlotOccupied) || errors.Is(err, apperr.ErrPlayerBusy) {
			log.Info("Slot already seeded, skipping", "what", what, "date", date)
			return nil
		}
		return err
	}

	organizing, err := service.CreateMatchAndInvite(ctx, matchmaking.CreateMatchParams{
		CourtID: "1", Date: date, Time: "18:00", OrganizerID: "admin",
		InvitedPlayerIDs: []string{"player", "player-1", "player-2"},
	})
	if err != nil {
		if err := skipTaken("organizing match", err); err != nil {
			return err
		}
	} else if _, err := service.RespondToInvitation(ctx, organizing.ID, "player-1", matchmaking.ResponseAccept); err != nil {
		return err
	}

	confirmed, err := service.CreateMatchAndInvite(ctx, matchmaking.CreateMatchParams{
		CourtID: "2", Date: date, Time: "19:30", OrganizerID: "player-2",
		InvitedPlayerIDs: []string{"player-3", "player-4", "player-1"},
	})
	if err != nil {
		if err := skipTaken("confirmed match", err); err != nil {
			return err
		}
	} else {
		for _, p := range []string{"player-3", "player-4", "player-1"} {
			if _, err := service.RespondToInvitation(ctx, confirmed.ID, p, matchmaking.ResponseAccept); err != nil {
				return err
			}
		}
	}

	if _, err := service.BookCourt(ctx, "3", date, "10:30", "player"); err != nil {
		if err := skipTaken("booking", err); err != nil {
			return err
		}
	}

	for _, p := range []string{"player-3", "player-4"} {
		if _, err := service.AddTimeSlotRequest(ctx, p, date, "21:00"); err != nil {
			return err
		}
	}
	log.Info("Seeded demo day", "date", date)
	return nil
}
