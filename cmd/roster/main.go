// Command roster loads a jury roster CSV into the portal datastore.
// Expected columns: jury_id,name,email,department[,password]. A row with a
// password gets a fresh credential hash; rows without one keep whatever
// credential the jury already had.
package main

import (
	"encoding/csv"
	"flag"
	"os"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/sih-tools/evalportal/internal/app"
	"github.com/sih-tools/evalportal/internal/creds"
	"github.com/sih-tools/evalportal/internal/models"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	var rosterPath = flag.String("roster", "roster.csv", "Path to jury roster CSV")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	store, err := app.NewStore(cfg.Database.DSN)
	if err != nil {
		logger.Error.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if err := store.ApplyMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	f, err := os.Open(*rosterPath)
	if err != nil {
		logger.Error.Fatalf("Failed to open roster: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		logger.Error.Fatalf("Failed to parse roster: %v", err)
	}

	loaded := 0
	for i, record := range records {
		line := i + 1
		if len(record) < 4 {
			logger.Error.Printf("line %d: expected jury_id,name,email,department", line)
			continue
		}
		if strings.EqualFold(record[0], "jury_id") {
			continue
		}

		jury := &models.Jury{
			JuryID:     strings.TrimSpace(record[0]),
			Name:       strings.TrimSpace(record[1]),
			Department: strings.TrimSpace(record[3]),
		}
		if jury.JuryID == "" || jury.Name == "" || jury.Department == "" {
			logger.Error.Printf("line %d: jury_id, name and department are required", line)
			continue
		}
		if email := strings.TrimSpace(record[2]); email != "" {
			jury.Email = &email
		}
		if len(record) >= 5 && strings.TrimSpace(record[4]) != "" {
			hash, err := creds.HashPassword(strings.TrimSpace(record[4]))
			if err != nil {
				logger.Error.Fatalf("line %d: failed to hash password: %v", line, err)
			}
			jury.PasswordHash = &hash
		}

		if err := store.UpsertJury(jury); err != nil {
			logger.Error.Printf("line %d: failed to save jury %s: %v", line, jury.JuryID, err)
			continue
		}
		loaded++
	}

	logger.Info.Printf("Loaded %d juries from %s", loaded, *rosterPath)
}
