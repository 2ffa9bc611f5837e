package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront/internal/config"
	"github.com/fairyhunter13/storefront/pkg/database"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [up|down|version]\n", os.Args[0])
		flag.PrintDefaults()
	}
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	if err := run(cmd, cfg.DB.URL(), *steps); err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("migration failed")
	}
}

func run(cmd, databaseURL string, steps int) error {
	if cmd == "up" {
		return database.MigrateUp(databaseURL)
	}

	m, err := database.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	switch cmd {
	case "down":
		if steps < 1 {
			return fmt.Errorf("steps must be positive, got %d", steps)
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down: %w", err)
		}
		log.Info().Int("steps", steps).Msg("migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
