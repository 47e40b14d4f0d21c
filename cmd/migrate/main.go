package main

import (
	"database/sql"
	"errors"
	"flag"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"

	appconfig "github.com/ionutpopescu27/ByteMeHackaton/internal/config"
	"github.com/ionutpopescu27/ByteMeHackaton/migrations"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	flag.Parse()
	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logger.Error("failed to load migrations", "error", err)
		os.Exit(1)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.Error("failed to create migration driver", "error", err)
		os.Exit(1)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		logger.Error("failed to create migrator", "error", err)
		os.Exit(1)
	}

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "force":
		version, convErr := strconv.Atoi(flag.Arg(1))
		if convErr != nil {
			logger.Error("force requires a numeric version")
			os.Exit(1)
		}
		err = m.Force(version)
	default:
		logger.Error("unknown command", "command", command)
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}

	version, dirty, _ := m.Version()
	logger.Info("migrations complete", "command", command, "version", version, "dirty", dirty)
}
