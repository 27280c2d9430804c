package main

import (
	"fmt"
	"os"
	"strconv"

	"bondfolio/internal/config"
	"bondfolio/internal/database"
	"bondfolio/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: migrate <up|down|version> [N]")
	}

	cfg, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)

	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	command := os.Args[1]

	switch command {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("migration up failed: %w", err)
		}
		logger.Get().Info("Migrations applied successfully")
		if err := seed(cfg); err != nil {
			return err
		}
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 1 {
				return fmt.Errorf("invalid step count %q", os.Args[2])
			}
		}
		if err := m.Steps(-steps); err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("migration down failed: %w", err)
		}
		logger.Get().Infof("Rolled back %d migration(s)", steps)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("failed to read migration version: %w", err)
		}
		logger.Get().Infof("Migration version: %d (dirty: %v)", version, dirty)
	default:
		return fmt.Errorf("unknown command %q: expected up, down, or version", command)
	}

	return nil
}

// seed loads reference data after a successful up, mirroring the api boot.
func seed(cfg *database.Config) error {
	manager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect for seeding: %w", err)
	}
	appConfig := config.Get()
	if err := database.Seed(manager.DB(), appConfig.AdminUsername, appConfig.AdminPassword, appConfig.AdminEmail); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	logger.Get().Info("Reference data seeded")
	return nil
}
