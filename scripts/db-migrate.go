package main

import (
	"flag"

	"github.com/bugpredictor/config"
	"github.com/bugpredictor/database"
	"github.com/bugpredictor/logger"
)

// Migrates the configured database and optionally seeds the demo project:
//
//	go run ./scripts/db-migrate.go -seed -password secret123
func main() {
	seed := flag.Bool("seed", false, "create the demo project with ten team members")
	password := flag.String("password", "", "password shared by the demo team members")
	flag.Parse()

	config.LoadEnv()
	cfg := config.Load()

	logger.Info("Starting database migration...")

	if err := database.Initialize(cfg.Database); err != nil {
		logger.Fatal("Database migration failed: %v", err)
	}
	defer database.Close()

	if err := database.EnsureSuperuser(database.DB, cfg.Admin); err != nil {
		logger.Fatal("Failed to ensure superuser: %v", err)
	}

	if *seed {
		if *password == "" {
			logger.Fatal("-password is required with -seed")
		}
		project, err := database.SeedDemoData(database.DB, *password)
		if err != nil {
			logger.Fatal("Seeding demo data failed: %v", err)
		}
		logger.Info("Seeded demo project %s (%s)", project.Name, project.ID)
	}

	logger.Info("Database migration completed successfully!")
}
