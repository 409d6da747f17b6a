package main

import (
	"context"
	"flag"
	"os"

	"github.com/mkrajina/fitlog/internal/config"
	"github.com/mkrajina/fitlog/internal/db"
	"github.com/mkrajina/fitlog/internal/exercises"

	log "github.com/sirupsen/logrus"
)

// Seeds the exercise catalog with the default exercises. Safe to run
// repeatedly, already existing exercises are skipped.
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	migrateFirst := flag.Bool("migrate", false, "run schema migrations before seeding")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	postgresPassword := os.Getenv("FITLOG_POSTGRES_PASS")

	ctx := context.Background()

	if *migrateFirst {
		if err := db.Migrate(db.DatabaseURL(
			cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDBName, postgresPassword,
		)); err != nil {
			log.Fatalf("migrate: %s", err)
		}
		log.Println("migrations done")
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBPassword: postgresPassword,
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	seeded, err := exercises.NewRepo(dbPool).SeedDefaults(ctx)
	if err != nil {
		log.Fatalf("seed exercises: %s", err)
	}

	log.Printf("done, %d new exercises added", seeded)
}
