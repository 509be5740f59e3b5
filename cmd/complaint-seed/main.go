package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/config"
	"github.com/beashaj2001/complaintsManagement/internal/seed"
	"github.com/beashaj2001/complaintsManagement/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg := config.Load()

	path := os.Getenv("SEED_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		path = "deploy/seed.yaml"
	}

	doc, err := seed.LoadFile(path)
	if err != nil {
		log.Fatalf("seed load path=%s: %v", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	st := postgres.NewStore(pool, postgres.Options{BcryptCost: cfg.BcryptCost})
	summary, err := seed.Apply(ctx, st, doc)
	if err != nil {
		log.Fatalf("seed apply: %v", err)
	}
	log.Printf("seed complete path=%s teams_created=%d users_created=%d users_skipped=%d rules_created=%d",
		path, summary.TeamsCreated, summary.UsersCreated, summary.UsersSkipped, summary.RulesCreated)
}
