package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/Juicern/sttrelay/internal/config"
	"github.com/Juicern/sttrelay/internal/storage"
)

func main() {
	createDB := flag.Bool("create-db", false, "create the database named in DATABASE_URL if it does not exist")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	if *createDB {
		if err := storage.EnsureDatabaseExists(ctx, cfg.Database.DSN); err != nil {
			log.Fatalf("create database: %v", err)
		}
	}

	db, err := storage.NewDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	log.Println("Migrations applied successfully.")
}
