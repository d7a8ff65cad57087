package main

import (
	"context"
	"log"
	"os"

	"github.com/mira/volunteer-hub/internal/api"
	"github.com/mira/volunteer-hub/internal/config"
	"github.com/mira/volunteer-hub/internal/db"
	"github.com/mira/volunteer-hub/internal/storage"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	proofs, err := storage.NewS3Storage(ctx, storage.Config{
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Endpoint:        cfg.S3.Endpoint,
		PublicBaseURL:   cfg.S3.PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to init proof storage: %v", err)
	}

	srv := api.NewServer(pool, cfg, proofs)
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := srv.Start(cfg.Port); err != nil {
		log.Fatal(err)
	}
}
