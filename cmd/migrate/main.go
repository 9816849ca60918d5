// ABOUTME: Migration utility that moves a local SQLite document store into MongoDB
// ABOUTME: Provides dry-run and backup capabilities and keeps document IDs stable

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/shaft/config"
	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/logging"
	"github.com/harperreed/shaft/repository"
)

var log = logging.Console("migrate", logging.ParseLevel(os.Getenv("SHAFT_LOG_LEVEL")))

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	dbPath := flag.String("db", cfg.SQLitePath, "Path to the SQLite database to copy from")
	mongoURI := flag.String("mongo-uri", cfg.MongoURI, "MongoDB connection string to copy into")
	mongoDB := flag.String("mongo-db", cfg.MongoDatabase, "MongoDB database name")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Create backup before migration")
	force := flag.Bool("force", false, "Copy even if the destination already holds documents")
	flag.Parse()

	if err := migrate(context.Background(), *dbPath, *mongoURI, *mongoDB, *dryRun, *backup, *force); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Msg("migration completed successfully")
}

func migrate(ctx context.Context, dbPath, mongoURI, mongoDB string, dryRun, createBackup, force bool) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", dbPath)
	}

	if createBackup && !dryRun {
		backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
		log.Info().Str("path", backupPath).Msg("creating backup")

		input, err := os.ReadFile(dbPath)
		if err != nil {
			return fmt.Errorf("failed to read database: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	src, err := docstore.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := docstore.ConnectMongo(ctx, mongoURI, mongoDB)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	existing, err := countDocuments(ctx, dst)
	if err != nil {
		return err
	}
	if existing > 0 && !force {
		log.Warn().Int("documents", existing).Msg("destination already holds documents")
		return fmt.Errorf("migration requires -force flag")
	}

	result, err := docstore.Copy(ctx, src, dst, repository.Collections, dryRun)
	if err != nil {
		return err
	}

	prefix := "copied"
	if dryRun {
		prefix = "[DRY RUN] would copy"
	}
	for _, collection := range repository.Collections {
		log.Info().Str("collection", collection).Int("documents", result[collection]).Msg(prefix)
	}
	return nil
}

func countDocuments(ctx context.Context, store docstore.Store) (int, error) {
	total := 0
	for _, collection := range repository.Collections {
		docs, err := store.Get(ctx, collection, docstore.Query{})
		if err != nil {
			return 0, fmt.Errorf("failed to inspect %s: %w", collection, err)
		}
		total += len(docs)
	}
	return total, nil
}
