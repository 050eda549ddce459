package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/config"
	"github.com/Nickflanagn24/bookstore/database"
	"github.com/Nickflanagn24/bookstore/logger"
	"github.com/Nickflanagn24/bookstore/repository"
	"github.com/Nickflanagn24/bookstore/services"
)

// Imports Google Books volumes into the catalog. Imported books arrive
// off sale with zero stock so staff can price and shelve them before
// they appear in the shop.
//
// Usage:
//
//	import-books -query "dog training" -max 40 -price 1299
func main() {
	query := flag.String("query", "", "Google Books search query (required)")
	maxResults := flag.Int("max", 20, "maximum volumes to fetch (1-40)")
	price := flag.Int64("price", 999, "default price in pence for imported books")
	flag.Parse()

	if *query == "" {
		log.Fatal("-query is required")
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer zlog.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}

	client := services.NewGoogleBooksClient(cfg.GoogleBooksAPIKey, zlog)
	importer := services.NewImportService(client, repository.NewGormBookRepository(db), zlog)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := importer.ImportQuery(ctx, *query, *maxResults, *price)
	if err != nil {
		zlog.Fatal("Import failed", zap.Error(err))
	}

	zlog.Info("Import complete",
		zap.String("query", *query),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
}
