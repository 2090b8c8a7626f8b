package main

import (
	"context"
	"database/sql"
	"os"
	"sync"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"amsterdam_guide/internal/adapters/observability"
	"amsterdam_guide/internal/app"
	"amsterdam_guide/internal/shared"
	pgrepo "amsterdam_guide/internal/storage/postgres"
)

// Bulk-imports every CSV file given on the command line through the same
// pipeline the API exposes. Files are independent, so they run under a
// bounded semaphore; rows within a file stay sequential.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	files := os.Args[1:]
	if len(files) == 0 {
		log.Fatal().Msg("usage: importer <places.csv> [more.csv ...]")
	}

	log.Info().
		Int("files", len(files)).
		Int("workers", cfg.Workers).
		Msg("importer starting")

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	// no cache in the CLI path; invalidation only matters for the API
	ing := app.NewImportService(pgrepo.New(db), nil)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, path := range files {
		path := path

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)

			f, err := os.Open(path)
			if err != nil {
				log.Warn().Str("file", path).Err(err).Msg("open failed")
				return
			}
			defer f.Close()

			report, err := ing.ImportCSV(ctx, f)
			if err != nil {
				log.Warn().Str("file", path).Err(err).Msg("import failed")
				for _, re := range report.Errors {
					log.Warn().Str("file", path).Int("row", re.Row).Msg(re.Reason)
				}
				return
			}
			for _, re := range report.Errors {
				log.Warn().Str("file", path).Int("row", re.Row).Msg(re.Reason)
			}
			log.Info().
				Str("file", path).
				Int64("imported", report.InsertedOrUpdated).
				Int("skipped", report.Skipped).
				Msg("import ok")
		}(path)
	}

	wg.Wait()
	log.Info().Msg("import completed")
}
