package main

import (
	"database/sql"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	server "amsterdam_guide/internal/adapters/http_server"
	"amsterdam_guide/internal/adapters/objectstore"
	"amsterdam_guide/internal/adapters/observability"
	redisad "amsterdam_guide/internal/adapters/redis"
	"amsterdam_guide/internal/app"
	"amsterdam_guide/internal/shared"
	pgrepo "amsterdam_guide/internal/storage/postgres"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := pgrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	photos := objectstore.NewDisk(cfg.PhotoDir, cfg.SiteBaseURL+cfg.PhotoBase)

	h := &server.Handlers{
		Imports:       app.NewImportService(repo, cache),
		Q:             app.NewQueryService(repo, cache, cfg.CacheTTL),
		Admin:         app.NewAdminService(repo, cache),
		Photos:        app.NewPhotoService(repo, photos, cache),
		BaseURL:       cfg.SiteBaseURL,
		ImportLimiter: rate.NewLimiter(rate.Limit(cfg.ImportRPS), cfg.ImportRPS),
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.Mount(cfg.PhotoBase+"/*", http.StripPrefix(cfg.PhotoBase+"/", http.FileServer(http.Dir(photos.Root()))))
	srv.MountHandlers(h)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
