package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"homestay/internal/adapters/observability"
	redisad "homestay/internal/adapters/redis"
	"homestay/internal/adapters/translate"
	"homestay/internal/app"
	"homestay/internal/domain"
	"homestay/internal/shared"
	mysqlrepo "homestay/internal/storage/mysql"
)

// warmer pre-materializes every listing view in every target language so the
// first reader after a deploy or cache flush doesn't pay the translation
// round-trips. Run it from cron or after migrations; it is safe to re-run.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.WarmWorkers).
		Strs("langs", cfg.TargetLangs).
		Msg("warmer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var tr domain.Translator
	if cfg.OpenAIKey != "" {
		client, err := translate.New(translate.Config{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			RPS:     cfg.TranslateRPS,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize translation client")
		}
		tr = client
	}

	mat := app.NewMaterializer(tr, cfg.SourceLang)
	q := app.NewQueryService(repo, cache, mat, app.QueryConfig{
		SourceLang: cfg.SourceLang,
		ViewTTLSec: int(cfg.ViewTTL.Seconds()),
		ListTTLSec: int(cfg.ListTTL.Seconds()),
	})

	ids, err := repo.ListListingIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list listing ids failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup

	for _, id := range ids {
		for _, lang := range cfg.TargetLangs {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(id int64, lang string) {
				defer wg.Done()
				defer sem.Release(1)

				if _, err := q.GetListing(ctx, id, lang); err != nil {
					log.Warn().Int64("id", id).Str("lang", lang).Err(err).Msg("warm failed")
					return
				}
				log.Info().Int64("id", id).Str("lang", lang).Msg("warm ok")
			}(id, lang)
		}
	}

	wg.Wait()
	log.Info().Int("listings", len(ids)).Msg("warm completed")
}
