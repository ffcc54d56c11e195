package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "homestay/internal/adapters/http_server"
	"homestay/internal/adapters/notify"
	"homestay/internal/adapters/observability"
	redisad "homestay/internal/adapters/redis"
	"homestay/internal/adapters/translate"
	"homestay/internal/app"
	"homestay/internal/domain"
	"homestay/internal/shared"
	mysqlrepo "homestay/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
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

	var notifier domain.Notifier
	if cfg.AmqpURL != "" {
		pub := notify.NewPublisher(cfg.AmqpURL)
		defer pub.Close()
		notifier = pub
	}

	mat := app.NewMaterializer(tr, cfg.SourceLang)
	q := app.NewQueryService(repo, cache, mat, app.QueryConfig{
		SourceLang:      cfg.SourceLang,
		ViewTTLSec:      int(cfg.ViewTTL.Seconds()),
		ListTTLSec:      int(cfg.ListTTL.Seconds()),
		RefreshTTLOnHit: cfg.RefreshTTLOnHit,
	})
	inv := app.NewInvalidator(cache, cfg.TargetLangs)
	rewards := app.NewRewardService(repo)
	repairer := app.NewRepairer(q, inv, rewards, notifier, cache, cfg.TargetLangs, int64(cfg.RepairWorkers))
	c := app.NewCommandService(repo, inv, repairer)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:           q,
		C:           c,
		SourceLang:  cfg.SourceLang,
		TargetLangs: cfg.TargetLangs,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Strs("langs", cfg.TargetLangs).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	repairer.Wait() // drain in-flight repair tasks before exiting
	log.Info().Msg("shut down")
}
