package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"siso/internal/config"
	"siso/internal/infra"
	"siso/internal/realtime"
	"siso/internal/repository"
	"siso/internal/router"
	"siso/internal/service"
	"siso/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if cfg.SeedOnStart {
		created, err := infra.SeedRoot(context.Background(), db, cfg.RootPassword, cfg.RootEmail)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed root user")
		}
		if created {
			log.Info().Str("username", infra.RootUsername).Msg("root user created")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	hub := realtime.NewHub(cfg.AllowedOrigins())
	go hub.Run(ctx)

	events := service.MultiPublisher{hub}
	var workers interface{ Wait() }
	if rdb != nil {
		queue := worker.NewRedisQueue(rdb)
		events = append(events, worker.NewDispatcher(queue))

		store, err := infra.NewReportStore(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Str("storage", cfg.ReportStorage).Msg("failed to init report store")
		}
		usuarioRepo := repository.NewUsuarioRepository(db)
		relatorios := service.NewCaixaService(repository.NewCaixaRepository(db), usuarioRepo, nil)

		var mailer worker.RelatorioMailer
		if cfg.MailEnabled() {
			mailer = infra.NewMailer(cfg, infra.NewBreaker(infra.BreakerConfig{}))
		}
		fechamento := worker.NewFechamentoWorker(relatorios, usuarioRepo, store, mailer)

		workers = worker.StartWorkerPool(ctx, queue, cfg.WorkerPoolSize, map[string]worker.Handler{
			worker.JobFechamento: fechamento.Handle,
		})
	} else {
		log.Warn().Msg("REDIS_URL not set, closing reports will not be generated")
	}

	r := router.New(cfg, db, rdb, hub, events)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("siso backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// stop the hub and the workers after the last request has published
	cancel()
	if workers != nil {
		workers.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}

// setupLogger picks pretty console output for development and JSON otherwise.
func setupLogger(cfg *config.Config) {
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
