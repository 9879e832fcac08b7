package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"userwatch/internal/config"
	"userwatch/internal/export"
	"userwatch/internal/ingest"
	"userwatch/internal/menu"
	"userwatch/internal/query"
	"userwatch/internal/repository"
	"userwatch/internal/service"
	"userwatch/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("data dir: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	client, err := telegram.New(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	log.Printf("[info] authorized on account %s", client.Self().UserName)

	queries := query.NewService(db)
	exporter := export.NewExporter(queries, cfg.ExportsDir())
	chatDir := service.NewChatDirectory(client, repository.NewChatRepository(db))

	reconciler := ingest.NewReconciler(db)
	poller := ingest.NewPoller(client, reconciler, repository.NewOffsetRepository(db), cfg.PollTimeout())
	go func() {
		if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[error] ingestion stopped: %v", err)
			stop()
		}
	}()

	scheduler := service.NewScheduler(time.Local)
	if cfg.StatsInterval() > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.StatsInterval(), func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			stats, err := queries.LiveStatistics(jobCtx)
			if err != nil {
				log.Printf("stats digest: %v", err)
				return
			}
			log.Printf("[info] tracking %d users, %d messages, %d username changes across %d chats",
				stats.Users, stats.Messages, stats.UsernameChanges, stats.Chats)
		}); err != nil {
			log.Fatalf("schedule stats digest: %v", err)
		}
	}
	if cfg.ExportTime != "" {
		if _, err := scheduler.ScheduleDaily(cfg.ExportTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			n, err := exporter.ExportAll(jobCtx)
			if err != nil {
				log.Printf("export snapshot: %v", err)
				return
			}
			log.Printf("[info] exported %d dossier(s)", n)
		}); err != nil {
			log.Fatalf("schedule export: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("[info] monitoring active, opening menu")
	if err := menu.New(queries, exporter, chatDir, client, os.Stdin, os.Stdout).Run(ctx); err != nil &&
		!errors.Is(err, context.Canceled) {
		log.Fatalf("menu: %v", err)
	}
	stop()
	log.Println("Shutdown complete.")
}
