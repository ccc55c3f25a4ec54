// ebay-listing-monitor — hourly auction watcher.
//
// Serve mode (default): starts the HTTP API and the hourly cron check,
// runs until SIGINT/SIGTERM, then shuts down gracefully.
// One-shot mode (--once): runs a single listing check and exits 0 on
// success, 1 on failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/miguel-so/FE-ebay-api-cron/internal/config"
	"github.com/miguel-so/FE-ebay-api-cron/internal/ebay"
	"github.com/miguel-so/FE-ebay-api-cron/internal/mail"
	"github.com/miguel-so/FE-ebay-api-cron/internal/monitor"
	"github.com/miguel-so/FE-ebay-api-cron/internal/scheduler"
	"github.com/miguel-so/FE-ebay-api-cron/internal/server"
	"github.com/miguel-so/FE-ebay-api-cron/internal/store"
)

const version = "1.0.0"

func main() {
	once := flag.Bool("once", false, "run a single listing check and exit")
	criteriaFile := flag.String("criteria-file", "", "override the criteria JSON file path")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("[main] Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] Config error: %v", err)
	}
	if *criteriaFile != "" {
		cfg.CriteriaFile = *criteriaFile
	}

	st := store.New(cfg.CriteriaFile)
	client := ebay.New(cfg.EbayClientID, cfg.EbayClientSecret)
	mailer := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	workflow := monitor.NewWorkflow(st, client, mailer, cfg.AdminEmail)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		log.Println("[main] Running manual check…")
		if err := workflow.RunCheck(ctx); err != nil {
			log.Printf("[main] Manual run failed: %v", err)
			os.Exit(1)
		}
		log.Println("[main] Manual run completed")
		return
	}

	// ── Mail transport self-check ────────────────────────────────────────────
	if err := mailer.Verify(); err != nil {
		log.Printf("[main] Mail transport check failed (continuing): %v", err)
	} else {
		log.Println("[main] Mail transport verified ✓")
	}

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(workflow, cfg.RunImmediately)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[main] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	server.NewHandler(st, client).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[main] eBay listing monitor v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[main] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] Shutdown error: %v", err)
	}
	log.Println("[main] Stopped.")
}
