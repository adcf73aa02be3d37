package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutrijournal/internal/app"
	"nutrijournal/internal/catalog"
	"nutrijournal/internal/config"
	"nutrijournal/internal/database"
	"nutrijournal/internal/llm"
	"nutrijournal/internal/logging"
	"nutrijournal/internal/mealplan"
	"nutrijournal/internal/metrics"
	"nutrijournal/internal/suggest"
	"nutrijournal/internal/telegram"
)

func main() {
	logging.Setup()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Telegram config incomplete: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	catalogRepo := catalog.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	days, err := mealplan.NewRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize journal directory: %v", err)
	}

	service := app.NewService(days, catalogRepo, metricsStore)

	var planner *suggest.Planner
	if cfg.GeminiAPIKey != "" {
		gen, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		if closer, ok := gen.(llm.Closer); ok {
			defer closer.Close()
		}
		planner = suggest.NewPlanner(catalogRepo, gen, service)
	}

	bot, err := telegram.NewBot(cfg, service, planner, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
