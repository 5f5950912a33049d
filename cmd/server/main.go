package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/askmiles/miles-server/internal/api"
	"github.com/askmiles/miles-server/internal/config"
	"github.com/askmiles/miles-server/internal/database"
	"github.com/askmiles/miles-server/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Initialize(cfg.Data.DatabasePath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	dataService, err := services.NewCardDataService(cfg.Data.Dir, cfg.Fuzzy.MatchThreshold)
	if err != nil {
		log.Fatalf("Failed to load card data: %v", err)
	}

	userService := services.NewUserService(database.GetDB(), dataService)
	transferService := services.NewTransferService(dataService, userService)

	updater := services.NewDataUpdater(
		cfg.Data.APIURL,
		cfg.Data.Dir,
		dataService,
		time.Duration(cfg.Data.UpdateCheckHours)*time.Hour,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go updater.Start(ctx)

	router := api.SetupRouter(&cfg, dataService, userService, transferService)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
