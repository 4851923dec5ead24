package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planetfall/pkg/config"
	"planetfall/pkg/feed"
	"planetfall/pkg/world"
)

func initConfig() {
	cfg, err := config.Load(os.Getenv("PLANETFALL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	Config = cfg
}

func initWorld(ctx context.Context) {
	hub = feed.NewHub(ErrorLog)
	engine = world.New(worldStore, Config, InfoLog, ErrorLog, hub)
	if err := engine.SeedCatalog(ctx); err != nil {
		ErrorLog.Fatalf("Catalog seeding failed: %v", err)
	}
}

func main() {
	initConfig()
	setupLogging()
	initDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initWorld(ctx)

	InfoLog.Println("PLANETFALL BOOT SEQUENCE")
	InfoLog.Printf("DB: %s | Sweeper: %v every %v | Control: %v",
		Config.Database.Path, Config.Sweeper.Enabled, Config.Sweeper.Interval, Config.Server.CommandControl)

	if Config.Sweeper.Enabled {
		InfoLog.Println("Starting Game Loop...")
		go runGameLoop(ctx)
	}

	server := &http.Server{
		Addr:         Config.Server.Addr,
		Handler:      newRouter(),
		ReadTimeout:  Config.Server.ReadTimeout,
		WriteTimeout: Config.Server.WriteTimeout,
		IdleTimeout:  Config.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	InfoLog.Printf("Planetfall Listening on %s", Config.Server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		ErrorLog.Fatal(err)
	}
	db.Close()
	InfoLog.Println("Shutdown complete")
}
