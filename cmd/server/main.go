package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/devicesales/api/internal/config"
	"github.com/devicesales/api/internal/database"
	"github.com/devicesales/api/internal/handler"
	"github.com/devicesales/api/internal/router"
	"github.com/devicesales/api/internal/service"
	"github.com/devicesales/api/internal/store/sqlite"
	"github.com/devicesales/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reminderInterval is how often the reminder badge is re-pushed so it follows
// the calendar day even when nothing changes.
const reminderInterval = 15 * time.Minute

func main() {
	cfg := config.Load()
	loc := cfg.Location()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	svc := service.NewSaleService(store, loc)

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pushReminders(ctx, hub, svc, handler.Options{Location: loc, Locale: cfg.Locale()})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router.New(cfg, svc, hub),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (store=%s, timezone=%s)", cfg.Port, cfg.StoreDriver, loc)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// openStore returns the configured ledger store and its close function.
func openStore(cfg *config.Config) (service.SaleStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Using SQLite store at %s", cfg.SQLitePath)
		return s, func() { s.Close() }, nil

	default:
		ctx := context.Background()
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		log.Println("Connected to database")
		return database.New(pool), pool.Close, nil
	}
}

// pushReminders broadcasts the reminder snapshot on a fixed interval until ctx ends.
func pushReminders(ctx context.Context, hub *ws.Hub, svc *service.SaleService, opts handler.Options) {
	ticker := time.NewTicker(reminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if hub.ClientCount() == 0 {
				continue
			}
			ev, err := handler.ReminderEvent(ctx, svc, opts)
			if err != nil {
				log.Printf("ERROR: build reminders event: %v", err)
				continue
			}
			hub.Broadcast(ev)
		}
	}
}
