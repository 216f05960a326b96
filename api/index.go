package handler

import (
	"context"
	"log"
	"net/http"
	"sync"

	"portfolio-api/internal/config"
	"portfolio-api/internal/server"
)

var (
	handler     http.Handler
	mu          sync.Mutex
	initErr     error
	initialized bool
)

// initHandler builds the HTTP handler once and reuses it across invocations.
// A failed attempt is remembered so every request reports it without
// reconnecting to the backends.
//
// Clients are never closed; the serverless runtime reclaims them when the
// function instance is torn down.
func initHandler() error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return initErr
	}
	initialized = true

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		initErr = err
		return err
	}

	svcs, err := server.InitServices(context.Background(), cfg)
	if err != nil {
		log.Printf("Failed to initialize services: %v", err)
		initErr = err
		return err
	}

	handler = server.CreateHandler(svcs, cfg)
	initErr = nil

	log.Println("Handler initialized successfully")
	return nil
}

// Handler is the Vercel serverless function entry point
func Handler(w http.ResponseWriter, r *http.Request) {
	if err := initHandler(); err != nil {
		log.Printf("Handler initialization failed: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	handler.ServeHTTP(w, r)
}
