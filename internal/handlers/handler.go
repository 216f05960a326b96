package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"portfolio-api/internal/services"
)

type Handler struct {
	photoService   *services.PhotoService
	cache          services.PageCache
	maxUploadBytes int64
}

func New(photoService *services.PhotoService, cache services.PageCache, maxUploadBytes int64) *Handler {
	return &Handler{
		photoService:   photoService,
		cache:          cache,
		maxUploadBytes: maxUploadBytes,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}
