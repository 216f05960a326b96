package router

import (
	"net/http"

	"portfolio-api/internal/handlers"
)

// Setup configures and returns the HTTP router with all application routes.
// blobDir is served under /blobs/ when photos are stored on local disk;
// pass "" when another blob backend is in use.
func Setup(h *handlers.Handler, blobDir string) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Gallery page
	mux.HandleFunc("GET /{$}", h.HandleGallery)

	// Photo endpoints
	mux.HandleFunc("GET /api/photos", h.HandleList)
	mux.HandleFunc("POST /api/photos/upload", h.HandleUpload)
	mux.HandleFunc("DELETE /api/photos/{id}", h.HandleDelete)
	mux.HandleFunc("DELETE /api/photos/{$}", h.HandleDelete)

	if blobDir != "" {
		mux.Handle("GET /blobs/", http.StripPrefix("/blobs/", http.FileServer(http.Dir(blobDir))))
	}

	return mux
}
