package handlers

import (
	"log"
	"net/http"

	"portfolio-api/internal/models"
	"portfolio-api/internal/services"
	"portfolio-api/internal/views"
)

// HandleGallery renders the gallery page. The rendering is cached under the
// gallery tag until the next create or delete. A listing failure renders an
// empty gallery rather than an error page.
func (h *Handler) HandleGallery(w http.ResponseWriter, r *http.Request) {
	key := services.CacheKey(services.GalleryTag, "html")
	if entry, ok := h.cachedEntry(r, key); ok {
		w.Header().Set("Content-Type", entry.ContentType)
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(entry.Data)
		return
	}

	gen, cacheable := h.cacheGeneration(r)
	photos, err := h.photoService.ListPhotos(r.Context())
	if err != nil {
		log.Printf("[Gallery] Error fetching photos: %v", err)
		photos = []*models.Photo{}
		cacheable = false
	}

	page, err := views.RenderGallery(photos)
	if err != nil {
		log.Printf("[Gallery] Failed to render page: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if cacheable {
		h.storeEntry(r, key, gen, page, "text/html; charset=utf-8")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(page)
}

func (h *Handler) cachedEntry(r *http.Request, key string) (*models.CacheEntry, bool) {
	if h.cache == nil {
		return nil, false
	}
	return h.cache.Get(r.Context(), key)
}

// cacheGeneration must be read before listing photos; a rendering is only
// cacheable when the gallery generation is known.
func (h *Handler) cacheGeneration(r *http.Request) (uint64, bool) {
	if h.cache == nil {
		return 0, false
	}
	gen, err := h.cache.Generation(r.Context(), services.GalleryTag)
	if err != nil {
		log.Printf("[Cache] %v", err)
		return 0, false
	}
	return gen, true
}

func (h *Handler) storeEntry(r *http.Request, key string, gen uint64, data []byte, contentType string) {
	if h.cache == nil {
		return
	}
	h.cache.Set(r.Context(), key, gen, data, contentType)
}
