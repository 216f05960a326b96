package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	apperrors "portfolio-api/internal/errors"
	"portfolio-api/internal/models"
	"portfolio-api/internal/services"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// HandleUpload creates a photo from a multipart form.
//
//	POST /api/photos/upload
//	200 {success:true, photo}
//	400 {success:false, error} when the file is missing or a field is invalid
//	500 {success:false, error} on storage failures
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	req, err := h.parseUpload(r)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, models.UploadResponse{Success: false, Error: err.Error()})
			return
		}
		log.Printf("[Upload] Failed to read form: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.UploadResponse{Success: false, Error: err.Error()})
		return
	}

	photo, err := h.photoService.CreatePhoto(r.Context(), req)
	if err != nil {
		log.Printf("[Upload] Error uploading photo: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrValidation) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, models.UploadResponse{Success: false, Error: err.Error()})
		return
	}

	log.Printf("[Upload] Created photo %s (%d bytes) in %v", photo.ID, len(req.File), time.Since(start))
	writeJSON(w, http.StatusOK, models.UploadResponse{Success: true, Photo: photo})
}

// parseUpload maps the multipart form onto an UploadRequest. A request
// without a file part yields a validation error before anything is stored.
func (h *Handler) parseUpload(r *http.Request) (models.UploadRequest, error) {
	var req models.UploadRequest

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) || errors.Is(err, io.EOF) {
			return req, apperrors.Validation("No file provided")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, apperrors.Validation("File exceeds the upload size limit")
		}
		return req, err
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, apperrors.Validation("No file provided")
		}
		return req, err
	}
	defer file.Close()

	data, err := readFile(file)
	if err != nil {
		return req, err
	}

	req = models.UploadRequest{
		File:         data,
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Title:        formValue(r, "title"),
		Location:     formValue(r, "location"),
		Description:  formValue(r, "description"),
		Camera:       formValue(r, "camera"),
		Lens:         formValue(r, "lens"),
		Aperture:     formValue(r, "aperture"),
		ShutterSpeed: formValue(r, "shutterSpeed"),
		ISO:          formValue(r, "iso"),
		AspectRatio:  formValue(r, "aspectRatio"),
	}
	return req, nil
}

func readFile(file multipart.File) ([]byte, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func formValue(r *http.Request, key string) string {
	if values := r.MultipartForm.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// HandleDelete removes the photo named by the {id} path segment.
//
//	DELETE /api/photos/{id}
//	200 {success:true, message}
//	400 {success:false, error} when the id is missing
//	500 {success:false, error} otherwise, including unknown ids
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, models.DeleteResponse{Success: false, Error: "Photo ID is required"})
		return
	}

	if err := h.photoService.DeletePhoto(r.Context(), id); err != nil {
		log.Printf("[Delete] Error deleting photo %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, models.DeleteResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.DeleteResponse{Success: true, Message: "Photo deleted successfully"})
}

// HandleList returns the full listing, newest first. Clients resynchronize
// through this endpoint after optimistic updates.
//
//	GET /api/photos
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	key := services.CacheKey(services.GalleryTag, "json")
	if entry, ok := h.cachedEntry(r, key); ok {
		w.Header().Set("Content-Type", entry.ContentType)
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(entry.Data)
		return
	}

	gen, cacheable := h.cacheGeneration(r)
	photos, err := h.photoService.ListPhotos(r.Context())
	if err != nil {
		log.Printf("[Photos] Failed to list photos: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ListResponse{Success: false, Photos: []*models.Photo{}, Error: err.Error()})
		return
	}

	body, err := json.Marshal(models.ListResponse{Success: true, Photos: photos})
	if err != nil {
		log.Printf("[Photos] Failed to encode listing: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ListResponse{Success: false, Photos: []*models.Photo{}, Error: err.Error()})
		return
	}
	body = append(body, '\n')
	if cacheable {
		h.storeEntry(r, key, gen, body, "application/json")
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(body)
}
