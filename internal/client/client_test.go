package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"portfolio-api/internal/handlers"
	"portfolio-api/internal/middleware"
	"portfolio-api/internal/models"
	"portfolio-api/internal/router"
	"portfolio-api/internal/services"
)

func newTestAPI(t *testing.T, apiKeys ...string) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	store, err := services.OpenSQLitePhotoStore(filepath.Join(dir, "photos.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	blobs, err := services.NewLocalBlobStore(filepath.Join(dir, "blobs"), "/blobs")
	if err != nil {
		t.Fatalf("open blobs: %v", err)
	}
	cache := services.NewCacheService(time.Minute, time.Minute)
	t.Cleanup(cache.Close)

	h := handlers.New(services.NewPhotoService(store, blobs, cache), cache, 1<<20)
	srv := httptest.NewServer(middleware.APIKeyAuth(apiKeys)(router.Setup(h, blobs.Root())))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newTestAPI(t)
	c := New(srv.URL, "", time.Second)

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	photo, err := c.UploadPhoto(ctx, models.UploadRequest{
		File:     []byte{0xff, 0xd8, 0xff},
		FileName: "Sunset Beach.JPG",
		Title:    "Sunset",
		Location: "Bali",
		ISO:      "200",
	})
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	if photo.Title != "Sunset" || photo.Location != "Bali" {
		t.Fatalf("unexpected photo %+v", photo)
	}
	if photo.TechnicalDetails == nil || photo.TechnicalDetails.ISO != "200" {
		t.Fatalf("expected iso to round trip, got %+v", photo.TechnicalDetails)
	}
	if !strings.HasSuffix(photo.URL, ".jpg") {
		t.Fatalf("expected lowercase jpg blob url, got %q", photo.URL)
	}

	photos, err := c.ListPhotos(ctx)
	if err != nil {
		t.Fatalf("ListPhotos: %v", err)
	}
	if len(photos) != 1 || photos[0].ID != photo.ID {
		t.Fatalf("expected uploaded photo in listing, got %+v", photos)
	}

	if err := c.DeletePhoto(ctx, photo.ID); err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
	photos, err = c.ListPhotos(ctx)
	if err != nil {
		t.Fatalf("ListPhotos: %v", err)
	}
	if len(photos) != 0 {
		t.Fatalf("expected empty listing, got %d", len(photos))
	}
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	srv := newTestAPI(t)
	c := New(srv.URL, "", time.Second)

	err := c.DeletePhoto(ctx, "does-not-exist")
	if !IsStatus(err, http.StatusInternalServerError) {
		t.Fatalf("expected 500 APIError, got %v", err)
	}
	if !strings.Contains(err.Error(), "does-not-exist") {
		t.Fatalf("expected server message in error, got %q", err.Error())
	}

	if _, err := c.UploadPhoto(ctx, models.UploadRequest{Title: "no file"}); err == nil {
		t.Fatal("expected error uploading without a file")
	}

	_, err = c.UploadPhoto(ctx, models.UploadRequest{File: []byte{1}, FileName: "a.jpg", AspectRatio: "wide"})
	if !IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
}

func TestClientAPIKey(t *testing.T) {
	ctx := context.Background()
	srv := newTestAPI(t, "secret")
	upload := models.UploadRequest{File: []byte{0xff, 0xd8}, FileName: "a.jpg"}

	anonymous := New(srv.URL, "", time.Second)
	if _, err := anonymous.ListPhotos(ctx); err != nil {
		t.Fatalf("listing should stay public, got %v", err)
	}
	_, err := anonymous.UploadPhoto(ctx, upload)
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing API key") {
		t.Fatalf("expected plain text body in error, got %q", err.Error())
	}

	authed := New(srv.URL, "secret", time.Second)
	if _, err := authed.UploadPhoto(ctx, upload); err != nil {
		t.Fatalf("UploadPhoto with key: %v", err)
	}
}

func TestEncodeUploadContentType(t *testing.T) {
	tests := []struct {
		name        string
		upload      models.UploadRequest
		wantPartCT  string
		wantFileArg string
	}{
		{name: "from extension", upload: models.UploadRequest{File: []byte{1}, FileName: "dir/photo.png"}, wantPartCT: "image/png", wantFileArg: `filename="photo.png"`},
		{name: "explicit", upload: models.UploadRequest{File: []byte{1}, FileName: "x.bin", ContentType: "image/heic"}, wantPartCT: "image/heic", wantFileArg: `filename="x.bin"`},
		{name: "unknown", upload: models.UploadRequest{File: []byte{1}}, wantPartCT: "application/octet-stream", wantFileArg: `filename="photo"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType, err := encodeUpload(tt.upload)
			if err != nil {
				t.Fatalf("encodeUpload: %v", err)
			}
			if !strings.HasPrefix(contentType, "multipart/form-data; boundary=") {
				t.Fatalf("unexpected content type %q", contentType)
			}
			raw := readAll(t, body)
			if !strings.Contains(raw, "Content-Type: "+tt.wantPartCT) {
				t.Errorf("part content type %q missing from body", tt.wantPartCT)
			}
			if !strings.Contains(raw, tt.wantFileArg) {
				t.Errorf("%s missing from body", tt.wantFileArg)
			}
		})
	}
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}
