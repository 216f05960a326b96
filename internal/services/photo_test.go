package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	apperrors "portfolio-api/internal/errors"
	"portfolio-api/internal/models"
)

type fakeBlobStore struct {
	mu   sync.Mutex
	puts []string
	err  error
}

func (f *fakeBlobStore) Put(_ context.Context, name, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.puts = append(f.puts, name)
	return fmt.Sprintf("https://blobs.example.com/%d-%s", len(f.puts), name), nil
}

type failingPhotoStore struct {
	PhotoStore
	createErr error
}

func (f *failingPhotoStore) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.PhotoStore.CreatePhoto(ctx, photo)
}

type recordingInvalidator struct {
	mu   sync.Mutex
	tags []string
	err  error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tag)
	return r.err
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tags)
}

func newTestStore(t *testing.T) *SQLitePhotoStore {
	t.Helper()
	store, err := OpenSQLitePhotoStore(t.TempDir() + "/photos.db")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func jpegUpload(fields models.UploadRequest) models.UploadRequest {
	fields.File = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	if fields.FileName == "" {
		fields.FileName = "sunset.jpg"
	}
	fields.ContentType = "image/jpeg"
	return fields
}

func TestCreatePhotoScenario(t *testing.T) {
	store := newTestStore(t)
	blobs := &fakeBlobStore{}
	inv := &recordingInvalidator{}
	svc := NewPhotoService(store, blobs, inv)

	photo, err := svc.CreatePhoto(context.Background(), jpegUpload(models.UploadRequest{
		Title:       "Sunset",
		Location:    "Bali",
		Description: "Evening light",
	}))
	if err != nil {
		t.Fatalf("CreatePhoto unexpected error: %v", err)
	}
	if photo.ID == "" {
		t.Fatal("expected generated id")
	}
	if photo.Title != "Sunset" || photo.Location != "Bali" || photo.Description != "Evening light" {
		t.Fatalf("unexpected text fields: %+v", photo)
	}
	if photo.TechnicalDetails != nil {
		t.Fatalf("expected no technical details, got %+v", photo.TechnicalDetails)
	}
	if !strings.HasPrefix(photo.URL, "https://blobs.example.com/") {
		t.Fatalf("expected blob url, got %q", photo.URL)
	}
	if photo.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be set by the store")
	}
	if inv.count() != 1 || inv.tags[0] != GalleryTag {
		t.Fatalf("expected one %q invalidation, got %v", GalleryTag, inv.tags)
	}
}

func TestCreatePhotoDefaultsAndDetails(t *testing.T) {
	svc := NewPhotoService(newTestStore(t), &fakeBlobStore{}, nil)

	photo, err := svc.CreatePhoto(context.Background(), jpegUpload(models.UploadRequest{
		Camera:      "FUJIFILM X-T50",
		ISO:         "400",
		AspectRatio: "portrait",
	}))
	if err != nil {
		t.Fatalf("CreatePhoto unexpected error: %v", err)
	}
	if photo.Title != "Untitled" || photo.Location != "Unknown" || photo.Description != "" {
		t.Fatalf("expected defaults, got title=%q location=%q description=%q", photo.Title, photo.Location, photo.Description)
	}
	want := models.TechnicalDetails{Camera: "FUJIFILM X-T50", ISO: "400", AspectRatio: models.AspectPortrait}
	if photo.TechnicalDetails == nil || *photo.TechnicalDetails != want {
		t.Fatalf("TechnicalDetails = %+v, want %+v", photo.TechnicalDetails, want)
	}
}

func TestCreatePhotoValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     models.UploadRequest
		wantMsg string
	}{
		{name: "missing file", req: models.UploadRequest{Title: "Sunset"}, wantMsg: "No file provided"},
		{name: "bad aspect ratio", req: jpegUpload(models.UploadRequest{AspectRatio: "panorama"}), wantMsg: "AspectRatio must be one of"},
		{name: "title too long", req: jpegUpload(models.UploadRequest{Title: strings.Repeat("a", 201)}), wantMsg: "Title must be at most 200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			blobs := &fakeBlobStore{}
			inv := &recordingInvalidator{}
			svc := NewPhotoService(store, blobs, inv)

			_, err := svc.CreatePhoto(context.Background(), tt.req)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
			if len(blobs.puts) != 0 {
				t.Fatalf("expected no blob writes, got %v", blobs.puts)
			}
			photos, err := store.ListPhotos(context.Background())
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(photos) != 0 {
				t.Fatalf("expected empty store, got %d photos", len(photos))
			}
			if inv.count() != 0 {
				t.Fatal("expected no invalidation")
			}
		})
	}
}

func TestCreatePhotoCollaboratorFailures(t *testing.T) {
	t.Run("blob write", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewPhotoService(store, &fakeBlobStore{err: errors.New("bucket unavailable")}, nil)

		_, err := svc.CreatePhoto(context.Background(), jpegUpload(models.UploadRequest{}))
		if !errors.Is(err, apperrors.ErrUpload) {
			t.Fatalf("expected upload error, got %v", err)
		}
		if !strings.Contains(err.Error(), "bucket unavailable") {
			t.Fatalf("expected underlying message, got %q", err.Error())
		}
		photos, _ := store.ListPhotos(context.Background())
		if len(photos) != 0 {
			t.Fatalf("expected no rows after blob failure, got %d", len(photos))
		}
	})

	t.Run("record write leaves blob", func(t *testing.T) {
		blobs := &fakeBlobStore{}
		store := &failingPhotoStore{PhotoStore: newTestStore(t), createErr: errors.New("disk full")}
		inv := &recordingInvalidator{}
		svc := NewPhotoService(store, blobs, inv)

		_, err := svc.CreatePhoto(context.Background(), jpegUpload(models.UploadRequest{}))
		if !errors.Is(err, apperrors.ErrUpload) || !strings.Contains(err.Error(), "disk full") {
			t.Fatalf("expected upload error carrying cause, got %v", err)
		}
		if len(blobs.puts) != 1 {
			t.Fatalf("expected the blob write to have happened once, got %d", len(blobs.puts))
		}
		if inv.count() != 0 {
			t.Fatal("expected no invalidation after failed create")
		}
	})
}

func TestCreatePhotoIgnoresInvalidationFailure(t *testing.T) {
	inv := &recordingInvalidator{err: errors.New("redis down")}
	svc := NewPhotoService(newTestStore(t), &fakeBlobStore{}, inv)

	if _, err := svc.CreatePhoto(context.Background(), jpegUpload(models.UploadRequest{})); err != nil {
		t.Fatalf("expected create to succeed despite invalidation failure, got %v", err)
	}
	if inv.count() != 1 {
		t.Fatalf("expected one invalidation attempt, got %d", inv.count())
	}
}

func TestDeletePhoto(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	inv := &recordingInvalidator{}
	svc := NewPhotoService(store, &fakeBlobStore{}, inv)

	first, err := svc.CreatePhoto(ctx, jpegUpload(models.UploadRequest{Title: "first"}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.CreatePhoto(ctx, jpegUpload(models.UploadRequest{Title: "second"}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected unique ids, both %q", first.ID)
	}

	if err := svc.DeletePhoto(ctx, first.ID); err != nil {
		t.Fatalf("DeletePhoto unexpected error: %v", err)
	}
	photos, err := svc.ListPhotos(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(photos) != 1 || photos[0].ID != second.ID {
		t.Fatalf("expected only %s to remain, got %+v", second.ID, photos)
	}
	if inv.count() != 3 {
		t.Fatalf("expected invalidation after each mutation, got %d", inv.count())
	}

	err = svc.DeletePhoto(ctx, "does-not-exist")
	if err == nil {
		t.Fatal("expected error deleting unknown id")
	}
	if !errors.Is(err, apperrors.ErrStore) || !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected store error wrapping not found, got %v", err)
	}
	photos, _ = svc.ListPhotos(ctx)
	if len(photos) != 1 {
		t.Fatalf("expected listing unchanged, got %d photos", len(photos))
	}
	if inv.count() != 3 {
		t.Fatal("expected no invalidation after failed delete")
	}

	if err := svc.DeletePhoto(ctx, "  "); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}
}
