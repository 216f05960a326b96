package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "portfolio-api/internal/errors"
	"portfolio-api/internal/models"
	"portfolio-api/internal/utils"
)

// GalleryTag names every cached rendering of the photo listing.
const GalleryTag = "gallery"

const (
	defaultTitle    = "Untitled"
	defaultLocation = "Unknown"
)

// PhotoStore persists photo records.
type PhotoStore interface {
	// CreatePhoto assigns ID and CreatedAt on the passed photo.
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	// DeletePhoto returns errors.ErrNotFound when no row matches id.
	DeletePhoto(ctx context.Context, id string) error
	// ListPhotos returns every photo, newest first.
	ListPhotos(ctx context.Context) ([]*models.Photo, error)
}

// BlobStore stores image bytes under a unique name and returns a public URL.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// PageInvalidator drops cached renderings associated with a tag.
type PageInvalidator interface {
	Invalidate(ctx context.Context, tag string) error
}

type PhotoService struct {
	store       PhotoStore
	blobs       BlobStore
	invalidator PageInvalidator
	enricher    *MetadataService // nil when EXIF autofill is disabled
	convertHEIC bool
	validate    *validator.Validate
	logger      *log.Logger
}

type PhotoServiceOption func(*PhotoService)

// WithMetadataEnricher fills missing technical details from EXIF before storing.
func WithMetadataEnricher(m *MetadataService) PhotoServiceOption {
	return func(s *PhotoService) { s.enricher = m }
}

// WithHEICConversion stores HEIC/HEIF uploads as JPEG.
func WithHEICConversion(enabled bool) PhotoServiceOption {
	return func(s *PhotoService) { s.convertHEIC = enabled }
}

func NewPhotoService(store PhotoStore, blobs BlobStore, invalidator PageInvalidator, opts ...PhotoServiceOption) *PhotoService {
	s := &PhotoService{
		store:       store,
		blobs:       blobs,
		invalidator: invalidator,
		validate:    validator.New(),
		logger:      log.New(os.Stdout, "[Photos] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePhoto stores the uploaded bytes, then writes the photo record.
// A record write failure leaves the blob behind; nothing is rolled back.
func (s *PhotoService) CreatePhoto(ctx context.Context, req models.UploadRequest) (*models.Photo, error) {
	if req.File == nil {
		return nil, apperrors.Validation("No file provided")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(describeValidation(err))
	}

	name, contentType, data := req.FileName, req.ContentType, req.File
	if name == "" {
		name = "photo"
	}
	if s.convertHEIC {
		name, contentType, data = utils.ConvertIfHeic(name, contentType, data)
	}

	if s.enricher != nil {
		req = s.enricher.Enrich(ctx, req, data)
	}

	url, err := s.blobs.Put(ctx, name, contentType, data)
	if err != nil {
		return nil, apperrors.Upload(fmt.Errorf("failed to store image: %w", err))
	}

	photo := &models.Photo{
		URL:              url,
		Title:            orDefault(req.Title, defaultTitle),
		Location:         orDefault(req.Location, defaultLocation),
		Description:      req.Description,
		TechnicalDetails: req.TechnicalDetails(),
	}
	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		s.logger.Printf("Record write failed, blob %s is orphaned: %v", url, err)
		return nil, apperrors.Upload(fmt.Errorf("failed to save photo: %w", err))
	}

	s.logger.Printf("Created photo %s (%s)", photo.ID, url)
	s.invalidate(ctx)

	return photo, nil
}

// DeletePhoto removes the record only; the stored image is left in place.
func (s *PhotoService) DeletePhoto(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Validation("Photo ID is required")
	}

	if err := s.store.DeletePhoto(ctx, id); err != nil {
		return apperrors.Store(fmt.Errorf("failed to delete photo %s: %w", id, err))
	}

	s.logger.Printf("Deleted photo %s", id)
	s.invalidate(ctx)

	return nil
}

// ListPhotos returns the full listing, newest first.
func (s *PhotoService) ListPhotos(ctx context.Context) ([]*models.Photo, error) {
	photos, err := s.store.ListPhotos(ctx)
	if err != nil {
		return nil, apperrors.Store(fmt.Errorf("failed to list photos: %w", err))
	}
	return photos, nil
}

func (s *PhotoService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, GalleryTag); err != nil {
		s.logger.Printf("Failed to invalidate %q cache: %v", GalleryTag, err)
	}
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
