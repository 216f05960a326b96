package services

import (
	"context"
	"log"
	"os"

	"portfolio-api/internal/models"
	"portfolio-api/internal/utils"
)

// Geocoder turns GPS coordinates into a "City, Country" label.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, coordinates models.Coordinates) (string, error)
}

// MetadataService fills gaps in an upload from the image itself.
type MetadataService struct {
	geocoder Geocoder // optional
	logger   *log.Logger
}

func NewMetadataService(geocoder Geocoder) *MetadataService {
	return &MetadataService{
		geocoder: geocoder,
		logger:   log.New(os.Stdout, "[Metadata] ", log.LstdFlags),
	}
}

// Enrich returns req with empty technical fields taken from EXIF, a missing
// aspect ratio derived from the image dimensions and a missing location
// reverse-geocoded from GPS. Values supplied by the caller are never replaced.
func (m *MetadataService) Enrich(ctx context.Context, req models.UploadRequest, data []byte) models.UploadRequest {
	if req.AspectRatio == "" {
		if ratio, err := utils.DetectAspectRatio(data); err == nil {
			req.AspectRatio = string(ratio)
		} else {
			m.logger.Printf("Warning: no dimensions for %s: %v", req.FileName, err)
		}
	}

	extracted, err := utils.ExtractExif(data)
	if err != nil {
		m.logger.Printf("Warning: no EXIF in %s: %v", req.FileName, err)
		return req
	}

	d := extracted.Details
	req.Camera = firstNonEmpty(req.Camera, d.Camera)
	req.Lens = firstNonEmpty(req.Lens, d.Lens)
	req.Aperture = firstNonEmpty(req.Aperture, d.Aperture)
	req.ShutterSpeed = firstNonEmpty(req.ShutterSpeed, d.ShutterSpeed)
	req.ISO = firstNonEmpty(req.ISO, d.ISO)

	if req.Location == "" && m.geocoder != nil && !extracted.Coordinates.IsZero() {
		location, err := m.geocoder.ReverseGeocode(ctx, extracted.Coordinates)
		if err != nil {
			m.logger.Printf("Warning: reverse geocoding failed for %s: %v", req.FileName, err)
		} else {
			req.Location = location
		}
	}

	return req
}
