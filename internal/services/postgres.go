package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"portfolio-api/internal/errors"
	"portfolio-api/internal/models"
)

// photoRecord is the gorm row for a photo. Technical details live in a
// single jsonb column. Seq is a bigserial that breaks created_at ties in
// insertion order.
type photoRecord struct {
	ID               string                   `gorm:"primaryKey;type:uuid"`
	ImageURL         string                   `gorm:"column:image_url;not null"`
	Title            string                   `gorm:"not null"`
	Location         string                   `gorm:"not null"`
	Description      string                   `gorm:"not null;default:''"`
	TechnicalDetails *models.TechnicalDetails `gorm:"type:jsonb;serializer:json"`
	CreatedAt        time.Time                `gorm:"not null;index"`
	Seq              int64                    `gorm:"autoIncrement;not null"`
}

func (photoRecord) TableName() string {
	return "photos"
}

func (r photoRecord) toModel() *models.Photo {
	photo := &models.Photo{
		ID:          r.ID,
		URL:         r.ImageURL,
		Title:       r.Title,
		Location:    r.Location,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
	if !r.TechnicalDetails.IsEmpty() {
		photo.TechnicalDetails = r.TechnicalDetails
	}
	return photo
}

type PostgresPhotoStore struct {
	db *gorm.DB
}

// OpenPostgresPhotoStore connects with dsn and migrates the photos table.
func OpenPostgresPhotoStore(dsn string) (*PostgresPhotoStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&photoRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run auto migrations: %w", err)
	}

	return &PostgresPhotoStore{db: db}, nil
}

func (s *PostgresPhotoStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresPhotoStore) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	record := photoRecord{
		ID:          uuid.NewString(),
		ImageURL:    photo.URL,
		Title:       photo.Title,
		Location:    photo.Location,
		Description: photo.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if !photo.TechnicalDetails.IsEmpty() {
		record.TechnicalDetails = photo.TechnicalDetails
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert photo: %w", err)
	}

	photo.ID = record.ID
	photo.CreatedAt = record.CreatedAt
	return nil
}

func (s *PostgresPhotoStore) DeletePhoto(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		// Non-uuid ids cannot match a row.
		return fmt.Errorf("photo %s: %w", id, errors.ErrNotFound)
	}

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&photoRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete photo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("photo %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

func (s *PostgresPhotoStore) ListPhotos(ctx context.Context) ([]*models.Photo, error) {
	var records []photoRecord
	if err := listQuery(s.db.WithContext(ctx)).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}

	photos := make([]*models.Photo, 0, len(records))
	for _, r := range records {
		photos = append(photos, r.toModel())
	}
	return photos, nil
}

// listQuery orders newest first; photos created in the same instant come
// back most recently inserted first.
func listQuery(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, seq DESC")
}
