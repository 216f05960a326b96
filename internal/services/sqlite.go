package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"portfolio-api/internal/errors"
	"portfolio-api/internal/models"
)

const (
	sqliteBusyTimeoutMS = 5000
	sqliteTimeLayout    = time.RFC3339Nano
)

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS photos (
  id TEXT PRIMARY KEY,
  image_url TEXT NOT NULL,
  title TEXT NOT NULL,
  location TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  technical_details TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_photos_created_at ON photos(created_at);`,
}

// SQLitePhotoStore keeps photos in a single-file SQLite database. It is the
// default store for local runs and tests.
type SQLitePhotoStore struct {
	db *sql.DB
}

// OpenSQLitePhotoStore opens (or creates) the database at path and applies
// pending migrations.
func OpenSQLitePhotoStore(path string) (*SQLitePhotoStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := (&url.URL{Scheme: "file", Path: path}).String()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", sqliteBusyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	// A single connection serializes writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLitePhotoStore{db: db}, nil
}

func migrateSQLite(db *sql.DB) error {
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)"); err != nil {
		return err
	}
	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return err
	}
	for i := current; i < len(sqliteMigrations); i++ {
		if _, err := db.Exec(sqliteMigrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLitePhotoStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLitePhotoStore) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	var details sql.NullString
	if !photo.TechnicalDetails.IsEmpty() {
		raw, err := json.Marshal(photo.TechnicalDetails)
		if err != nil {
			return fmt.Errorf("failed to encode technical details: %w", err)
		}
		details = sql.NullString{String: string(raw), Valid: true}
	}

	id := uuid.NewString()
	createdAt := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO photos (id, image_url, title, location, description, technical_details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, photo.URL, photo.Title, photo.Location, photo.Description, details, createdAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert photo: %w", err)
	}

	photo.ID = id
	photo.CreatedAt = createdAt
	return nil
}

func (s *SQLitePhotoStore) DeletePhoto(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM photos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("photo %s: %w", id, errors.ErrNotFound)
	}
	return nil
}

// ListPhotos orders by created_at, then rowid so photos created within the
// same instant still list newest first.
func (s *SQLitePhotoStore) ListPhotos(ctx context.Context) ([]*models.Photo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, image_url, title, location, description, technical_details, created_at
		 FROM photos ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	photos := []*models.Photo{}
	for rows.Next() {
		var (
			photo     models.Photo
			details   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&photo.ID, &photo.URL, &photo.Title, &photo.Location, &photo.Description, &details, &createdAt); err != nil {
			return nil, err
		}
		if details.Valid && details.String != "" {
			var td models.TechnicalDetails
			if err := json.Unmarshal([]byte(details.String), &td); err != nil {
				return nil, fmt.Errorf("photo %s has malformed technical details: %w", photo.ID, err)
			}
			if !td.IsEmpty() {
				photo.TechnicalDetails = &td
			}
		}
		if photo.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("photo %s has malformed created_at: %w", photo.ID, err)
		}
		photos = append(photos, &photo)
	}
	return photos, rows.Err()
}
