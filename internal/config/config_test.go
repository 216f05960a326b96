package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "STORE_BACKEND", "BLOB_BACKEND", "CACHE_BACKEND", "API_KEYS", "RATE_LIMIT_RPS", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StoreBackend != StoreSQLite || cfg.BlobBackend != BlobLocal || cfg.CacheBackend != CacheMemory {
		t.Errorf("unexpected backends: %s/%s/%s", cfg.StoreBackend, cfg.BlobBackend, cfg.CacheBackend)
	}
	if len(cfg.APIKeys) != 0 {
		t.Errorf("expected no API keys by default, got %v", cfg.APIKeys)
	}
	if cfg.RateLimitRPS != 0 {
		t.Errorf("expected rate limiting disabled by default, got %v", cfg.RateLimitRPS)
	}
	if cfg.MaxUploadBytes() != 20<<20 {
		t.Errorf("MaxUploadBytes() = %d", cfg.MaxUploadBytes())
	}
	if cfg.UsesGoogleCloud() {
		t.Error("default config should not need Google Cloud")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/portfolio")
	t.Setenv("API_KEYS", "one, two,,")
	t.Setenv("CACHE_TTL", "5")
	t.Setenv("PUBLIC_BLOB_BASE_URL", "https://cdn.example.com/blobs/")
	t.Setenv("AUTOFILL_FROM_EXIF", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.StoreBackend != StorePostgres {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if len(cfg.APIKeys) != 2 || cfg.APIKeys[0] != "one" || cfg.APIKeys[1] != "two" {
		t.Errorf("APIKeys = %#v", cfg.APIKeys)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.PublicBlobBaseURL != "https://cdn.example.com/blobs" {
		t.Errorf("PublicBlobBaseURL = %q", cfg.PublicBlobBaseURL)
	}
	if !cfg.AutofillFromEXIF {
		t.Error("expected AutofillFromEXIF to be true")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreBackend:            StoreSQLite,
			SQLitePath:              "portfolio.db",
			BlobBackend:             BlobLocal,
			LocalBlobDir:            "uploads",
			CacheBackend:            CacheMemory,
			CacheTTL:                time.Minute,
			CacheCleanupInterval:    time.Minute,
			MaxUploadMB:             10,
			FirestoreCollection:     "photos",
			FirebaseCredentialsPath: "creds.json",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.StoreBackend = "mongo" }, wantErr: "STORE_BACKEND"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.StoreBackend = StorePostgres }, wantErr: "DATABASE_URL"},
		{name: "firestore without project", mutate: func(c *Config) { c.StoreBackend = StoreFirestore }, wantErr: "FIREBASE_PROJECT_ID"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.BlobBackend = BlobGCS }, wantErr: "FIREBASE_BUCKET_NAME"},
		{
			name: "gcs without credentials",
			mutate: func(c *Config) {
				c.BlobBackend = BlobGCS
				c.FirebaseBucketName = "bucket"
				c.FirebaseCredentialsPath = ""
			},
			wantErr: "FIREBASE_CREDENTIALS",
		},
		{name: "redis without url", mutate: func(c *Config) { c.CacheBackend = CacheRedis }, wantErr: "REDIS_URL"},
		{name: "zero ttl", mutate: func(c *Config) { c.CacheTTL = 0 }, wantErr: "CACHE_TTL"},
		{name: "zero upload size", mutate: func(c *Config) { c.MaxUploadMB = 0 }, wantErr: "MAX_UPLOAD_MB"},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimitRPS = -1 }, wantErr: "RATE_LIMIT_RPS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadClient(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORTFOLIO_API_URL", "http://photos.local:9000/")
	t.Setenv("PORTFOLIO_API_KEY", "secret")
	t.Setenv("PORTFOLIO_HTTP_TIMEOUT", "")

	cfg := LoadClient()
	if cfg.APIURL != "http://photos.local:9000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
}
