package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"

	BlobLocal = "local"
	BlobGCS   = "gcs"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Port                    string
	AllowedOrigins          []string
	APIKeys                 []string // Optional; mutating routes stay open when empty
	RateLimitRPS            float64  // 0 disables rate limiting
	RateLimitBurst          int
	StoreBackend            string
	SQLitePath              string
	DatabaseURL             string // Postgres DSN
	FirebaseProjectID       string
	FirebaseBucketName      string
	FirebaseCredentialsPath string
	FirebaseCredentialsJSON string // For Vercel: raw JSON string
	FirestoreCollection     string
	BlobBackend             string
	LocalBlobDir            string
	PublicBlobBaseURL       string // URL prefix for blobs written by the local backend
	CacheBackend            string
	RedisURL                string
	CacheTTL                time.Duration
	CacheCleanupInterval    time.Duration
	MaxUploadMB             int
	ConvertHEIC             bool // Store HEIC/HEIF uploads as JPEG
	AutofillFromEXIF        bool // Fill missing technical details and location from EXIF
	IsVercel                bool // Detected via VERCEL env var
}

// Load reads configuration from environment variables and .env file.
// It loads the .env file if present, then populates the Config struct.
// Returns an error if required configuration is missing.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		AllowedOrigins:          getList("ALLOWED_ORIGINS", []string{"*"}),
		APIKeys:                 getList("API_KEYS", []string{}),
		RateLimitRPS:            getFloatEnv("RATE_LIMIT_RPS", 0),
		RateLimitBurst:          getIntEnv("RATE_LIMIT_BURST", 20),
		StoreBackend:            strings.ToLower(getEnv("STORE_BACKEND", StoreSQLite)),
		SQLitePath:              getEnv("SQLITE_PATH", "portfolio.db"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseBucketName:      getEnv("FIREBASE_BUCKET_NAME", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "firebase-service-account.json"),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		FirestoreCollection:     getEnv("FIRESTORE_COLLECTION", "photos"),
		BlobBackend:             strings.ToLower(getEnv("BLOB_BACKEND", BlobLocal)),
		LocalBlobDir:            getEnv("LOCAL_BLOB_DIR", "uploads"),
		PublicBlobBaseURL:       strings.TrimRight(getEnv("PUBLIC_BLOB_BASE_URL", "/blobs"), "/"),
		CacheBackend:            strings.ToLower(getEnv("CACHE_BACKEND", CacheMemory)),
		RedisURL:                getEnv("REDIS_URL", ""),
		CacheTTL:                getDurationEnv("CACHE_TTL", 15*time.Minute),
		CacheCleanupInterval:    getDurationEnv("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		MaxUploadMB:             getIntEnv("MAX_UPLOAD_MB", 20),
		ConvertHEIC:             getBoolEnv("CONVERT_HEIC", false),
		AutofillFromEXIF:        getBoolEnv("AUTOFILL_FROM_EXIF", false),
		IsVercel:                getEnv("VERCEL", "") != "",
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the fields required by the selected backends are set.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreFirestore:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore store")
		}
		if c.FirestoreCollection == "" {
			return fmt.Errorf("FIRESTORE_COLLECTION is required")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want sqlite, firestore or postgres)", c.StoreBackend)
	}

	switch c.BlobBackend {
	case BlobLocal:
		if c.LocalBlobDir == "" {
			return fmt.Errorf("LOCAL_BLOB_DIR is required for the local blob store")
		}
	case BlobGCS:
		if c.FirebaseBucketName == "" {
			return fmt.Errorf("FIREBASE_BUCKET_NAME is required for the gcs blob store")
		}
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q (want local or gcs)", c.BlobBackend)
	}

	if c.UsesGoogleCloud() && c.FirebaseCredentialsJSON == "" && c.FirebaseCredentialsPath == "" {
		return fmt.Errorf("either FIREBASE_CREDENTIALS_JSON or FIREBASE_CREDENTIALS_PATH must be set")
	}

	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q (want memory or redis)", c.CacheBackend)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.CacheCleanupInterval <= 0 {
		return fmt.Errorf("CACHE_CLEANUP_INTERVAL must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS cannot be negative")
	}
	return nil
}

// UsesGoogleCloud reports whether any backend needs Firebase credentials.
func (c *Config) UsesGoogleCloud() bool {
	return c.StoreBackend == StoreFirestore || c.BlobBackend == BlobGCS
}

// MaxUploadBytes is the request body cap for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// ClientConfig configures the portfolioctl API client.
type ClientConfig struct {
	APIURL      string
	APIKey      string
	HTTPTimeout time.Duration
}

// LoadClient reads the client settings from the environment and .env file.
func LoadClient() *ClientConfig {
	loadDotEnv()
	return &ClientConfig{
		APIURL:      strings.TrimRight(getEnv("PORTFOLIO_API_URL", "http://localhost:8080"), "/"),
		APIKey:      getEnv("PORTFOLIO_API_KEY", ""),
		HTTPTimeout: getDurationEnv("PORTFOLIO_HTTP_TIMEOUT", 30*time.Second),
	}
}

// Load .env file if it exists (ignore error if file doesn't exist)
func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

// Retrieves an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// Retrieves a duration from environment variable or returns a default value.
// It supports both time.Duration format (e.g., "10m", "12h") and integer minutes.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

// Retrieves a comma-separated list from environment variable or returns a default value.
// Blank entries are dropped.
func getList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return defaultValue
}

// Retrieves a boolean from environment variable or returns a default value.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
