package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"portfolio-api/internal/config"
	"portfolio-api/internal/handlers"
	"portfolio-api/internal/middleware"
	"portfolio-api/internal/router"
	"portfolio-api/internal/services"
)

// Services holds all initialized services for the application
type Services struct {
	Photos *services.PhotoService
	Cache  services.PageCache

	// BlobDir is the directory served under /blobs/, empty unless the
	// local blob backend is active.
	BlobDir string

	closers []func() error
}

// Close releases every client opened by InitServices, in reverse order.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// InitServices initializes all application services based on configuration.
// Returns the initialized services or an error if initialization fails; on
// failure anything opened so far is closed again.
func InitServices(ctx context.Context, cfg *config.Config) (svcs *Services, err error) {
	svcs = &Services{}
	defer func() {
		if err != nil {
			_ = svcs.Close()
			svcs = nil
		}
	}()

	var gcpOpts []option.ClientOption
	if cfg.UsesGoogleCloud() {
		gcpOpts = googleClientOptions(cfg)
	}

	store, err := openPhotoStore(ctx, cfg, svcs, gcpOpts)
	if err != nil {
		return nil, err
	}

	blobs, err := openBlobStore(ctx, cfg, svcs, gcpOpts)
	if err != nil {
		return nil, err
	}

	cache, err := openPageCache(ctx, cfg, svcs)
	if err != nil {
		return nil, err
	}
	svcs.Cache = cache

	opts := []services.PhotoServiceOption{services.WithHEICConversion(cfg.ConvertHEIC)}
	if cfg.AutofillFromEXIF {
		geocoder := services.NewGeocodingService("", "")
		opts = append(opts, services.WithMetadataEnricher(services.NewMetadataService(geocoder)))
	}
	svcs.Photos = services.NewPhotoService(store, blobs, cache, opts...)

	log.Printf("Services ready (store=%s, blobs=%s, cache=%s)", cfg.StoreBackend, cfg.BlobBackend, cfg.CacheBackend)
	return svcs, nil
}

func googleClientOptions(cfg *config.Config) []option.ClientOption {
	if cfg.FirebaseCredentialsJSON != "" {
		// Use JSON credentials from environment variable (preferred for Vercel)
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON))}
	}
	if cfg.FirebaseCredentialsPath != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseCredentialsPath)}
	}
	// Application default credentials
	return nil
}

func openPhotoStore(ctx context.Context, cfg *config.Config, svcs *Services, gcpOpts []option.ClientOption) (services.PhotoStore, error) {
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirebaseProjectID, gcpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		svcs.closers = append(svcs.closers, client.Close)
		return services.NewFirestorePhotoStore(client, cfg.FirestoreCollection), nil
	case config.StorePostgres:
		store, err := services.OpenPostgresPhotoStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		svcs.closers = append(svcs.closers, store.Close)
		return store, nil
	default:
		store, err := services.OpenSQLitePhotoStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		svcs.closers = append(svcs.closers, store.Close)
		return store, nil
	}
}

func openBlobStore(ctx context.Context, cfg *config.Config, svcs *Services, gcpOpts []option.ClientOption) (services.BlobStore, error) {
	if cfg.BlobBackend == config.BlobGCS {
		client, err := storage.NewClient(ctx, gcpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Cloud Storage client: %w", err)
		}
		svcs.closers = append(svcs.closers, client.Close)
		return services.NewGCSBlobStore(client, cfg.FirebaseBucketName), nil
	}

	blobs, err := services.NewLocalBlobStore(cfg.LocalBlobDir, cfg.PublicBlobBaseURL)
	if err != nil {
		return nil, err
	}
	svcs.BlobDir = blobs.Root()
	return blobs, nil
}

func openPageCache(ctx context.Context, cfg *config.Config, svcs *Services) (services.PageCache, error) {
	if cfg.CacheBackend == config.CacheRedis {
		cache, err := services.NewRedisCacheService(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		svcs.closers = append(svcs.closers, cache.Close)
		return cache, nil
	}

	cache := services.NewCacheService(cfg.CacheTTL, cfg.CacheCleanupInterval)
	svcs.closers = append(svcs.closers, func() error {
		cache.Close()
		return nil
	})
	return cache, nil
}

// CreateHandler creates an HTTP handler with all middleware applied
func CreateHandler(svcs *Services, cfg *config.Config) http.Handler {
	// Initialize handlers
	h := handlers.New(svcs.Photos, svcs.Cache, cfg.MaxUploadBytes())

	// Setup router with middleware
	var wrapped http.Handler = router.Setup(h, svcs.BlobDir)

	wrapped = middleware.APIKeyAuth(cfg.APIKeys)(wrapped)
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		wrapped = limiter.Limit(wrapped)
	}
	wrapped = middleware.CORS(wrapped, cfg.AllowedOrigins)
	wrapped = middleware.Logger(wrapped)
	wrapped = middleware.RequestID(wrapped)

	return wrapped
}
