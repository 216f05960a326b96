package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"portfolio-api/internal/models"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// GeocodingService resolves photo GPS positions to "City, Country" labels
// through Nominatim. Lookups are cached per ~10m grid cell and throttled to
// one request per second as Nominatim's usage policy requires.
type GeocodingService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu     sync.RWMutex
	labels map[string]string
}

type nominatimReverse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
		Country string `json:"country"`
	} `json:"address"`
}

func NewGeocodingService(baseURL, userAgent string) *GeocodingService {
	if baseURL == "" {
		baseURL = nominatimBaseURL
	}
	if userAgent == "" {
		userAgent = "portfolio-api"
	}
	return &GeocodingService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		labels:     make(map[string]string),
	}
}

func (g *GeocodingService) ReverseGeocode(ctx context.Context, coordinates models.Coordinates) (string, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordinates.Lat), 64)
	if err != nil {
		return "", fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(coordinates.Lng), 64)
	if err != nil {
		return "", fmt.Errorf("invalid longitude: %w", err)
	}
	key := fmt.Sprintf("%.4f,%.4f", lat, lng)

	g.mu.RLock()
	label, ok := g.labels[key]
	g.mu.RUnlock()
	if ok {
		return label, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	label, err = g.lookup(ctx, lat, lng)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	g.labels[key] = label
	g.mu.Unlock()

	return label, nil
}

func (g *GeocodingService) lookup(ctx context.Context, lat, lng float64) (string, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(lng, 'f', 6, 64))
	query.Set("zoom", "10")
	query.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var body nominatimReverse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	return placeLabel(body), nil
}

// placeLabel prefers the most specific settlement name available.
func placeLabel(n nominatimReverse) string {
	place := firstNonEmpty(n.Address.City, n.Address.Town, n.Address.Village, n.Address.County)
	switch {
	case place != "" && n.Address.Country != "":
		return place + ", " + n.Address.Country
	case place != "":
		return place
	default:
		return n.Address.Country
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
