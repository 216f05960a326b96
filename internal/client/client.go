package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"portfolio-api/internal/models"
)

const defaultHTTPTimeout = 30 * time.Second

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// APIError is a non-2xx response from the portfolio API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client is a small HTTP client for the portfolio API.
type Client struct {
	baseURL string
	http    *http.Client
	apiKey  string
}

// New creates a client for baseURL. apiKey is sent on every request when set.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		apiKey:  strings.TrimSpace(apiKey),
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ListPhotos fetches the full listing, newest first.
func (c *Client) ListPhotos(ctx context.Context) ([]*models.Photo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/photos", nil)
	if err != nil {
		return nil, err
	}
	var resp models.ListResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Photos, nil
}

// UploadPhoto posts req as a multipart form. req.File must be set.
func (c *Client) UploadPhoto(ctx context.Context, upload models.UploadRequest) (*models.Photo, error) {
	body, contentType, err := encodeUpload(upload)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/photos/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var resp models.UploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Photo == nil {
		return nil, fmt.Errorf("upload response did not include a photo")
	}
	return resp.Photo, nil
}

// DeletePhoto removes the photo with the given id.
func (c *Client) DeletePhoto(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/photos/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func encodeUpload(upload models.UploadRequest) (io.Reader, string, error) {
	if upload.File == nil {
		return nil, "", fmt.Errorf("no file to upload")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"title", upload.Title},
		{"location", upload.Location},
		{"description", upload.Description},
		{"camera", upload.Camera},
		{"lens", upload.Lens},
		{"aperture", upload.Aperture},
		{"shutterSpeed", upload.ShutterSpeed},
		{"iso", upload.ISO},
		{"aspectRatio", upload.AspectRatio},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	name := upload.FileName
	if name == "" {
		name = "photo"
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filepath.Base(name))))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.File); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError reads the {success:false, error} envelope, falling back to the
// plain text body the middleware writes.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
