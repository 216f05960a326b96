package services

import (
	"context"
	"fmt"
	"net/url"

	"cloud.google.com/go/storage"
)

const gcsPublicBaseURL = "https://storage.googleapis.com"

// GCSBlobStore writes images to a Cloud Storage bucket and returns their
// public object URL. The bucket must allow public reads.
type GCSBlobStore struct {
	client     *storage.Client
	bucketName string
}

func NewGCSBlobStore(client *storage.Client, bucketName string) *GCSBlobStore {
	return &GCSBlobStore{
		client:     client,
		bucketName: bucketName,
	}
}

// Put uploads data under name plus a random suffix and returns the object's public URL.
func (s *GCSBlobStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	objectName := uniqueBlobName(name)

	w := s.client.Bucket(s.bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectName, err)
	}

	return fmt.Sprintf("%s/%s/%s", gcsPublicBaseURL, s.bucketName, (&url.URL{Path: objectName}).EscapedPath()), nil
}
