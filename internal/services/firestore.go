package services

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portfolio-api/internal/errors"
	"portfolio-api/internal/models"
)

// FirestorePhotoStore keeps one document per photo; the document ID is the photo ID.
type FirestorePhotoStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestorePhotoStore(client *firestore.Client, collection string) *FirestorePhotoStore {
	return &FirestorePhotoStore{
		client:     client,
		collection: collection,
	}
}

// Creates a new photo document and sets its ID and creation time.
func (fs *FirestorePhotoStore) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	photo.CreatedAt = time.Now().UTC()

	docRef, _, err := fs.client.Collection(fs.collection).Add(ctx, photo)
	if err != nil {
		return fmt.Errorf("failed to create photo document: %w", err)
	}

	photo.ID = docRef.ID
	return nil
}

// Deletes a photo document. The Exists precondition turns a missing
// document into a NotFound status instead of a silent no-op.
func (fs *FirestorePhotoStore) DeletePhoto(ctx context.Context, id string) error {
	_, err := fs.client.Collection(fs.collection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("photo %s: %w", id, errors.ErrNotFound)
		}
		return fmt.Errorf("failed to delete photo document: %w", err)
	}

	return nil
}

// Retrieves every photo ordered by createdAt, newest first.
func (fs *FirestorePhotoStore) ListPhotos(ctx context.Context) ([]*models.Photo, error) {
	iter := fs.client.Collection(fs.collection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	results := []*models.Photo{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate photo documents: %w", err)
		}

		photo, err := decodePhotoDoc(doc.Ref.ID, doc.DataTo)
		if err != nil {
			return nil, err
		}
		results = append(results, photo)
	}

	return results, nil
}

// decodePhotoDoc fails the listing on a document that no longer matches the
// schema, so it surfaces as an error instead of a silently shorter gallery.
func decodePhotoDoc(id string, dataTo func(any) error) (*models.Photo, error) {
	var photo models.Photo
	if err := dataTo(&photo); err != nil {
		return nil, fmt.Errorf("failed to decode photo document %s: %w", id, err)
	}
	photo.ID = id
	return &photo, nil
}
