package storage

import (
	"context"
	"errors"

	"biteclub/models"
)

// ErrNotFound is returned by a KeyValueStore when a key was never written
// or has been removed.
var ErrNotFound = errors.New("storage: key not found")

// KeyValueStore is the local mirror: opaque blobs under string keys.
// Writes replace the whole value.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// RemoteStore is the optional relational backend. Upserts insert or replace
// by primary key "id".
type RemoteStore interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	ListReviews(ctx context.Context) ([]models.Review, error)
	UpsertRestaurant(ctx context.Context, r models.Restaurant) error
	UpsertReview(ctx context.Context, r models.Review) error
	DeleteReview(ctx context.Context, id string) error
	Close() error
}

// Dialer builds a RemoteStore for a configuration. It must not contact the
// remote; connection problems surface on first use.
type Dialer func(cfg models.RemoteConfig) (RemoteStore, error)

// RecordWriter is implemented by export sinks.
type RecordWriter interface {
	WriteDashboard(rows []models.RestaurantWithStats) error
	WriteReviews(reviews []models.Review) error
	Close() error
}
