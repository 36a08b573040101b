// Package gateway decides, for every read and write, whether restaurant and
// review data goes to the optional remote store, the local mirror, or both.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"biteclub/models"
	"biteclub/storage"
	"biteclub/utils"
)

// Local mirror keys.
const (
	KeyRestaurants  = "biteclub_restaurants"
	KeyReviews      = "biteclub_reviews"
	KeyRemoteConfig = "biteclub_cloud_config"
)

var (
	ErrInvalidReview     = errors.New("invalid review")
	ErrInvalidRestaurant = errors.New("invalid restaurant")
)

// Source tells a caller which backend answered a read.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// FailureHook is called with the operation name whenever a remote call fails.
type FailureHook func(op string, err error)

// Option configures a Gateway.
type Option func(*Gateway)

func WithLogger(l *utils.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

func WithFailureHook(h FailureHook) Option {
	return func(g *Gateway) { g.onRemoteFailure = h }
}

// Gateway routes restaurant and review persistence between the local mirror
// and an optional remote store.
type Gateway struct {
	local           storage.KeyValueStore
	dial            storage.Dialer
	logger          *utils.Logger
	onRemoteFailure FailureHook

	// configMu keeps the stored config and the installed handle in step
	configMu sync.Mutex
	remoteMu sync.RWMutex
	remote   *remoteHandle

	// serializes read-modify-write of the local collections
	localMu sync.Mutex
}

// New builds a Gateway over local. If a remote configuration was saved by an
// earlier SetRemoteConfig, a remote handle is built for it through dial.
func New(ctx context.Context, local storage.KeyValueStore, dial storage.Dialer, opts ...Option) *Gateway {
	g := &Gateway{local: local, dial: dial}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = utils.NewLogger()
	}

	raw, err := local.Get(ctx, KeyRemoteConfig)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		g.logger.Warn("[gateway] Could not read stored remote config: %v", err)
	default:
		var cfg models.RemoteConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			g.logger.Warn("[gateway] Stored remote config is corrupt, staying local-only: %v", err)
			break
		}
		g.remote = g.newHandle(cfg)
		g.logger.Info("[gateway] Remote store configured: %s", cfg.Endpoint)
	}
	return g
}

// RemoteConfig returns a copy of the active remote configuration, or nil in
// local-only mode.
func (g *Gateway) RemoteConfig() *models.RemoteConfig {
	g.remoteMu.RLock()
	defer g.remoteMu.RUnlock()
	if g.remote == nil {
		return nil
	}
	cfg := g.remote.cfg
	return &cfg
}

// SetRemoteConfig stores cfg in the local mirror and switches to a fresh
// remote handle; nil erases the stored config and reverts to local-only
// mode. The endpoint is not contacted here. Operations already running keep
// the handle they started with.
func (g *Gateway) SetRemoteConfig(ctx context.Context, cfg *models.RemoteConfig) error {
	g.configMu.Lock()
	defer g.configMu.Unlock()

	var next *remoteHandle
	if cfg != nil {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("gateway: encode remote config: %w", err)
		}
		if err := g.local.Set(ctx, KeyRemoteConfig, raw); err != nil {
			return fmt.Errorf("gateway: store remote config: %w", err)
		}
		next = g.newHandle(*cfg)
		g.logger.Info("[gateway] Remote store set to %s", cfg.Endpoint)
	} else {
		if err := g.local.Remove(ctx, KeyRemoteConfig); err != nil {
			return fmt.Errorf("gateway: erase remote config: %w", err)
		}
		g.logger.Info("[gateway] Remote store cleared, local-only mode")
	}

	g.remoteMu.Lock()
	prev := g.remote
	g.remote = next
	g.remoteMu.Unlock()

	if prev != nil {
		prev.retire()
	}
	return nil
}

// Close releases the remote handle. The local store belongs to the caller.
func (g *Gateway) Close() error {
	g.configMu.Lock()
	defer g.configMu.Unlock()

	g.remoteMu.Lock()
	prev := g.remote
	g.remote = nil
	g.remoteMu.Unlock()
	if prev != nil {
		prev.retire()
	}
	return nil
}

// ListRestaurants returns the remote table when a remote is configured and
// answers; otherwise the local mirror. A remote answer does not refresh the
// mirror.
func (g *Gateway) ListRestaurants(ctx context.Context) ([]models.Restaurant, Source) {
	if h := g.acquire(); h != nil {
		var rows []models.Restaurant
		err := h.use(func(s storage.RemoteStore) (err error) {
			rows, err = s.ListRestaurants(ctx)
			return err
		})
		h.release()
		if err == nil {
			if rows == nil {
				rows = []models.Restaurant{}
			}
			return rows, SourceRemote
		}
		g.remoteFailed("list restaurants", err)
	}
	return readLocal[models.Restaurant](ctx, g, KeyRestaurants), SourceLocal
}

// ListReviews follows the same policy as ListRestaurants.
func (g *Gateway) ListReviews(ctx context.Context) ([]models.Review, Source) {
	if h := g.acquire(); h != nil {
		var rows []models.Review
		err := h.use(func(s storage.RemoteStore) (err error) {
			rows, err = s.ListReviews(ctx)
			return err
		})
		h.release()
		if err == nil {
			if rows == nil {
				rows = []models.Review{}
			}
			return rows, SourceRemote
		}
		g.remoteFailed("list reviews", err)
	}
	return readLocal[models.Review](ctx, g, KeyReviews), SourceLocal
}

// SaveRestaurant appends r to the local mirror unless its id is already
// there, then upserts it remotely. The returned error covers only validation
// and the local write; the remote outcome is in SyncStatus.
func (g *Gateway) SaveRestaurant(ctx context.Context, r models.Restaurant) (SyncStatus, error) {
	if strings.TrimSpace(r.ID) == "" {
		return SyncStatus{}, fmt.Errorf("%w: id is required", ErrInvalidRestaurant)
	}

	g.localMu.Lock()
	current, err := loadLocal[models.Restaurant](ctx, g, KeyRestaurants)
	if err == nil {
		exists := false
		for _, existing := range current {
			if existing.ID == r.ID {
				exists = true
				break
			}
		}
		if !exists {
			err = writeLocal(ctx, g, KeyRestaurants, append(current, r))
		}
	}
	g.localMu.Unlock()
	if err != nil {
		return SyncStatus{}, fmt.Errorf("gateway: save restaurant %q: %w", r.ID, err)
	}

	return g.pushRemote("upsert restaurant", func(s storage.RemoteStore) error {
		return s.UpsertRestaurant(ctx, r)
	}), nil
}

// SaveReview replaces the review with the same id in the local mirror, or
// appends it, then upserts it remotely.
func (g *Gateway) SaveReview(ctx context.Context, r models.Review) (SyncStatus, error) {
	if err := ValidateReview(r); err != nil {
		return SyncStatus{}, err
	}

	g.localMu.Lock()
	current, err := loadLocal[models.Review](ctx, g, KeyReviews)
	if err == nil {
		replaced := false
		for i := range current {
			if current[i].ID == r.ID {
				current[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			current = append(current, r)
		}
		err = writeLocal(ctx, g, KeyReviews, current)
	}
	g.localMu.Unlock()
	if err != nil {
		return SyncStatus{}, fmt.Errorf("gateway: save review %q: %w", r.ID, err)
	}

	return g.pushRemote("upsert review", func(s storage.RemoteStore) error {
		return s.UpsertReview(ctx, r)
	}), nil
}

// DeleteReview removes the review from the local mirror and, best-effort,
// from the remote store. Deleting an unknown id is not an error.
func (g *Gateway) DeleteReview(ctx context.Context, id string) (SyncStatus, error) {
	g.localMu.Lock()
	current, err := loadLocal[models.Review](ctx, g, KeyReviews)
	if err == nil {
		kept := current[:0]
		for _, r := range current {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		err = writeLocal(ctx, g, KeyReviews, kept)
	}
	g.localMu.Unlock()
	if err != nil {
		return SyncStatus{}, fmt.Errorf("gateway: delete review %q: %w", id, err)
	}

	return g.pushRemote("delete review", func(s storage.RemoteStore) error {
		return s.DeleteReview(ctx, id)
	}), nil
}

// ValidateReview checks the fields every stored review must have.
func ValidateReview(r models.Review) error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: id is required", ErrInvalidReview)
	case strings.TrimSpace(r.RestaurantID) == "":
		return fmt.Errorf("%w: restaurantId is required", ErrInvalidReview)
	case r.Score < 1 || r.Score > 5:
		return fmt.Errorf("%w: score %d is outside 1-5", ErrInvalidReview, r.Score)
	case r.Spent < 0 || math.IsNaN(r.Spent) || math.IsInf(r.Spent, 0):
		return fmt.Errorf("%w: spent must be a non-negative amount", ErrInvalidReview)
	}
	if _, err := time.Parse(models.DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidReview, r.Date)
	}
	return nil
}

func (g *Gateway) pushRemote(op string, fn func(storage.RemoteStore) error) SyncStatus {
	h := g.acquire()
	if h == nil {
		return SyncStatus{State: SyncSkipped}
	}
	err := h.use(fn)
	h.release()
	if err != nil {
		g.remoteFailed(op, err)
		return SyncStatus{State: SyncFailed, Err: err}
	}
	return SyncStatus{State: SyncOK}
}

func (g *Gateway) remoteFailed(op string, err error) {
	g.logger.Warn("[gateway] Remote %s failed: %v", op, err)
	if g.onRemoteFailure != nil {
		g.onRemoteFailure(op, err)
	}
}

// readLocal is loadLocal for the list paths: any read failure is logged and
// reads as an empty collection.
func readLocal[T any](ctx context.Context, g *Gateway, key string) []T {
	items, err := loadLocal[T](ctx, g, key)
	if err != nil {
		g.logger.Warn("[gateway] Local read of %s failed, treating as empty: %v", key, err)
		return []T{}
	}
	return items
}

// loadLocal decodes a collection blob. A missing or corrupt blob is an empty
// collection; any other read error is returned so that a write never
// rewrites the mirror from a collection it could not read.
func loadLocal[T any](ctx context.Context, g *Gateway, key string) ([]T, error) {
	raw, err := g.local.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		g.logger.Warn("[gateway] Local %s is corrupt, treating as empty: %v", key, err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeLocal[T any](ctx context.Context, g *Gateway, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return g.local.Set(ctx, key, raw)
}
