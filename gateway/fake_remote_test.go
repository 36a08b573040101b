package gateway

import (
	"context"
	"sync"

	"biteclub/models"
	"biteclub/storage"
)

// fakeRemote is an in-memory RemoteStore that records calls and can be told
// to fail or to block.
type fakeRemote struct {
	mu          sync.Mutex
	restaurants []models.Restaurant
	reviews     []models.Review
	failWith    error
	calls       []string
	closed      bool

	// when set, ListReviews waits on it before answering
	gate chan struct{}
}

func (f *fakeRemote) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRemote) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeRemote) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	if err := f.record("list restaurants"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Restaurant(nil), f.restaurants...), nil
}

func (f *fakeRemote) ListReviews(ctx context.Context) ([]models.Review, error) {
	if f.gate != nil {
		<-f.gate
	}
	if err := f.record("list reviews"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Review(nil), f.reviews...), nil
}

func (f *fakeRemote) UpsertRestaurant(ctx context.Context, r models.Restaurant) error {
	if err := f.record("upsert restaurant"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.restaurants {
		if f.restaurants[i].ID == r.ID {
			f.restaurants[i] = r
			return nil
		}
	}
	f.restaurants = append(f.restaurants, r)
	return nil
}

func (f *fakeRemote) UpsertReview(ctx context.Context, r models.Review) error {
	if err := f.record("upsert review"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reviews {
		if f.reviews[i].ID == r.ID {
			f.reviews[i] = r
			return nil
		}
	}
	f.reviews = append(f.reviews, r)
	return nil
}

func (f *fakeRemote) DeleteReview(ctx context.Context, id string) error {
	if err := f.record("delete review"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.reviews[:0]
	for _, r := range f.reviews {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.reviews = kept
	return nil
}

func (f *fakeRemote) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// fakeDialer hands out remotes by endpoint and counts dials.
type fakeDialer struct {
	mu      sync.Mutex
	remotes map[string]*fakeRemote
	dialErr error
	dials   int
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{remotes: map[string]*fakeRemote{}}
}

func (d *fakeDialer) remote(endpoint string) *fakeRemote {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.remotes[endpoint]
	if !ok {
		r = &fakeRemote{}
		d.remotes[endpoint] = r
	}
	return r
}

func (d *fakeDialer) Dial(cfg models.RemoteConfig) (storage.RemoteStore, error) {
	d.mu.Lock()
	d.dials++
	err := d.dialErr
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return d.remote(cfg.Endpoint), nil
}
