package gateway

import (
	"errors"
	"sync"

	"biteclub/models"
	"biteclub/storage"
)

var errNoDialer = errors.New("gateway: no remote dialer configured")

// SyncState is the outcome of the remote half of a write.
type SyncState int

const (
	SyncSkipped SyncState = iota
	SyncOK
	SyncFailed
)

func (s SyncState) String() string {
	switch s {
	case SyncOK:
		return "synced"
	case SyncFailed:
		return "failed"
	default:
		return "local-only"
	}
}

// SyncStatus reports whether a write reached the remote store.
type SyncStatus struct {
	State SyncState
	Err   error
}

// remoteHandle binds one configuration to one store. It is never mutated
// after construction apart from its reference count; a new configuration
// always gets a new handle.
type remoteHandle struct {
	cfg   models.RemoteConfig
	store storage.RemoteStore
	err   error

	mu      sync.Mutex
	refs    int
	retired bool
	closed  bool
}

func (g *Gateway) newHandle(cfg models.RemoteConfig) *remoteHandle {
	h := &remoteHandle{cfg: cfg}
	if g.dial == nil {
		h.err = errNoDialer
		return h
	}
	h.store, h.err = g.dial(cfg)
	if h.err != nil {
		g.logger.Warn("[gateway] Remote store for %s is unusable, reads will fall back to local: %v",
			cfg.Endpoint, h.err)
	}
	return h
}

// acquire returns the current handle with a reference held, or nil.
func (g *Gateway) acquire() *remoteHandle {
	g.remoteMu.RLock()
	defer g.remoteMu.RUnlock()
	h := g.remote
	if h != nil {
		h.mu.Lock()
		h.refs++
		h.mu.Unlock()
	}
	return h
}

func (h *remoteHandle) use(fn func(storage.RemoteStore) error) error {
	if h.err != nil {
		return h.err
	}
	return fn(h.store)
}

func (h *remoteHandle) release() {
	h.mu.Lock()
	h.refs--
	closeNow := h.retired && h.refs == 0 && !h.closed
	if closeNow {
		h.closed = true
	}
	h.mu.Unlock()
	if closeNow {
		h.close()
	}
}

// retire marks the handle as replaced; the store closes once the last
// in-flight operation releases it.
func (h *remoteHandle) retire() {
	h.mu.Lock()
	h.retired = true
	closeNow := h.refs == 0 && !h.closed
	if closeNow {
		h.closed = true
	}
	h.mu.Unlock()
	if closeNow {
		h.close()
	}
}

func (h *remoteHandle) close() {
	if h.store != nil {
		_ = h.store.Close()
	}
}
