package publish

import (
	"context"
	"sync"
)

// Registry is the externally owned cross-file synchronization point. It
// exposes only an atomic claim-or-reject operation keyed by output path
// and by (URL, moniker group); the core never iterates or mutates it
// directly.
type Registry interface {
	// Claim atomically registers the item. It returns false when another
	// file already holds the same output path or the same (URL, moniker
	// group) pair; the caller then skips all writes for its file.
	Claim(ctx context.Context, item PublishItem) (bool, error)

	// Items returns all successfully claimed items, for manifest emission.
	Items(ctx context.Context) ([]PublishItem, error)

	// Close releases any resources held by the registry.
	Close() error
}

// MemoryRegistry is the in-process Registry used for single-process
// builds and tests.
type MemoryRegistry struct {
	mu      sync.Mutex
	byPath  map[string]struct{}
	byURL   map[urlKey]struct{}
	claimed []PublishItem
}

type urlKey struct {
	url          string
	monikerGroup string
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byPath: make(map[string]struct{}),
		byURL:  make(map[urlKey]struct{}),
	}
}

func (r *MemoryRegistry) Claim(_ context.Context, item PublishItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := urlKey{url: item.URL, monikerGroup: item.MonikerGroup}
	if _, taken := r.byPath[item.Path]; taken {
		return false, nil
	}
	if _, taken := r.byURL[key]; taken {
		return false, nil
	}

	r.byPath[item.Path] = struct{}{}
	r.byURL[key] = struct{}{}
	r.claimed = append(r.claimed, item)
	return true, nil
}

func (r *MemoryRegistry) Items(context.Context) ([]PublishItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PublishItem, len(r.claimed))
	copy(out, r.claimed)
	return out, nil
}

func (r *MemoryRegistry) Close() error { return nil }
