package team

import "sync"

// Registry remembers the originally-seen identifier for each canonical
// id so the storage boundary can round-trip between the two forms.
// Rating-table keys use the canonical form; persistence-facing
// identifiers use the original form.
type Registry struct {
	mu       sync.RWMutex
	original map[string]string // canonical -> first original seen
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{original: make(map[string]string)}
}

// Observe normalizes raw and records the raw form for round-tripping.
// It returns the canonical id. The first original seen for a canonical
// id wins; later variants do not overwrite it.
func (r *Registry) Observe(raw, league string) string {
	canonical := Normalize(raw, league)
	if canonical == "" {
		return canonical
	}
	r.mu.Lock()
	if _, ok := r.original[canonical]; !ok {
		r.original[canonical] = raw
	}
	r.mu.Unlock()
	return canonical
}

// Denormalize returns the originally-seen identifier for a canonical
// id, or reconstructs "<LEAGUE>_<canonical>" if no original is known.
func (r *Registry) Denormalize(canonical, league string) string {
	if canonical == "" {
		return canonical
	}
	r.mu.RLock()
	orig, ok := r.original[canonical]
	r.mu.RUnlock()
	if ok {
		return orig
	}
	return league + "_" + canonical
}
