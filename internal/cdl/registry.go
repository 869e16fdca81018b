package cdl

import (
	"sort"
	"sync"
)

// Registry maps correction ids to the correction that owns them. A Registry
// is owned by one conversion run; share it across goroutines only through
// its methods, which serialize all mutations.
type Registry struct {
	mu       sync.Mutex
	members  map[string]*ColorCorrection
	trackers map[*Tracker]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		members:  make(map[string]*ColorCorrection),
		trackers: make(map[*Tracker]struct{}),
	}
}

// Register claims id for cc. Empty ids are not tracked.
func (r *Registry) Register(id string, cc *ColorCorrection) error {
	if id == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.members[id]; ok && existing != cc {
		return &Error{Kind: ErrDuplicateID, ID: id, Detail: "id is already registered"}
	}
	r.members[id] = cc
	for t := range r.trackers {
		t.ids = append(t.ids, id)
	}
	return nil
}

// Unregister releases id. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.members, id)
	r.mu.Unlock()
}

// Reset clears every entry. Calling it on an empty registry is a no-op.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.members = make(map[string]*ColorCorrection)
	r.mu.Unlock()
}

// Lookup returns the correction registered under id.
func (r *Registry) Lookup(id string) (*ColorCorrection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cc, ok := r.members[id]
	return cc, ok
}

// Len reports the number of registered ids.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Track starts recording ids registered from now on. Close the tracker when
// the guarded operation succeeds, or Rollback to release what it registered.
func (r *Registry) Track() *Tracker {
	t := &Tracker{reg: r}
	r.mu.Lock()
	r.trackers[t] = struct{}{}
	r.mu.Unlock()
	return t
}

// Tracker records the ids registered while it is open.
type Tracker struct {
	reg *Registry
	ids []string
}

// IDs returns the ids recorded so far.
func (t *Tracker) IDs() []string {
	t.reg.mu.Lock()
	defer t.reg.mu.Unlock()
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}

// Close stops recording and keeps every registration.
func (t *Tracker) Close() {
	t.reg.mu.Lock()
	delete(t.reg.trackers, t)
	t.reg.mu.Unlock()
}

// Rollback stops recording and unregisters every recorded id.
func (t *Tracker) Rollback() []string {
	t.reg.mu.Lock()
	defer t.reg.mu.Unlock()
	delete(t.reg.trackers, t)
	for _, id := range t.ids {
		delete(t.reg.members, id)
	}
	released := t.ids
	t.ids = nil
	return released
}
