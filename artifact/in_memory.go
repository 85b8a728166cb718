package artifact

import (
	"sort"
	"sync"
)

// InMemory is a trivial in-process Store implementation useful for tests,
// examples and single-process prototypes. It keeps all artifacts in a nested
// map guarded by an RWMutex. Data is copied on save / retrieval to avoid
// accidental external mutation of internal buffers.
//
// Layout: ownerID -> artifactID -> raw bytes
//
// This implementation is intentionally minimal; it does not enforce
// retention limits, size quotas, or eviction. For production, prefer a
// durable implementation that can scale and survive process restarts.
type InMemory struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte // ownerID -> artifactID -> data
}

// NewInMemory returns an empty in-memory artifact store.
func NewInMemory() *InMemory {
	return &InMemory{artifacts: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the artifact bytes for the given owner and id.
// The input slice is copied before storage.
func (a *InMemory) Save(ownerID, artifactID string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.artifacts[ownerID]; !exists {
		a.artifacts[ownerID] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	a.artifacts[ownerID][artifactID] = cp
	return nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (a *InMemory) Get(ownerID, artifactID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.artifacts[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := m[artifactID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the sorted artifact ids stored for the owner. The slice is a
// snapshot and safe for caller mutation.
func (a *InMemory) List(ownerID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m := a.artifacts[ownerID]
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact if present. Deleting a missing artifact is not
// an error.
func (a *InMemory) Delete(ownerID, artifactID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if m, ok := a.artifacts[ownerID]; ok {
		delete(m, artifactID)
		if len(m) == 0 {
			delete(a.artifacts, ownerID)
		}
	}
	return nil
}
