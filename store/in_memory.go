package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record lookup misses.
var ErrNotFound = fmt.Errorf("record not found")

// InMemory is a volatile transactional store keeping all records in process
// local maps. It is safe for concurrent access and best suited for tests or
// single-process deployments. Writes made inside a transaction are staged on
// the Tx and published atomically on commit; a failing transaction function
// leaves the store untouched.
type InMemory struct {
	mu           sync.RWMutex
	units        map[string]Unit
	lessons      map[string]Lesson
	expectations map[string]Expectation
	resources    map[string]Resource
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		units:        make(map[string]Unit),
		lessons:      make(map[string]Lesson),
		expectations: make(map[string]Expectation),
		resources:    make(map[string]Resource),
	}
}

// Tx stages writes for one transaction. All reads see committed state plus
// the transaction's own staged writes. Handlers receive a *Tx through the
// opaque tx handle of core.TransactionRunner.
type Tx struct {
	store        *InMemory
	units        map[string]Unit
	lessons      map[string]Lesson
	expectations map[string]Expectation
	resources    map[string]Resource
}

// RunInTransaction implements core.TransactionRunner. fn's staged writes are
// committed if and only if fn returns nil; any error (or context
// cancellation) discards them.
func (s *InMemory) RunInTransaction(ctx context.Context, fn func(tx any) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &Tx{
		store:        s,
		units:        make(map[string]Unit),
		lessons:      make(map[string]Lesson),
		expectations: make(map[string]Expectation),
		resources:    make(map[string]Resource),
	}

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range tx.units {
		s.units[id] = u
	}
	for id, l := range tx.lessons {
		s.lessons[id] = l
	}
	for id, e := range tx.expectations {
		s.expectations[id] = e
	}
	for id, r := range tx.resources {
		s.resources[id] = r
	}
	return nil
}

// CreateUnit stages a new unit, assigning an id when absent.
func (tx *Tx) CreateUnit(u Unit) (Unit, error) {
	if u.Title == "" {
		return Unit{}, fmt.Errorf("unit title is required")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	tx.units[u.ID] = u
	return u, nil
}

// CreateLesson stages a new lesson, assigning an id when absent.
func (tx *Tx) CreateLesson(l Lesson) (Lesson, error) {
	if l.Title == "" {
		return Lesson{}, fmt.Errorf("lesson title is required")
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now()
	tx.lessons[l.ID] = l
	return l, nil
}

// CreateExpectation stages a new expectation, assigning an id when absent.
func (tx *Tx) CreateExpectation(e Expectation) (Expectation, error) {
	if e.Code == "" {
		return Expectation{}, fmt.Errorf("expectation code is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now()
	tx.expectations[e.ID] = e
	return e, nil
}

// CreateResource stages a new resource, assigning an id when absent.
func (tx *Tx) CreateResource(r Resource) (Resource, error) {
	if r.Title == "" {
		return Resource{}, fmt.Errorf("resource title is required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now()
	tx.resources[r.ID] = r
	return r, nil
}

// Unit returns a committed or staged unit by id.
func (tx *Tx) Unit(id string) (Unit, error) {
	if u, ok := tx.units[id]; ok {
		return u, nil
	}
	return tx.store.Unit(id)
}

// Unit returns a committed unit by id.
func (s *InMemory) Unit(id string) (Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.units[id]; ok {
		return u, nil
	}
	return Unit{}, ErrNotFound
}

// Lesson returns a committed lesson by id.
func (s *InMemory) Lesson(id string) (Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.lessons[id]; ok {
		return l, nil
	}
	return Lesson{}, ErrNotFound
}

// Expectation returns a committed expectation by id.
func (s *InMemory) Expectation(id string) (Expectation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.expectations[id]; ok {
		return e, nil
	}
	return Expectation{}, ErrNotFound
}

// Resource returns a committed resource by id.
func (s *InMemory) Resource(id string) (Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.resources[id]; ok {
		return r, nil
	}
	return Resource{}, ErrNotFound
}

// Counts reports how many committed records exist per kind. Used by health
// checks and tests.
func (s *InMemory) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"units":        len(s.units),
		"lessons":      len(s.lessons),
		"expectations": len(s.expectations),
		"resources":    len(s.resources),
	}
}
