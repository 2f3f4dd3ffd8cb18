package scene

import (
	"context"
	"sync"
	"time"

	"whiteboard/internal/models"
)

// Loader fetches previously persisted elements for a room.
type Loader func(ctx context.Context) ([]models.Element, error)

// Scene is the authoritative element set of one room. All methods are safe
// for concurrent use; each merge is applied atomically.
type Scene struct {
	mu         sync.Mutex
	roomID     string
	elements   map[string]models.Element
	hydrated   bool
	lastActive time.Time
	now        func() time.Time
}

func newScene(roomID string, now func() time.Time) *Scene {
	return &Scene{
		roomID:     roomID,
		elements:   make(map[string]models.Element),
		lastActive: now(),
		now:        now,
	}
}

func (s *Scene) RoomID() string {
	return s.roomID
}

// Apply merges a batch and returns the accepted delta, tombstones included.
func (s *Scene) Apply(incoming []models.Element) []models.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()
	return apply(s.elements, incoming)
}

// Snapshot returns the live elements, excluding tombstones.
func (s *Scene) Snapshot() []models.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Visible(s.elements)
}

// Element returns the stored entry for id, tombstones included.
func (s *Scene) Element(id string) (models.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elements[id]
	return el, ok
}

func (s *Scene) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Hydrate merges persisted elements into the scene once. The loader runs
// without holding the lock; because merging is order independent, edits
// applied while it runs are preserved. A failed load leaves the scene
// unhydrated so the next join retries.
func (s *Scene) Hydrate(ctx context.Context, load Loader) error {
	if s.Hydrated() {
		return nil
	}
	stored, err := load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	apply(s.elements, stored)
	s.hydrated = true
	return nil
}

func (s *Scene) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Scene) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
