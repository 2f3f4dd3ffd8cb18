package scene

import (
	"context"
	"sync"
	"time"

	"whiteboard/pkg/logger"
)

// Scenes owns the scene of every room that currently has state in memory.
type Scenes struct {
	mutex  sync.Mutex
	scenes map[string]*Scene
	now    func() time.Time
}

func NewScenes() *Scenes {
	return &Scenes{
		scenes: make(map[string]*Scene),
		now:    time.Now,
	}
}

// Get returns the scene for roomID, creating an empty one if needed.
func (m *Scenes) Get(roomID string) *Scene {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	sc, exists := m.scenes[roomID]
	if !exists {
		sc = newScene(roomID, m.now)
		m.scenes[roomID] = sc
		return sc
	}
	sc.touch(m.now())
	return sc
}

// Lookup returns the scene for roomID without creating it.
func (m *Scenes) Lookup(roomID string) (*Scene, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	sc, ok := m.scenes[roomID]
	return sc, ok
}

// Drop tears a room's scene down, tombstones included.
func (m *Scenes) Drop(roomID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.scenes, roomID)
}

func (m *Scenes) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.scenes)
}

// Sweep drops scenes of unoccupied rooms that have been idle longer than ttl
// and returns the dropped room ids.
func (m *Scenes) Sweep(ttl time.Duration, occupied func(roomID string) bool) []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	var dropped []string
	for roomID, sc := range m.scenes {
		if occupied(roomID) {
			sc.touch(now)
			continue
		}
		if now.Sub(sc.idleSince()) < ttl {
			continue
		}
		delete(m.scenes, roomID)
		dropped = append(dropped, roomID)
	}
	return dropped
}

// RunJanitor sweeps every interval until ctx is done.
func (m *Scenes) RunJanitor(ctx context.Context, interval, ttl time.Duration, occupied func(roomID string) bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, roomID := range m.Sweep(ttl, occupied) {
				logger.Debug("Dropped idle scene for room %s", roomID)
			}
		}
	}
}
