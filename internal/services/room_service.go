package services

import (
	"whiteboard/internal/models"
	"whiteboard/internal/scene"
	ws "whiteboard/internal/websocket"
)

type RoomService struct {
	registry *ws.Registry
	scenes   *scene.Scenes
}

func NewRoomService(registry *ws.Registry, scenes *scene.Scenes) *RoomService {
	return &RoomService{registry: registry, scenes: scenes}
}

// Snapshot returns the live elements of a room's in-memory scene. A room
// without loaded state yields an empty snapshot.
func (s *RoomService) Snapshot(roomID string) []models.Element {
	sc, ok := s.scenes.Lookup(roomID)
	if !ok {
		return []models.Element{}
	}
	return sc.Snapshot()
}

func (s *RoomService) ActiveUsers(roomID string) []string {
	users := s.registry.UsersIn(roomID)
	if users == nil {
		return []string{}
	}
	return users
}

type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
	Scenes      int `json:"scenes"`
}

func (s *RoomService) Stats() Stats {
	rooms, conns := s.registry.Stats()
	return Stats{Rooms: rooms, Connections: conns, Scenes: s.scenes.Len()}
}
