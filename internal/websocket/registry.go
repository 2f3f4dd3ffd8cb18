package websocket

import (
	"iter"
	"sync"

	apperrors "whiteboard/internal/errors"

	"github.com/samber/lo"
)

// Conn is a live transport session as seen by the registry and the router.
type Conn interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// Session is a copy of the registry's record for one connection.
type Session struct {
	Conn        Conn
	UserID      string
	DisplayName string
	Rooms       []string
}

type session struct {
	conn        Conn
	userID      string
	displayName string
	rooms       map[string]struct{}
}

// Registry tracks live connections and the rooms they joined. A single lock
// covers both the connection table and the room index, so a connection is in
// a room's member set exactly when the room is in the connection's room set.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	rooms    map[string]map[string]*session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		rooms:    make(map[string]map[string]*session),
	}
}

// Register starts tracking conn with an empty room set.
func (r *Registry) Register(conn Conn, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[conn.ID()]; exists {
		return apperrors.ErrAlreadyRegistered
	}
	r.sessions[conn.ID()] = &session{
		conn:   conn,
		userID: userID,
		rooms:  make(map[string]struct{}),
	}
	return nil
}

// Unregister removes conn from every room and then from the registry, in one
// step. It returns the rooms that were left; calling it again returns nil.
func (r *Registry) Unregister(conn Conn) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[conn.ID()]
	if !exists {
		return nil
	}
	left := lo.Keys(s.rooms)
	for _, roomID := range left {
		r.removeMember(roomID, conn.ID())
	}
	delete(r.sessions, conn.ID())
	return left
}

// Find returns a copy of the record for connID.
func (r *Registry) Find(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sessions[connID]
	if !exists {
		return Session{}, false
	}
	return Session{
		Conn:        s.conn,
		UserID:      s.userID,
		DisplayName: s.displayName,
		Rooms:       lo.Keys(s.rooms),
	}, true
}

// Join is idempotent.
func (r *Registry) Join(conn Conn, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[conn.ID()]
	if !exists {
		return apperrors.ErrStaleConnection
	}
	s.rooms[roomID] = struct{}{}
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]*session)
		r.rooms[roomID] = members
	}
	members[conn.ID()] = s
	return nil
}

// Leave is idempotent.
func (r *Registry) Leave(conn Conn, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[conn.ID()]
	if !exists {
		return apperrors.ErrStaleConnection
	}
	delete(s.rooms, roomID)
	r.removeMember(roomID, conn.ID())
	return nil
}

func (r *Registry) removeMember(roomID, connID string) {
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// MembersOf yields the connections joined to roomID. Membership is copied when
// iteration starts, so members may join, leave or disconnect while the
// sequence is being consumed. Each new iteration takes a fresh copy.
func (r *Registry) MembersOf(roomID string) iter.Seq[Conn] {
	return func(yield func(Conn) bool) {
		r.mu.RLock()
		members := make([]Conn, 0, len(r.rooms[roomID]))
		for _, s := range r.rooms[roomID] {
			members = append(members, s.conn)
		}
		r.mu.RUnlock()

		for _, c := range members {
			if !yield(c) {
				return
			}
		}
	}
}

func (r *Registry) IsMember(connID, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][connID]
	return ok
}

// Occupied reports whether any connection has joined roomID.
func (r *Registry) Occupied(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID]) > 0
}

// UsersIn returns the distinct user ids joined to roomID.
func (r *Registry) UsersIn(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := lo.MapToSlice(r.rooms[roomID], func(_ string, s *session) string {
		return s.userID
	})
	return lo.Uniq(users)
}

// SetDisplayName caches the resolved display name for a connection.
func (r *Registry) SetDisplayName(connID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, exists := r.sessions[connID]; exists {
		s.displayName = name
	}
}

func (r *Registry) Stats() (rooms, connections int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.sessions)
}

// CloseAll closes every registered connection. Teardown happens through each
// connection's own read loop.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	conns := lo.MapToSlice(r.sessions, func(_ string, s *session) Conn { return s.conn })
	r.mu.RUnlock()

	for _, c := range conns {
		c.Close()
	}
}
