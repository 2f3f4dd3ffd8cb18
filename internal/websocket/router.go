package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"whiteboard/internal/database"
	apperrors "whiteboard/internal/errors"
	"whiteboard/internal/models"
	"whiteboard/internal/scene"
	"whiteboard/pkg/logger"

	"github.com/sirupsen/logrus"
)

const anonymousName = "Anonymous User"

// ContentFilter rewrites chat content before it is stored.
type ContentFilter interface {
	Censor(content string) string
}

type RouterConfig struct {
	StoreTimeout time.Duration
	ChatHistory  int
	Filter       ContentFilter

	// NameRetryAfter is how long a user is shown as anonymous after a failed
	// display name lookup before the store is asked again.
	NameRetryAfter time.Duration
}

// Router decodes inbound frames and applies them to room state. Handle is
// called sequentially per connection; different connections may call it
// concurrently.
type Router struct {
	registry *Registry
	scenes   *scene.Scenes
	store    database.Store
	cfg      RouterConfig
	now      func() time.Time

	nameMu      sync.Mutex
	nameRetryAt map[string]time.Time
}

func NewRouter(registry *Registry, scenes *scene.Scenes, store database.Store, cfg RouterConfig) *Router {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if cfg.NameRetryAfter <= 0 {
		cfg.NameRetryAfter = 30 * time.Second
	}
	return &Router{
		registry:    registry,
		scenes:      scenes,
		store:       store,
		cfg:         cfg,
		now:         time.Now,
		nameRetryAt: make(map[string]time.Time),
	}
}

// Handle processes one frame from conn. Every failure is confined to this
// frame; the returned error is for logging only.
func (rt *Router) Handle(conn Conn, data []byte) error {
	sess, ok := rt.registry.Find(conn.ID())
	if !ok {
		return apperrors.ErrStaleConnection
	}

	msg, err := models.Decode(data)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case *models.JoinRoom:
		return rt.handleJoin(sess, m)
	case *models.LeaveRoom:
		return rt.registry.Leave(conn, m.RoomID)
	case *models.Drawing:
		return rt.handleDrawing(sess, m)
	case *models.Cursor:
		return rt.handleCursor(sess, m)
	case *models.Chat:
		return rt.handleChat(sess, m)
	default:
		return fmt.Errorf("%w: %T", apperrors.ErrUnknownMessageType, msg)
	}
}

func (rt *Router) handleJoin(sess Session, m *models.JoinRoom) error {
	if err := rt.registry.Join(sess.Conn, m.RoomID); err != nil {
		return err
	}

	sc := rt.scenes.Get(m.RoomID)
	ctx, cancel := rt.storeContext()
	err := sc.Hydrate(ctx, func(ctx context.Context) ([]models.Element, error) {
		return rt.store.LoadDrawings(ctx, m.RoomID)
	})
	cancel()
	if err != nil {
		rt.log(sess, m.RoomID).WithError(err).Warn("Scene hydration failed, serving in-memory scene")
	}

	var history []*models.ChatMessage
	if rt.cfg.ChatHistory > 0 {
		ctx, cancel := rt.storeContext()
		history, err = rt.store.LoadRecentChats(ctx, m.RoomID, rt.cfg.ChatHistory)
		cancel()
		if err != nil {
			rt.log(sess, m.RoomID).WithError(err).Warn("Loading chat history failed")
		}
	}

	// The connection may have left or disconnected while the store was queried.
	if !rt.registry.IsMember(sess.Conn.ID(), m.RoomID) {
		return nil
	}

	rt.reply(sess, models.SceneEvent{
		Type:     models.MessageTypeScene,
		RoomID:   m.RoomID,
		Elements: sc.Snapshot(),
	})
	if len(history) > 0 {
		rt.reply(sess, models.ChatHistoryEvent{
			Type:     models.MessageTypeChatHistory,
			RoomID:   m.RoomID,
			Messages: history,
		})
	}
	return nil
}

func (rt *Router) handleDrawing(sess Session, m *models.Drawing) error {
	if !rt.registry.IsMember(sess.Conn.ID(), m.RoomID) {
		return apperrors.ErrNotMember
	}

	delta := rt.scenes.Get(m.RoomID).Apply(m.Elements)
	if len(delta) == 0 {
		return nil
	}

	rt.broadcast(m.RoomID, sess.Conn.ID(), models.DrawingEvent{
		Type:     models.MessageTypeDrawing,
		RoomID:   m.RoomID,
		Elements: delta,
		ClientID: m.ClientID,
		UserID:   sess.UserID,
	})

	ctx, cancel := rt.storeContext()
	defer cancel()
	if err := rt.store.AppendDrawing(ctx, m.RoomID, sess.UserID, delta); err != nil {
		return fmt.Errorf("%w: append drawing: %w", apperrors.ErrPersistence, err)
	}
	return nil
}

func (rt *Router) handleCursor(sess Session, m *models.Cursor) error {
	if !rt.registry.IsMember(sess.Conn.ID(), m.RoomID) {
		return apperrors.ErrNotMember
	}

	username := m.Username
	if username == "" {
		username = rt.displayName(sess)
	}

	rt.broadcast(m.RoomID, sess.Conn.ID(), models.CursorEvent{
		Type:     models.MessageTypeCursor,
		RoomID:   m.RoomID,
		Pointer:  *m.Pointer,
		ClientID: m.ClientID,
		Color:    m.Color,
		Username: username,
		UserID:   sess.UserID,
	})
	return nil
}

// handleChat stores the message before delivering it. If the store rejects it
// nothing is broadcast, so every delivered chat is also a stored chat.
func (rt *Router) handleChat(sess Session, m *models.Chat) error {
	if !rt.registry.IsMember(sess.Conn.ID(), m.RoomID) {
		return apperrors.ErrNotMember
	}

	content := m.Content
	if rt.cfg.Filter != nil {
		content = rt.cfg.Filter.Censor(content)
	}

	ctx, cancel := rt.storeContext()
	stored, err := rt.store.AppendChat(ctx, m.RoomID, sess.UserID, content)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: append chat: %w", apperrors.ErrPersistence, err)
	}

	message := *stored
	message.RoomID = m.RoomID
	message.UserID = sess.UserID
	message.Username = rt.displayName(sess)

	rt.broadcast(m.RoomID, "", models.ChatEvent{
		Type:    models.MessageTypeChat,
		RoomID:  m.RoomID,
		Message: message,
	})
	return nil
}

// displayName resolves and caches the sender's name. Lookup failures fall back
// to an anonymous name; only a definitive answer is cached. After a failure the
// user is not looked up again until NameRetryAfter has passed.
func (rt *Router) displayName(sess Session) string {
	if sess.DisplayName != "" {
		return sess.DisplayName
	}
	if rt.lookupSuspended(sess.UserID) {
		return anonymousName
	}

	ctx, cancel := rt.storeContext()
	name, err := rt.store.LookupDisplayName(ctx, sess.UserID)
	cancel()
	switch {
	case err == nil && name != "":
		rt.registry.SetDisplayName(sess.Conn.ID(), name)
		return name
	case err == nil, errors.Is(err, apperrors.ErrUserNotFound):
		rt.registry.SetDisplayName(sess.Conn.ID(), anonymousName)
		return anonymousName
	default:
		rt.suspendLookup(sess.UserID)
		logger.WithFields(logrus.Fields{"user_id": sess.UserID}).WithError(err).Warn("Display name lookup failed")
		return anonymousName
	}
}

func (rt *Router) lookupSuspended(userID string) bool {
	rt.nameMu.Lock()
	defer rt.nameMu.Unlock()
	retryAt, ok := rt.nameRetryAt[userID]
	if !ok {
		return false
	}
	if rt.now().Before(retryAt) {
		return true
	}
	delete(rt.nameRetryAt, userID)
	return false
}

func (rt *Router) suspendLookup(userID string) {
	rt.nameMu.Lock()
	rt.nameRetryAt[userID] = rt.now().Add(rt.cfg.NameRetryAfter)
	rt.nameMu.Unlock()
}

// broadcast delivers event to the current members of roomID except the
// connection whose id equals except. Pass "" to include everyone.
func (rt *Router) broadcast(roomID, except string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Error marshaling %T: %v", event, err)
		return
	}

	for member := range rt.registry.MembersOf(roomID) {
		if member.ID() == except {
			continue
		}
		rt.deliver(member, data)
	}
}

func (rt *Router) reply(sess Session, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Error marshaling %T: %v", event, err)
		return
	}
	rt.deliver(sess.Conn, data)
}

func (rt *Router) deliver(c Conn, data []byte) {
	err := c.Send(data)
	switch {
	case err == nil, errors.Is(err, apperrors.ErrStaleConnection):
	case errors.Is(err, apperrors.ErrSlowConsumer):
		logger.WithFields(logrus.Fields{"conn_id": c.ID()}).Warn("Dropping slow consumer")
		c.Close()
	default:
		logger.WithFields(logrus.Fields{"conn_id": c.ID()}).WithError(err).Warn("Send failed")
	}
}

func (rt *Router) storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rt.cfg.StoreTimeout)
}

func (rt *Router) log(sess Session, roomID string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"conn_id": sess.Conn.ID(),
		"user_id": sess.UserID,
		"room_id": roomID,
	})
}
