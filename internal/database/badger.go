package database

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	apperrors "whiteboard/internal/errors"
	"whiteboard/internal/models"
	"whiteboard/pkg/logger"

	"github.com/dgraph-io/badger/v4"
	"github.com/oklog/ulid/v2"
)

// BadgerDB is an embedded Store for single-node deployments.
//
// Keys are laid out so that a prefix scan returns a room's records in time order:
//
//	chat:{room}:{unix_nano_padded}:{ulid}
//	draw:{room}:{unix_nano_padded}:{ulid}
//	user:{id}
//
// Room ids are base64url encoded so they cannot contain the ':' separator.
type BadgerDB struct {
	db  *badger.DB
	now func() time.Time
}

type badgerChat struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewBadgerDB(path string) (*BadgerDB, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return &BadgerDB{db: db, now: time.Now}, nil
}

func (b *BadgerDB) Close() error {
	return b.db.Close()
}

func roomPrefix(kind, roomID string) string {
	return fmt.Sprintf("%s:%s:", kind, base64.RawURLEncoding.EncodeToString([]byte(roomID)))
}

func recordKey(kind, roomID string, at time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", roomPrefix(kind, roomID), at.UnixNano(), id))
}

func (b *BadgerDB) AppendChat(ctx context.Context, roomID, userID, content string) (*models.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	at := b.now().UTC()
	record := badgerChat{
		ID:        ulid.Make().String(),
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		CreatedAt: at,
	}
	value, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey("chat", roomID, at, record.ID), value)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}
	return &models.ChatMessage{
		ID:        record.ID,
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		CreatedAt: at,
	}, nil
}

// LoadRecentChats walks the room's chats newest first and returns up to limit
// of them, oldest first.
func (b *BadgerDB) LoadRecentChats(ctx context.Context, roomID string, limit int) ([]*models.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(roomPrefix("chat", roomID))

	var records []badgerChat
	err := b.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the largest possible timestamp so reverse iteration starts at the newest key.
		seek := append(slices.Clone(prefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var rec badgerChat
				if err := json.Unmarshal(value, &rec); err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]*models.ChatMessage, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		name, err := b.LookupDisplayName(ctx, rec.UserID)
		if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		messages = append(messages, &models.ChatMessage{
			ID:        rec.ID,
			RoomID:    rec.RoomID,
			UserID:    rec.UserID,
			Username:  name,
			Content:   rec.Content,
			CreatedAt: rec.CreatedAt,
		})
	}
	return messages, nil
}

func (b *BadgerDB) AppendDrawing(ctx context.Context, roomID, userID string, elements []models.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("failed to encode elements: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey("draw", roomID, b.now().UTC(), ulid.Make().String()), value)
	})
}

func (b *BadgerDB) LoadDrawings(ctx context.Context, roomID string) ([]models.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(roomPrefix("draw", roomID))

	var elements []models.Element
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var batch []models.Element
				if err := json.Unmarshal(value, &batch); err != nil {
					logger.Warn("Skipping undecodable drawing batch in room %s: %v", roomID, err)
					return nil
				}
				elements = append(elements, batch...)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return elements, err
}

func (b *BadgerDB) LookupDisplayName(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var name string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:" + userID))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			name = string(value)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", apperrors.ErrUserNotFound
	}
	return name, err
}

// PutDisplayName records the display name for userID.
func (b *BadgerDB) PutDisplayName(userID, name string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("user:"+userID), []byte(name))
	})
}
