package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "whiteboard/internal/errors"
	"whiteboard/internal/models"
	"whiteboard/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS chats (
	id         TEXT PRIMARY KEY,
	room_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS chats_room_created_idx ON chats (room_id, created_at);

CREATE TABLE IF NOT EXISTS drawings (
	id         BIGSERIAL PRIMARY KEY,
	room_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	elements   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS drawings_room_idx ON drawings (room_id, id);
`

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

// EnsureSchema creates the tables used by the store when they are missing.
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// Chat Repository Implementation
func (db *PostgresDB) AppendChat(ctx context.Context, roomID, userID, content string) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		ID:        ulid.Make().String(),
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO chats (id, room_id, user_id, content, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := db.pool.Exec(ctx, query, msg.ID, msg.RoomID, msg.UserID, msg.Content, msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}
	return msg, nil
}

func (db *PostgresDB) LoadRecentChats(ctx context.Context, roomID string, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT c.id, c.room_id, c.user_id, c.content, COALESCE(u.name, ''), c.created_at
		FROM chats c
		LEFT JOIN users u ON c.user_id = u.id
		WHERE c.room_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2`

	rows, err := db.pool.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		msg := &models.ChatMessage{}
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.UserID, &msg.Content, &msg.Username, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to show oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// Drawing Repository Implementation
func (db *PostgresDB) AppendDrawing(ctx context.Context, roomID, userID string, elements []models.Element) error {
	payload, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("failed to encode elements: %w", err)
	}

	query := `INSERT INTO drawings (room_id, user_id, elements, created_at) VALUES ($1, $2, $3, NOW())`
	if _, err := db.pool.Exec(ctx, query, roomID, userID, payload); err != nil {
		return fmt.Errorf("failed to save drawing: %w", err)
	}
	return nil
}

func (db *PostgresDB) LoadDrawings(ctx context.Context, roomID string) ([]models.Element, error) {
	query := `SELECT elements FROM drawings WHERE room_id = $1 ORDER BY id`

	rows, err := db.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var elements []models.Element
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var batch []models.Element
		if err := json.Unmarshal(payload, &batch); err != nil {
			logger.Warn("Skipping undecodable drawing batch in room %s: %v", roomID, err)
			continue
		}
		elements = append(elements, batch...)
	}

	return elements, rows.Err()
}

// User Repository Implementation
func (db *PostgresDB) LookupDisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	err := db.pool.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, userID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return name, nil
}
