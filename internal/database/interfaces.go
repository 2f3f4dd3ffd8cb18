//go:generate go run go.uber.org/mock/mockgen -destination=../mocks/mock_store.go -package=mocks whiteboard/internal/database Store
package database

import (
	"context"

	"whiteboard/internal/models"
)

type ChatRepository interface {
	AppendChat(ctx context.Context, roomID, userID, content string) (*models.ChatMessage, error)
	LoadRecentChats(ctx context.Context, roomID string, limit int) ([]*models.ChatMessage, error)
}

type DrawingRepository interface {
	AppendDrawing(ctx context.Context, roomID, userID string, elements []models.Element) error
	LoadDrawings(ctx context.Context, roomID string) ([]models.Element, error)
}

type UserRepository interface {
	LookupDisplayName(ctx context.Context, userID string) (string, error)
}

type Store interface {
	ChatRepository
	DrawingRepository
	UserRepository
	Close() error
}
