package message

import (
	"context"

	"github.com/memochat/memochat/internal/domain"
)

// MessageRepository handles message data operations.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, id string) (*domain.Message, error)

	// FindPageByChatID returns up to limit messages, newest first. When
	// before is non-nil, only messages strictly older than it (keyset on
	// created_at, then id) are returned.
	FindPageByChatID(ctx context.Context, chatID string, limit int, before *domain.Message) ([]domain.Message, error)

	CountByChatID(ctx context.Context, chatID string) (int64, error)

	// DeleteByChatIDInBatches removes every message of a chat in bounded
	// batches and returns the number of rows deleted.
	DeleteByChatIDInBatches(ctx context.Context, chatID string, batchSize int) (int64, error)
}
