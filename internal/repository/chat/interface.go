package chat

import (
	"context"
	"time"

	"github.com/memochat/memochat/internal/domain"
)

// ChatRepository handles chat data operations.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, id string) (*domain.Chat, error)
	FindByOwnerID(ctx context.Context, ownerID string, limit int) ([]domain.Chat, error)

	// UpdateLastMessage advances the metadata every append touches:
	// updated_at, last_at and the clipped preview.
	UpdateLastMessage(ctx context.Context, chatID, preview string, at time.Time) error

	// AssignInitialTitle sets the title only while the chat is still
	// untitled, and reports whether this call won the assignment.
	AssignInitialTitle(ctx context.Context, chatID, title string) (bool, error)

	Rename(ctx context.Context, chatID, title string) error
	SetFavorite(ctx context.Context, chatID string, favorite bool, favoritedAt *time.Time) error
	Delete(ctx context.Context, chatID, ownerID string) error
}
