// File: internal/repository/chat/chat_repository.go

package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/memochat/memochat/internal/domain"
	"gorm.io/gorm"
)

var ErrChatNotFound = errors.New("chat not found")

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if err := r.validateChatInput(chat); err != nil {
		log.Printf("[ChatRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		log.Printf("[ChatRepository] Database error during chat creation for owner %s: %v", chat.OwnerID, err)
		return nil, errors.New("database error creating chat")
	}

	return chat, nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, chatID string) (*domain.Chat, error) {
	if chatID == "" {
		return nil, errors.New("invalid chat ID")
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).First(&chat, "id = ?", chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		log.Printf("[ChatRepository] FindByID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &chat, nil
}

func (r *gormChatRepository) FindByOwnerID(ctx context.Context, ownerID string, limit int) ([]domain.Chat, error) {
	if ownerID == "" {
		return nil, errors.New("invalid owner ID")
	}
	if limit <= 0 || limit > 1000 {
		return nil, errors.New("invalid limit: must be between 1 and 1000")
	}

	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Find(&chats).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error finding chats for owner %s: %v", ownerID, err)
		return nil, errors.New("database error fetching chats")
	}

	return chats, nil
}

func (r *gormChatRepository) UpdateLastMessage(ctx context.Context, chatID, preview string, at time.Time) error {
	if chatID == "" {
		return errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message": preview,
			"last_at":      at,
			"updated_at":   at,
		})
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating last message for chat %s: %v", chatID, result.Error)
		return errors.New("database error updating chat metadata")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}

	return nil
}

// AssignInitialTitle is a guarded update: the WHERE clause only matches while
// the chat is untitled, so under concurrent appends exactly one caller wins.
func (r *gormChatRepository) AssignInitialTitle(ctx context.Context, chatID, title string) (bool, error) {
	if chatID == "" {
		return false, errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ? AND (title = '' OR title = ?)", chatID, domain.UntitledTitle).
		Update("title", title)
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error assigning title for chat %s: %v", chatID, result.Error)
		return false, errors.New("database error assigning chat title")
	}

	return result.RowsAffected > 0, nil
}

func (r *gormChatRepository) Rename(ctx context.Context, chatID, title string) error {
	if chatID == "" {
		return errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"title":      title,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error renaming chat %s: %v", chatID, result.Error)
		return errors.New("database error renaming chat")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}

	return nil
}

func (r *gormChatRepository) SetFavorite(ctx context.Context, chatID string, favorite bool, favoritedAt *time.Time) error {
	if chatID == "" {
		return errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"favorite":     favorite,
			"favorited_at": favoritedAt,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error setting favorite for chat %s: %v", chatID, result.Error)
		return errors.New("database error updating favorite status")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}

	return nil
}

func (r *gormChatRepository) Delete(ctx context.Context, chatID, ownerID string) error {
	if chatID == "" || ownerID == "" {
		return errors.New("invalid chat ID or owner ID")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", chatID, ownerID).
		Delete(&domain.Chat{})
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error deleting chat %s for owner %s: %v", chatID, ownerID, result.Error)
		return errors.New("database error deleting chat")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}

	log.Printf("[ChatRepository] Chat deleted: %s for owner %s", chatID, ownerID)
	return nil
}

func (r *gormChatRepository) validateChatInput(chat *domain.Chat) error {
	if chat == nil {
		return errors.New("chat cannot be nil")
	}
	if chat.ID == "" {
		return errors.New("chat ID is required")
	}
	if chat.OwnerID == "" {
		return errors.New("owner ID is required")
	}
	if len(chat.Title) > 200 {
		return errors.New("title must be 200 characters or less")
	}
	return nil
}
