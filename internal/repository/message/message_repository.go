// File: internal/repository/message/message_repository.go

package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/memochat/memochat/internal/domain"
	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		log.Printf("[MessageRepository] Database error during message creation for chat %s: %v", message.ChatID, err)
		return nil, errors.New("database error creating message")
	}

	return message, nil
}

func (r *gormMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	if messageID == "" {
		return nil, errors.New("invalid message ID")
	}

	var message domain.Message
	err := r.db.WithContext(ctx).First(&message, "id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		log.Printf("[MessageRepository] FindByID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &message, nil
}

func (r *gormMessageRepository) FindPageByChatID(ctx context.Context, chatID string, limit int, before *domain.Message) ([]domain.Message, error) {
	if chatID == "" {
		return nil, errors.New("invalid chat ID")
	}
	if limit <= 0 || limit > 1000 {
		return nil, errors.New("invalid limit: must be between 1 and 1000")
	}

	q := r.db.WithContext(ctx).Where("chat_id = ?", chatID)
	if before != nil {
		// Keyset on (created_at, id): strictly older than the cursor row.
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)",
			before.CreatedAt, before.CreatedAt, before.ID)
	}

	var messages []domain.Message
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error in paginated query for chat %s: %v", chatID, err)
		return nil, errors.New("database error retrieving messages")
	}

	return messages, nil
}

func (r *gormMessageRepository) CountByChatID(ctx context.Context, chatID string) (int64, error) {
	if chatID == "" {
		return 0, errors.New("invalid chat ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for chat %s: %v", chatID, err)
		return 0, errors.New("database error counting chat messages")
	}

	return count, nil
}

func (r *gormMessageRepository) DeleteByChatIDInBatches(ctx context.Context, chatID string, batchSize int) (int64, error) {
	if chatID == "" {
		return 0, errors.New("invalid chat ID")
	}
	if batchSize <= 0 || batchSize > 10000 {
		batchSize = 5000
	}

	var total int64
	for {
		batch := r.db.WithContext(ctx).
			Model(&domain.Message{}).
			Select("id").
			Where("chat_id = ?", chatID).
			Limit(batchSize)

		result := r.db.WithContext(ctx).
			Where("id IN (?)", batch).
			Delete(&domain.Message{})
		if result.Error != nil {
			log.Printf("[MessageRepository] Database error in batched delete for chat %s: %v", chatID, result.Error)
			return total, errors.New("database error deleting messages by chat ID")
		}

		total += result.RowsAffected
		if result.RowsAffected < int64(batchSize) {
			break
		}
	}

	log.Printf("[MessageRepository] Deleted %d messages for chat %s", total, chatID)
	return total, nil
}

func (r *gormMessageRepository) validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ID == "" {
		return errors.New("message ID is required")
	}
	if message.ChatID == "" {
		return errors.New("chat ID is required")
	}
	if message.AuthorID == "" {
		return errors.New("author ID is required")
	}
	if strings.TrimSpace(message.Content) == "" {
		return errors.New("message content cannot be empty")
	}
	if len(message.Content) > 10000 {
		return errors.New("message content too long (max 10000 characters)")
	}
	return nil
}
