// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memochat/memochat/internal/domain"
	"github.com/memochat/memochat/internal/repository"
	"github.com/memochat/memochat/internal/repository/chat"
	"github.com/memochat/memochat/internal/repository/message"
	chatservice "github.com/memochat/memochat/internal/services/chat"
)

// AppendResult is everything a client needs after sending a message; no
// follow-up read is required to learn the message ID or an assigned title.
type AppendResult struct {
	MessageID string
	ChatID    string
	Title     string // non-empty only when this append assigned the initial title
}

// MessagePage is one newest-first slice of a chat's history.
type MessagePage struct {
	Items      []domain.Message
	NextCursor string // empty means end of history
}

type ChatService struct {
	config      *chatservice.Config
	uow         repository.UnitOfWork
	chatRepo    chat.ChatRepository
	messageRepo message.MessageRepository
	logger      Logger

	// newID and now are injectable so retries and tests can pin IDs and
	// timestamps. Message IDs are generated before the transaction opens.
	newID func() string
	now   func() time.Time
}

func NewChatService(
	uow repository.UnitOfWork,
	chatRepo chat.ChatRepository,
	messageRepo message.MessageRepository,
	logger Logger,
) (*ChatService, error) {
	if uow == nil {
		return nil, chatservice.NewValidationError("constructor", "unit of work is required")
	}
	if chatRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "chat repository is required")
	}
	if messageRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "message repository is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	config := chatservice.DefaultConfig()
	if err := config.Validate(); err != nil {
		return nil, chatservice.NewValidationError("config", err.Error())
	}

	return &ChatService{
		config:      config,
		uow:         uow,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		logger:      logger,
		newID:       uuid.NewString,
		now:         time.Now,
	}, nil
}

// authorizeChat is the ownership gate preceding every chat-scoped operation.
// It runs against whichever repository it is given, so it works both inside
// and outside a transaction.
func authorizeChat(ctx context.Context, repo chat.ChatRepository, chatID, callerID string) (*domain.Chat, error) {
	record, err := repo.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, chat.ErrChatNotFound) {
			return nil, chatservice.NewNotFoundError(chatID)
		}
		return nil, chatservice.NewTransactionError("authorization", "could not load chat", err)
	}
	if record.OwnerID != callerID {
		return nil, chatservice.NewForbiddenError(callerID, chatID)
	}
	return record, nil
}

// CreateChat creates an empty chat for ownerID. A blank title means untitled;
// the first appended message will then derive one.
func (s *ChatService) CreateChat(ctx context.Context, ownerID, title string) (*domain.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.UntitledTitle
	} else if len([]rune(title)) > s.config.RenameMaxRunes {
		return nil, chatservice.NewValidationError("create_chat", "title too long")
	}

	newChat := &domain.Chat{ID: s.newID(), OwnerID: ownerID, Title: title}
	created, err := s.chatRepo.Create(ctx, newChat)
	if err != nil {
		return nil, chatservice.NewTransactionError("create_chat", "could not create chat", err)
	}

	s.logger.Info("chat created", "chat_id", created.ID, "owner_id", ownerID)
	return created, nil
}

// ListChats returns the owner's chats partitioned into favorites and others,
// each group display-ordered.
func (s *ChatService) ListChats(ctx context.Context, ownerID string) (chatservice.Projection, error) {
	chats, err := s.chatRepo.FindByOwnerID(ctx, ownerID, s.config.MaxListedChats)
	if err != nil {
		return chatservice.Projection{}, chatservice.NewTransactionError("list_chats", "could not list chats", err)
	}
	return chatservice.Project(chats), nil
}

func (s *ChatService) GetChat(ctx context.Context, chatID, callerID string) (*domain.Chat, error) {
	return authorizeChat(ctx, s.chatRepo, chatID, callerID)
}

// RenameChat sets an explicit title, ending automatic title assignment for
// this chat.
func (s *ChatService) RenameChat(ctx context.Context, chatID, callerID, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", chatservice.NewValidationError("rename_chat", "title cannot be empty")
	}
	if len([]rune(title)) > s.config.RenameMaxRunes {
		return "", chatservice.NewValidationError("rename_chat", "title too long")
	}

	if _, err := authorizeChat(ctx, s.chatRepo, chatID, callerID); err != nil {
		return "", err
	}
	if err := s.chatRepo.Rename(ctx, chatID, title); err != nil {
		return "", chatservice.NewTransactionError("rename_chat", "could not rename chat", err)
	}
	return title, nil
}

// SetFavorite toggles the favorite flag. favorited_at is stamped only on the
// false-to-true transition and cleared on unfavorite, so the sidebar falls
// back to last activity.
func (s *ChatService) SetFavorite(ctx context.Context, chatID, callerID string, favorite bool) (bool, error) {
	record, err := authorizeChat(ctx, s.chatRepo, chatID, callerID)
	if err != nil {
		return false, err
	}

	var favoritedAt *time.Time
	switch {
	case favorite && record.Favorite:
		favoritedAt = record.FavoritedAt
	case favorite:
		t := s.now().UTC()
		favoritedAt = &t
	}

	if err := s.chatRepo.SetFavorite(ctx, chatID, favorite, favoritedAt); err != nil {
		return false, chatservice.NewTransactionError("set_favorite", "could not update favorite", err)
	}
	return favorite, nil
}

// DeleteChat removes the chat and all its messages in one transaction. The
// message cascade runs in bounded batches before the chat row goes, so once a
// delete is observed no append can succeed against the chat.
func (s *ChatService) DeleteChat(ctx context.Context, chatID, callerID string) error {
	err := s.uow.Do(ctx, func(st repository.Stores) error {
		if _, err := authorizeChat(ctx, st.Chats, chatID, callerID); err != nil {
			return err
		}
		if _, err := st.Messages.DeleteByChatIDInBatches(ctx, chatID, s.config.DeleteBatchSize); err != nil {
			return chatservice.NewTransactionError("delete_chat", "could not delete messages", err)
		}
		if err := st.Chats.Delete(ctx, chatID, callerID); err != nil {
			return chatservice.NewTransactionError("delete_chat", "could not delete chat", err)
		}
		return nil
	})
	if err != nil {
		return asChatError("delete_chat", err)
	}

	s.logger.Info("chat deleted", "chat_id", chatID, "owner_id", callerID)
	return nil
}

// AppendMessage atomically inserts one message and advances the chat's
// derived metadata. Validation happens before any storage access, and the
// message ID is generated before the transaction opens so a caller that keeps
// the result of a timed-out attempt can retry idempotently.
func (s *ChatService) AppendMessage(ctx context.Context, chatID, callerID, content string) (*AppendResult, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, chatservice.NewValidationError("append_message", "content cannot be empty")
	}

	messageID := s.newID()
	result := &AppendResult{MessageID: messageID, ChatID: chatID}

	err := s.uow.Do(ctx, func(st repository.Stores) error {
		record, err := authorizeChat(ctx, st.Chats, chatID, callerID)
		if err != nil {
			return err
		}

		commitAt := s.now().UTC()
		msg := &domain.Message{
			ID:        messageID,
			ChatID:    chatID,
			AuthorID:  callerID,
			Role:      domain.RoleUser,
			Content:   trimmed,
			CreatedAt: commitAt,
		}
		if _, err := st.Messages.Create(ctx, msg); err != nil {
			return chatservice.NewTransactionError("append_message", "could not create message", err)
		}

		if err := st.Chats.UpdateLastMessage(ctx, chatID, chatservice.DerivePreview(trimmed), commitAt); err != nil {
			return chatservice.NewTransactionError("append_message", "could not update chat metadata", err)
		}

		if record.Untitled() {
			title := chatservice.DeriveTitle(trimmed)
			assigned, err := st.Chats.AssignInitialTitle(ctx, chatID, title)
			if err != nil {
				return chatservice.NewTransactionError("append_message", "could not assign chat title", err)
			}
			if assigned {
				result.Title = title
			}
		}
		return nil
	})
	if err != nil {
		return nil, asChatError("append_message", err)
	}

	s.logger.Debug("message appended", "chat_id", chatID, "message_id", messageID)
	return result, nil
}

// ListMessages pages backward through a chat's history, newest first. An
// unknown or foreign cursor falls back to the most recent page. NextCursor is
// set only when the page came back full, hinting that more may exist.
func (s *ChatService) ListMessages(ctx context.Context, chatID, callerID string, limit int, cursor string) (*MessagePage, error) {
	if limit <= 0 {
		limit = s.config.DefaultPageSize
	}
	if limit > s.config.MaxPageSize {
		limit = s.config.MaxPageSize
	}

	if _, err := authorizeChat(ctx, s.chatRepo, chatID, callerID); err != nil {
		return nil, err
	}

	var before *domain.Message
	if cursor != "" {
		m, err := s.messageRepo.FindByID(ctx, cursor)
		if err != nil && !errors.Is(err, message.ErrMessageNotFound) {
			return nil, chatservice.NewTransactionError("list_messages", "could not resolve cursor", err)
		}
		if m != nil && m.ChatID == chatID {
			before = m
		}
	}

	items, err := s.messageRepo.FindPageByChatID(ctx, chatID, limit, before)
	if err != nil {
		return nil, chatservice.NewTransactionError("list_messages", "could not list messages", err)
	}

	page := &MessagePage{Items: items}
	if len(items) == limit {
		page.NextCursor = items[len(items)-1].ID
	}
	return page, nil
}

// asChatError passes typed service errors through and wraps everything else
// (driver conflicts, timeouts, rollback failures) as a transaction error.
func asChatError(operation string, err error) error {
	var ce *chatservice.ChatError
	if errors.As(err, &ce) {
		return ce
	}
	return chatservice.NewTransactionError(operation, "transaction failed", err)
}
