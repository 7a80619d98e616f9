// File: internal/repository/repository.go
package repository

import (
	"context"

	"github.com/memochat/memochat/internal/repository/chat"
	"github.com/memochat/memochat/internal/repository/message"
	"gorm.io/gorm"
)

// Stores bundles the repositories participating in one transaction.
type Stores struct {
	Chats    chat.ChatRepository
	Messages message.MessageRepository
}

// UnitOfWork runs a function against a single atomic transaction. Every write
// made through the Stores handed to fn commits together or not at all; any
// error returned by fn rolls the whole transaction back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(s Stores) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(s Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Chats:    chat.NewChatRepository(tx),
			Messages: message.NewMessageRepository(tx),
		})
	})
}
