// File: internal/domain/message.go
package domain

import "time"

const RoleUser = "user"

// Message represents a single immutable message within a chat. The ID is
// generated by the caller before the append transaction commits, so retries
// of the same logical send reuse the same ID.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ChatID    string    `json:"chat_id" gorm:"not null;index:idx_messages_chat_created"`
	AuthorID  string    `json:"author_id" gorm:"not null"`
	Role      string    `json:"role" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_messages_chat_created"`
}
