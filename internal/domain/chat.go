// File: internal/domain/chat.go
package domain

import "time"

// UntitledTitle is the placeholder assigned at chat creation. It marks a chat
// that has never been titled, as opposed to one explicitly renamed.
const UntitledTitle = "新規メモ"

// Chat represents a single note-taking thread owned by one user.
type Chat struct {
	ID                 string     `json:"id" gorm:"primaryKey"`
	OwnerID            string     `json:"owner_id" gorm:"not null;index"` // immutable after creation
	Title              string     `json:"title"`
	LastMessagePreview string     `json:"last_message" gorm:"column:last_message"`
	Favorite           bool       `json:"favorite"`
	FavoritedAt        *time.Time `json:"favorited_at"`
	LastMessageAt      *time.Time `json:"last_at" gorm:"column:last_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Untitled reports whether the chat still carries the placeholder title.
func (c *Chat) Untitled() bool {
	return c.Title == "" || c.Title == UntitledTitle
}
