// File: internal/services/chat/config.go
package chat

import "fmt"

// Display clipping limits, in runes. Clipped values get an ellipsis appended.
const (
	TitleMaxRunes   = 40
	PreviewMaxRunes = 60
)

type Config struct {
	// Rename validation
	RenameMaxRunes int // maximum title length accepted from an explicit rename

	// Listing / pagination
	MaxListedChats  int // upper bound on chats returned by a list call
	DefaultPageSize int // message page size when the client sends none
	MaxPageSize     int // hard cap on the message page size

	// Deletion
	DeleteBatchSize int // messages removed per batch during a cascade delete
}

func (c *Config) Validate() error {
	if c.RenameMaxRunes <= 0 {
		return fmt.Errorf("rename_max_runes must be positive")
	}
	if c.MaxListedChats <= 0 {
		return fmt.Errorf("max_listed_chats must be positive")
	}
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default_page_size must be within (0, max_page_size]")
	}
	if c.MaxPageSize <= 0 {
		return fmt.Errorf("max_page_size must be positive")
	}
	if c.DeleteBatchSize <= 0 {
		return fmt.Errorf("delete_batch_size must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		RenameMaxRunes:  80,
		MaxListedChats:  200,
		DefaultPageSize: 30,
		MaxPageSize:     100,
		DeleteBatchSize: 5000,
	}
}
