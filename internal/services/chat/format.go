// File: internal/services/chat/format.go
package chat

import (
	"strings"

	"github.com/memochat/memochat/internal/domain"
)

const ellipsis = "…"

// DeriveTitle builds a one-line title from the first message of a chat.
// Whitespace runs (newlines and tabs included) collapse to single spaces;
// whitespace-only input falls back to the untitled placeholder. Titles longer
// than TitleMaxRunes are clipped with an ellipsis.
func DeriveTitle(text string) string {
	t := normalizeWhitespace(text)
	if t == "" {
		return domain.UntitledTitle
	}
	return clipRunes(t, TitleMaxRunes)
}

// DerivePreview builds the sidebar preview line for the most recent message.
// Same normalization as DeriveTitle, clipped to PreviewMaxRunes.
func DerivePreview(text string) string {
	return clipRunes(normalizeWhitespace(text), PreviewMaxRunes)
}

func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func clipRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + ellipsis
}
