package chat

import (
	"strings"
	"testing"

	"github.com/memochat/memochat/internal/domain"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Buy milk", "Buy milk"},
		{"collapses whitespace runs", "  Buy\n\nmilk\t today  ", "Buy milk today"},
		{"empty input", "", domain.UntitledTitle},
		{"whitespace only", " \n\t\r ", domain.UntitledTitle},
		{"exactly max runes", strings.Repeat("a", TitleMaxRunes), strings.Repeat("a", TitleMaxRunes)},
		{"one over max", strings.Repeat("a", TitleMaxRunes+1), strings.Repeat("a", TitleMaxRunes) + "…"},
		{"multibyte runes clip on rune boundary", strings.Repeat("語", TitleMaxRunes+1), strings.Repeat("語", TitleMaxRunes) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.in); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDerivePreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Pick up the dry cleaning", "Pick up the dry cleaning"},
		{"empty input", "", ""},
		{"exactly max runes", strings.Repeat("b", PreviewMaxRunes), strings.Repeat("b", PreviewMaxRunes)},
		{"one over max", strings.Repeat("b", PreviewMaxRunes+1), strings.Repeat("b", PreviewMaxRunes) + "…"},
		{"newlines collapse", "line one\nline two", "line one line two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivePreview(tt.in); got != tt.want {
				t.Errorf("DerivePreview(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Both derivations must be referentially transparent: the append transaction
// relies on recomputing them yielding identical results.
func TestDerive_Deterministic(t *testing.T) {
	inputs := []string{"", "   ", "short", strings.Repeat("x", 500), "改行\nあり\tの テキスト"}
	for _, in := range inputs {
		if DeriveTitle(in) != DeriveTitle(in) {
			t.Errorf("DeriveTitle(%q) is not deterministic", in)
		}
		if DerivePreview(in) != DerivePreview(in) {
			t.Errorf("DerivePreview(%q) is not deterministic", in)
		}
	}
}
