package chat

import (
	"testing"
	"time"

	"github.com/memochat/memochat/internal/domain"
)

func ts(offset int) time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Minute)
}

func ids(chats []domain.Chat) []string {
	out := make([]string, len(chats))
	for i, c := range chats {
		out[i] = c.ID
	}
	return out
}

func TestProject_PartitionsAndOrders(t *testing.T) {
	t1, t2, t3 := ts(1), ts(2), ts(3)
	favAt := t3

	chats := []domain.Chat{
		{ID: "1", Favorite: false, UpdatedAt: t1},
		{ID: "2", Favorite: true, FavoritedAt: &favAt, UpdatedAt: t1},
		{ID: "3", Favorite: false, UpdatedAt: t2},
	}

	p := Project(chats)

	if got := ids(p.Favorites); len(got) != 1 || got[0] != "2" {
		t.Fatalf("favorites = %v, want [2]", got)
	}
	if got := ids(p.Others); len(got) != 2 || got[0] != "3" || got[1] != "1" {
		t.Fatalf("others = %v, want [3 1]", got)
	}
}

func TestProject_FavoriteFallsBackToUpdatedAt(t *testing.T) {
	early, late := ts(1), ts(5)
	mid := ts(3)

	chats := []domain.Chat{
		{ID: "no-stamp-late", Favorite: true, UpdatedAt: late},
		{ID: "stamped-mid", Favorite: true, FavoritedAt: &mid, UpdatedAt: early},
		{ID: "no-stamp-early", Favorite: true, UpdatedAt: early},
	}

	p := Project(chats)

	want := []string{"no-stamp-late", "stamped-mid", "no-stamp-early"}
	got := ids(p.Favorites)
	if len(got) != len(want) {
		t.Fatalf("favorites = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("favorites = %v, want %v", got, want)
		}
	}
}

func TestProject_ZeroTimestampsSortLast(t *testing.T) {
	chats := []domain.Chat{
		{ID: "no-time"},
		{ID: "recent", UpdatedAt: ts(1)},
	}

	p := Project(chats)

	if got := ids(p.Others); got[0] != "recent" || got[1] != "no-time" {
		t.Fatalf("others = %v, want [recent no-time]", got)
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	chats := []domain.Chat{
		{ID: "b", UpdatedAt: ts(1)},
		{ID: "a", UpdatedAt: ts(2)},
	}

	Project(chats)

	if chats[0].ID != "b" || chats[1].ID != "a" {
		t.Fatalf("input slice was reordered: %v", ids(chats))
	}
}
