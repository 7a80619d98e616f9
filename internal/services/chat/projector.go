// File: internal/services/chat/projector.go
package chat

import (
	"sort"
	"time"

	"github.com/memochat/memochat/internal/domain"
)

// Projection is the favorite-partitioned, display-ordered view of a user's
// chats. Favorites render above the rest under their own section header.
type Projection struct {
	Favorites []domain.Chat `json:"favorites"`
	Others    []domain.Chat `json:"others"`
}

// Project partitions chats into favorites and others and sorts each group for
// display. Favorites order by the time they were favorited (falling back to
// last activity), others by last activity, both newest first. Zero timestamps
// sort last. The input slice is not modified.
func Project(chats []domain.Chat) Projection {
	p := Projection{
		Favorites: make([]domain.Chat, 0, len(chats)),
		Others:    make([]domain.Chat, 0, len(chats)),
	}
	for _, c := range chats {
		if c.Favorite {
			p.Favorites = append(p.Favorites, c)
		} else {
			p.Others = append(p.Others, c)
		}
	}

	sort.SliceStable(p.Favorites, func(i, j int) bool {
		return favoriteSortKey(&p.Favorites[i]).After(favoriteSortKey(&p.Favorites[j]))
	})
	sort.SliceStable(p.Others, func(i, j int) bool {
		return p.Others[i].UpdatedAt.After(p.Others[j].UpdatedAt)
	})
	return p
}

func favoriteSortKey(c *domain.Chat) time.Time {
	if c.FavoritedAt != nil {
		return *c.FavoritedAt
	}
	return c.UpdatedAt
}
