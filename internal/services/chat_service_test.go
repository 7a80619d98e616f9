// File: internal/services/chat_service_test.go
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/memochat/memochat/internal/domain"
	"github.com/memochat/memochat/internal/repository"
	chatrepo "github.com/memochat/memochat/internal/repository/chat"
	messagerepo "github.com/memochat/memochat/internal/repository/message"
	chatservice "github.com/memochat/memochat/internal/services/chat"
)

const (
	ownerA = "uid-owner-a"
	ownerB = "uid-owner-b"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "memochat_test.db") +
		"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Chat{}, &domain.Message{}))
	return db
}

func newTestService(t *testing.T) (*ChatService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	svc, err := NewChatService(
		repository.NewUnitOfWork(db),
		chatrepo.NewChatRepository(db),
		messagerepo.NewMessageRepository(db),
		&NoOpLogger{},
	)
	require.NoError(t, err)
	return svc, db
}

func TestNewChatService_RequiresDependencies(t *testing.T) {
	db := newTestDB(t)

	_, err := NewChatService(nil, chatrepo.NewChatRepository(db), messagerepo.NewMessageRepository(db), nil)
	assert.True(t, chatservice.IsValidation(err))

	_, err = NewChatService(repository.NewUnitOfWork(db), nil, messagerepo.NewMessageRepository(db), nil)
	assert.True(t, chatservice.IsValidation(err))
}

func TestCreateChat_DefaultsToUntitled(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "   ")
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, ownerA, created.OwnerID)
	assert.Equal(t, domain.UntitledTitle, created.Title)
	assert.True(t, created.Untitled())
	assert.False(t, created.Favorite)
	assert.Nil(t, created.LastMessageAt)
}

func TestCreateChat_RejectsOverlongTitle(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateChat(context.Background(), ownerA, strings.Repeat("x", 81))
	assert.True(t, chatservice.IsValidation(err))
}

func TestAppendMessage_AssignsTitleExactlyOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	first, err := svc.AppendMessage(ctx, created.ID, ownerA, "  Shopping list\nfor the  week ")
	require.NoError(t, err)
	assert.NotEmpty(t, first.MessageID)
	assert.Equal(t, "Shopping list for the week", first.Title)

	record, err := svc.GetChat(ctx, created.ID, ownerA)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list for the week", record.Title)
	assert.Equal(t, "Shopping list for the week", record.LastMessagePreview)
	require.NotNil(t, record.LastMessageAt)

	second, err := svc.AppendMessage(ctx, created.ID, ownerA, "and some eggs")
	require.NoError(t, err)
	assert.Empty(t, second.Title, "second append must not re-assign the title")
	assert.NotEqual(t, first.MessageID, second.MessageID)

	record, err = svc.GetChat(ctx, created.ID, ownerA)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list for the week", record.Title)
	assert.Equal(t, "and some eggs", record.LastMessagePreview)
}

func TestAppendMessage_EmptyContentFailsBeforeStorage(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.AppendMessage(ctx, created.ID, ownerA, content)
		assert.True(t, chatservice.IsValidation(err), "content %q should be rejected", content)
	}

	var count int64
	require.NoError(t, db.Model(&domain.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAppendMessage_ForbiddenLeavesStateUntouched(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	_, err = svc.AppendMessage(ctx, created.ID, ownerB, "sneaky write")
	assert.True(t, chatservice.IsForbidden(err))

	record, err := svc.GetChat(ctx, created.ID, ownerA)
	require.NoError(t, err)
	assert.Equal(t, domain.UntitledTitle, record.Title)
	assert.Empty(t, record.LastMessagePreview)
	assert.Nil(t, record.LastMessageAt)

	var count int64
	require.NoError(t, db.Model(&domain.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAppendMessage_UnknownChat(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AppendMessage(context.Background(), "no-such-chat", ownerA, "hello")
	assert.True(t, chatservice.IsNotFound(err))
}

// Two concurrent first appends must both commit their messages, and exactly
// one of them must win the title assignment. Conflicting transactions may
// fail with a storage conflict; callers retry, which is the documented
// contract.
func TestAppendMessage_ConcurrentTitleAssignment(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	appendWithRetry := func(content string) (*AppendResult, error) {
		var lastErr error
		for attempt := 0; attempt < 50; attempt++ {
			res, err := svc.AppendMessage(ctx, created.ID, ownerA, content)
			if err == nil {
				return res, nil
			}
			lastErr = err
			time.Sleep(5 * time.Millisecond)
		}
		return nil, lastErr
	}

	type outcome struct {
		res *AppendResult
		err error
	}
	results := make(chan outcome, 2)
	for _, content := range []string{"first writer wins", "second writer wins"} {
		go func(content string) {
			res, err := appendWithRetry(content)
			results <- outcome{res: res, err: err}
		}(content)
	}

	assignedTitles := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		out := <-results
		require.NoError(t, out.err)
		if out.res.Title != "" {
			assignedTitles = append(assignedTitles, out.res.Title)
		}
	}

	require.Len(t, assignedTitles, 1, "exactly one append must assign the title")

	var count int64
	require.NoError(t, db.Model(&domain.Message{}).Where("chat_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	record, err := svc.GetChat(ctx, created.ID, ownerA)
	require.NoError(t, err)
	assert.Equal(t, assignedTitles[0], record.Title)
	assert.NotEqual(t, domain.UntitledTitle, record.Title)
	assert.Contains(t, []string{"first writer wins", "second writer wins"}, record.Title)
}

func TestListMessages_PagesBackward(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	repo := messagerepo.NewMessageRepository(db)
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 35; i++ {
		_, err := repo.Create(ctx, &domain.Message{
			ID:        fmt.Sprintf("msg-%02d", i),
			ChatID:    created.ID,
			AuthorID:  ownerA,
			Role:      domain.RoleUser,
			Content:   fmt.Sprintf("note %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	page1, err := svc.ListMessages(ctx, created.ID, ownerA, 30, "")
	require.NoError(t, err)
	require.Len(t, page1.Items, 30)
	assert.Equal(t, "msg-34", page1.Items[0].ID, "newest first")
	assert.Equal(t, "msg-05", page1.Items[29].ID)
	require.Equal(t, "msg-05", page1.NextCursor)

	page2, err := svc.ListMessages(ctx, created.ID, ownerA, 30, page1.NextCursor)
	require.NoError(t, err)
	require.Len(t, page2.Items, 5)
	assert.Equal(t, "msg-04", page2.Items[0].ID)
	assert.Equal(t, "msg-00", page2.Items[4].ID)
	assert.Empty(t, page2.NextCursor, "end of history")
}

func TestListMessages_ClampsLimitAndIgnoresBadCursor(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	repo := messagerepo.NewMessageRepository(db)
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, &domain.Message{
			ID:        fmt.Sprintf("m-%d", i),
			ChatID:    created.ID,
			AuthorID:  ownerA,
			Role:      domain.RoleUser,
			Content:   "x",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	// Zero limit falls back to the default page size.
	page, err := svc.ListMessages(ctx, created.ID, ownerA, 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Empty(t, page.NextCursor)

	// An oversized limit is clamped rather than rejected.
	page, err = svc.ListMessages(ctx, created.ID, ownerA, 5000, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)

	// An unknown cursor means "start from the most recent".
	page, err = svc.ListMessages(ctx, created.ID, ownerA, 10, "never-existed")
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, "m-4", page.Items[0].ID)
}

func TestListMessages_ForbiddenForNonOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	_, err = svc.ListMessages(ctx, created.ID, ownerB, 10, "")
	assert.True(t, chatservice.IsForbidden(err))
}

func TestDeleteChat_CascadesMessages(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		_, err := svc.AppendMessage(ctx, created.ID, ownerA, fmt.Sprintf("note %d", i))
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteChat(ctx, created.ID, ownerA))

	_, err = svc.GetChat(ctx, created.ID, ownerA)
	assert.True(t, chatservice.IsNotFound(err))

	var count int64
	require.NoError(t, db.Model(&domain.Message{}).Where("chat_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteChat_ForbiddenForNonOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	err = svc.DeleteChat(ctx, created.ID, ownerB)
	assert.True(t, chatservice.IsForbidden(err))

	// Still there for its owner.
	_, err = svc.GetChat(ctx, created.ID, ownerA)
	assert.NoError(t, err)
}

func TestRenameChat_EndsAutomaticTitling(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	title, err := svc.RenameChat(ctx, created.ID, ownerA, "  Trip planning  ")
	require.NoError(t, err)
	assert.Equal(t, "Trip planning", title)

	res, err := svc.AppendMessage(ctx, created.ID, ownerA, "pack the tent")
	require.NoError(t, err)
	assert.Empty(t, res.Title)

	record, err := svc.GetChat(ctx, created.ID, ownerA)
	require.NoError(t, err)
	assert.Equal(t, "Trip planning", record.Title)
}

func TestRenameChat_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	_, err = svc.RenameChat(ctx, created.ID, ownerA, "   ")
	assert.True(t, chatservice.IsValidation(err))

	_, err = svc.RenameChat(ctx, created.ID, ownerA, strings.Repeat("長", 81))
	assert.True(t, chatservice.IsValidation(err))

	// Exactly at the limit is accepted.
	_, err = svc.RenameChat(ctx, created.ID, ownerA, strings.Repeat("長", 80))
	assert.NoError(t, err)
}

func TestSetFavorite_StampsOnlyOnTransition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateChat(ctx, ownerA, "")
	require.NoError(t, err)

	fav, err := svc.SetFavorite(ctx, created.ID, ownerA, true)
	require.NoError(t, err)
	assert.True(t, fav)

	record, err := svc.GetChat(ctx, created.ID, ownerA)
	require.NoError(t, err)
	require.NotNil(t, record.FavoritedAt)
	stamped := *record.FavoritedAt

	// Favoriting an already-favorited chat keeps the original stamp.
	_, err = svc.SetFavorite(ctx, created.ID, ownerA, true)
	require.NoError(t, err)
	record, err = svc.GetChat(ctx, created.ID, ownerA)
	require.NoError(t, err)
	require.NotNil(t, record.FavoritedAt)
	assert.True(t, stamped.Equal(*record.FavoritedAt))

	// Unfavoriting clears the stamp.
	fav, err = svc.SetFavorite(ctx, created.ID, ownerA, false)
	require.NoError(t, err)
	assert.False(t, fav)
	record, err = svc.GetChat(ctx, created.ID, ownerA)
	require.NoError(t, err)
	assert.False(t, record.Favorite)
	assert.Nil(t, record.FavoritedAt)
}

func TestListChats_ProjectsFavoritesFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	plain, err := svc.CreateChat(ctx, ownerA, "plain")
	require.NoError(t, err)
	starred, err := svc.CreateChat(ctx, ownerA, "starred")
	require.NoError(t, err)
	_, err = svc.CreateChat(ctx, ownerB, "someone else's")
	require.NoError(t, err)

	_, err = svc.SetFavorite(ctx, starred.ID, ownerA, true)
	require.NoError(t, err)

	projection, err := svc.ListChats(ctx, ownerA)
	require.NoError(t, err)

	require.Len(t, projection.Favorites, 1)
	assert.Equal(t, starred.ID, projection.Favorites[0].ID)
	require.Len(t, projection.Others, 1)
	assert.Equal(t, plain.ID, projection.Others[0].ID)
}
