package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/db"
	"github.com/kindling-app/kindling/internal/repository"
)

// setupTestDB opens an isolated in-memory DB with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db.AllModels()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestUpsert_CreateThenOverwrite(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewReactionRepository(dbase)

	created, prev, err := repo.Upsert(ctx, "u1", "u2", db.ReactionLike)
	require.NoError(t, err)
	assert.Empty(t, prev)
	assert.Equal(t, db.ReactionLike, created.Type)

	// Overwrite with a dislike: same row, same id, createdAt untouched.
	updated, prev, err := repo.Upsert(ctx, "u1", "u2", db.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, db.ReactionLike, prev)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, db.ReactionDislike, updated.Type)

	var count int64
	dbase.Model(&db.Reaction{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpsert_SameTypeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewReactionRepository(dbase)

	first, _, err := repo.Upsert(ctx, "u1", "u2", db.ReactionSuperLike)
	require.NoError(t, err)

	second, prev, err := repo.Upsert(ctx, "u1", "u2", db.ReactionSuperLike)
	require.NoError(t, err)
	assert.Equal(t, db.ReactionSuperLike, prev)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	dbase.Model(&db.Reaction{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListReceivedLikes_ExcludesDislikes(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewReactionRepository(dbase)

	_, _, err := repo.Upsert(ctx, "u1", "me", db.ReactionLike)
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, "u2", "me", db.ReactionSuperLike)
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, "u3", "me", db.ReactionDislike)
	require.NoError(t, err)

	likes, _, err := repo.ListReceivedLikes(ctx, "me", nil, 10)
	require.NoError(t, err)
	require.Len(t, likes, 2)
	for _, r := range likes {
		assert.NotEqual(t, db.ReactionDislike, r.Type)
	}

	// Views see everything, passes included.
	views, _, err := repo.ListViews(ctx, "me", nil, 10)
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestListViews_Pagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewReactionRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	for i := 0; i < 5; i++ {
		r := db.Reaction{
			FromUserID: fmt.Sprintf("u%d", i),
			ToUserID:   "me",
			Type:       db.ReactionLike,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, dbase.Create(&r).Error)
	}

	page1, next, err := repo.ListViews(ctx, "me", nil, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotNil(t, next)
	assert.Equal(t, "u4", page1[0].FromUserID) // newest first

	page2, next2, err := repo.ListViews(ctx, "me", next, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Nil(t, next2)
	assert.Equal(t, "u0", page2[1].FromUserID)
}

func TestSentPartition(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewReactionRepository(dbase)

	_, _, err := repo.Upsert(ctx, "me", "liked1", db.ReactionLike)
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, "me", "liked2", db.ReactionSuperLike)
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, "me", "passed", db.ReactionDislike)
	require.NoError(t, err)

	liked, disliked, err := repo.SentPartition(ctx, "me")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"liked1", "liked2"}, liked)
	assert.True(t, disliked["passed"])
	assert.Len(t, disliked, 1)
}

func TestDeleteForPair(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewReactionRepository(dbase)

	_, _, err := repo.Upsert(ctx, "u1", "u2", db.ReactionLike)
	require.NoError(t, err)

	removed, err := repo.DeleteForPair(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, db.ReactionLike, removed.Type)

	// Second delete is a no-op.
	removed, err = repo.DeleteForPair(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Nil(t, removed)
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewReactionRepository(dbase)

	_, _, err := repo.Upsert(ctx, "me", "u1", db.ReactionLike)
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, "me", "u2", db.ReactionLike)
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, "me", "u3", db.ReactionSuperLike)
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, "u1", "me", db.ReactionLike)
	require.NoError(t, err)
	_, _, err = repo.Upsert(ctx, "u2", "me", db.ReactionDislike)
	require.NoError(t, err)

	likes, err := repo.CountSentByType(ctx, "me", db.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, int64(2), likes)

	superLikes, err := repo.CountSentByType(ctx, "me", db.ReactionSuperLike)
	require.NoError(t, err)
	assert.Equal(t, int64(1), superLikes)

	received, err := repo.CountReceivedLikes(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, int64(1), received)
}
