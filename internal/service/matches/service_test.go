package matches_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/app"
	"github.com/kindling-app/kindling/internal/cache"
	"github.com/kindling-app/kindling/internal/config"
	"github.com/kindling-app/kindling/internal/db"
	apperr "github.com/kindling-app/kindling/internal/errors"
	"github.com/kindling-app/kindling/internal/service/matches"
)

func setupApp(t *testing.T) (*app.AppContext, *miniredis.Miniredis) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(db.AllModels()...))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	appCtx := app.New(cfg, dbase, cache.NewRedisCache(cfg), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return appCtx, mr
}

func createUser(t *testing.T, gdb *gorm.DB, id string) {
	t.Helper()
	user := db.User{
		ID:           id,
		Email:        id + "@test.com",
		PasswordHash: "x",
		FirstName:    id,
		LastName:     "Test",
		DateOfBirth:  time.Date(1994, 8, 21, 0, 0, 0, 0, time.UTC),
		Profile:      &db.Profile{Gender: db.GenderFemale, Orientation: db.OrientationBisexual},
	}
	require.NoError(t, gdb.Create(&user).Error)
}

// matchPair records both likes and the match row, as the formation engine
// would have left them.
func matchPair(t *testing.T, gdb *gorm.DB, a, b string) db.Match {
	t.Helper()
	require.NoError(t, gdb.Create(&db.Reaction{FromUserID: a, ToUserID: b, Type: db.ReactionLike}).Error)
	require.NoError(t, gdb.Create(&db.Reaction{FromUserID: b, ToUserID: a, Type: db.ReactionLike}).Error)
	match := db.Match{UserAID: a, UserBID: b}
	require.NoError(t, gdb.Create(&match).Error)
	return match
}

func TestListMatches_ResolvesOtherParticipant(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := setupApp(t)
	createUser(t, appCtx.DB, "alice")
	createUser(t, appCtx.DB, "bob")
	matchPair(t, appCtx.DB, "alice", "bob")

	svc := matches.NewService(appCtx)

	got, err := svc.ListMatches(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].UserID)
	assert.Equal(t, "match", got[0].Type)

	got, err = svc.ListMatches(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].UserID)
}

func TestGetOverview_Sections(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := setupApp(t)
	createUser(t, appCtx.DB, "alice")
	createUser(t, appCtx.DB, "bob")
	createUser(t, appCtx.DB, "carol")
	createUser(t, appCtx.DB, "dave")
	matchPair(t, appCtx.DB, "alice", "bob")

	require.NoError(t, appCtx.DB.Create(&db.Reaction{FromUserID: "alice", ToUserID: "carol", Type: db.ReactionDislike}).Error)
	require.NoError(t, appCtx.DB.Create(&db.Reaction{FromUserID: "dave", ToUserID: "alice", Type: db.ReactionSuperLike}).Error)

	svc := matches.NewService(appCtx)
	overview, err := svc.GetOverview(ctx, "alice")
	require.NoError(t, err)

	require.Len(t, overview.Matches, 1)
	assert.Equal(t, "bob", overview.Matches[0].UserID)

	// The dislike of carol is hidden from "you liked".
	require.Len(t, overview.YouLiked, 1)
	assert.Equal(t, "bob", overview.YouLiked[0].UserID)

	require.Len(t, overview.LikedYou, 2)

	// Views carry everything received, dislikes included... but alice's own
	// dislike of carol is outbound, so only bob's and dave's rows show.
	assert.Len(t, overview.Views, 2)
}

func TestCountLikedYou_CacheFirst(t *testing.T) {
	ctx := context.Background()
	appCtx, mr := setupApp(t)
	createUser(t, appCtx.DB, "alice")
	createUser(t, appCtx.DB, "bob")
	require.NoError(t, appCtx.DB.Create(&db.Reaction{FromUserID: "bob", ToUserID: "alice", Type: db.ReactionLike}).Error)

	svc := matches.NewService(appCtx)

	n, err := svc.CountLikedYou(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// The DB fallback populated the cache.
	key := appCtx.RedisCache.KeyForLikeCount("alice")
	cached, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "1", cached)

	// A cached value is served as-is, without consulting the DB.
	require.NoError(t, mr.Set(key, "7"))
	n, err = svc.CountLikedYou(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestDeleteMatch_RemovesOnlyRequestersReaction(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := setupApp(t)
	createUser(t, appCtx.DB, "alice")
	createUser(t, appCtx.DB, "bob")
	match := matchPair(t, appCtx.DB, "alice", "bob")

	svc := matches.NewService(appCtx)
	require.NoError(t, svc.DeleteMatch(ctx, match.ID, "alice"))

	var count int64
	appCtx.DB.Model(&db.Match{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// alice's like is gone, bob's stays so alice can resurface for him.
	err := appCtx.DB.First(&db.Reaction{}, "from_user_id = ? AND to_user_id = ?", "alice", "bob").Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, appCtx.DB.First(&db.Reaction{}, "from_user_id = ? AND to_user_id = ?", "bob", "alice").Error)
}

func TestDeleteMatch_ParticipantOnly(t *testing.T) {
	ctx := context.Background()
	appCtx, _ := setupApp(t)
	createUser(t, appCtx.DB, "alice")
	createUser(t, appCtx.DB, "bob")
	createUser(t, appCtx.DB, "carol")
	match := matchPair(t, appCtx.DB, "alice", "bob")

	svc := matches.NewService(appCtx)

	err := svc.DeleteMatch(ctx, match.ID, "carol")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = svc.DeleteMatch(ctx, "no-such-match", "alice")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteMatch_AdjustsCachedLikeCount(t *testing.T) {
	ctx := context.Background()
	appCtx, mr := setupApp(t)
	createUser(t, appCtx.DB, "alice")
	createUser(t, appCtx.DB, "bob")
	match := matchPair(t, appCtx.DB, "alice", "bob")

	svc := matches.NewService(appCtx)

	// Warm the cache for bob: alice's like counts toward it.
	n, err := svc.CountLikedYou(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, svc.DeleteMatch(ctx, match.ID, "alice"))

	cached, err := mr.Get(appCtx.RedisCache.KeyForLikeCount("bob"))
	require.NoError(t, err)
	assert.Equal(t, "0", cached)
}
