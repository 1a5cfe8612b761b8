package accounts_test

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
	"github.com/kindling-app/kindling/internal/auth"
	"github.com/kindling-app/kindling/internal/cache"
	"github.com/kindling-app/kindling/internal/config"
	"github.com/kindling-app/kindling/internal/db"
	apperr "github.com/kindling-app/kindling/internal/errors"
	"github.com/kindling-app/kindling/internal/service/accounts"
)

func setupApp(t *testing.T) *app.AppContext {
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
	cfg.Upload.Dir = t.TempDir()

	return app.New(cfg, dbase, cache.NewRedisCache(cfg), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func signupInput(email string) accounts.SignupInput {
	return accounts.SignupInput{
		Email:       email,
		Password:    "password123",
		FirstName:   "Alice",
		LastName:    "Test",
		DateOfBirth: time.Date(1994, 8, 21, 0, 0, 0, 0, time.UTC),
		Gender:      db.GenderFemale,
		Orientation: db.OrientationHeterosexual,
	}
}

func TestSignup_OpensSession(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	res, err := svc.Signup(ctx, signupInput("alice@test.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice@test.com", res.User.Email)

	claims, err := auth.VerifyToken(appCtx.Config.Auth.JWTSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
}

func TestSignup_RejectsMinors(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	in := signupInput("kid@test.com")
	in.DateOfBirth = time.Now().UTC().AddDate(-17, 0, 0)

	_, err := svc.Signup(ctx, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	_, err := svc.Signup(ctx, signupInput("alice@test.com"))
	require.NoError(t, err)

	_, err = svc.Signup(ctx, signupInput("alice@test.com"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSignin_WrongCredentialsIndistinguishable(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	_, err := svc.Signup(ctx, signupInput("alice@test.com"))
	require.NoError(t, err)

	_, errPassword := svc.Signin(ctx, "alice@test.com", "wrong")
	_, errEmail := svc.Signin(ctx, "nobody@test.com", "password123")

	require.Error(t, errPassword)
	require.Error(t, errEmail)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errPassword))
	assert.Equal(t, errPassword.Error(), errEmail.Error())
}

func TestSignin_ThenLogoutInvalidatesSession(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	_, err := svc.Signup(ctx, signupInput("alice@test.com"))
	require.NoError(t, err)

	res, err := svc.Signin(ctx, "alice@test.com", "password123")
	require.NoError(t, err)

	claims, err := auth.VerifyToken(appCtx.Config.Auth.JWTSecret, res.Token)
	require.NoError(t, err)

	sessions := auth.NewSessionStore(appCtx.DB)
	session, err := sessions.Validate(ctx, claims.SessionID, res.Token)
	require.NoError(t, err)
	require.NotNil(t, session)

	require.NoError(t, svc.Logout(ctx, claims.SessionID))

	session, err = sessions.Validate(ctx, claims.SessionID, res.Token)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestMe_AndGetUser(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	res, err := svc.Signup(ctx, signupInput("alice@test.com"))
	require.NoError(t, err)

	me, err := svc.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", me.Email)
	assert.Equal(t, db.GenderFemale, me.Gender)

	// The public card never exposes the email.
	public, err := svc.GetUser(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Empty(t, public.Email)
	assert.Equal(t, "Alice", public.FirstName)

	_, err = svc.GetUser(ctx, "nobody")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUploadPhoto_MainHandling(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	res, err := svc.Signup(ctx, signupInput("alice@test.com"))
	require.NoError(t, err)
	userID := res.User.ID

	// First photo becomes main regardless of the flag.
	first, err := svc.UploadPhoto(ctx, userID, []byte("photo-one"), false)
	require.NoError(t, err)
	assert.True(t, first.IsMain)
	assert.Equal(t, 0, first.Order)

	second, err := svc.UploadPhoto(ctx, userID, []byte("photo-two"), false)
	require.NoError(t, err)
	assert.False(t, second.IsMain)
	assert.Equal(t, 1, second.Order)

	// Promoting a new main demotes the old one.
	third, err := svc.UploadPhoto(ctx, userID, []byte("photo-three"), true)
	require.NoError(t, err)
	assert.True(t, third.IsMain)

	var old db.Photo
	require.NoError(t, appCtx.DB.First(&old, "id = ?", first.ID).Error)
	assert.False(t, old.IsMain)
}

func TestUploadPhoto_CapEnforced(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	res, err := svc.Signup(ctx, signupInput("alice@test.com"))
	require.NoError(t, err)

	for i := 0; i < db.MaxPhotosPerUser; i++ {
		_, err := svc.UploadPhoto(ctx, res.User.ID, []byte(fmt.Sprintf("photo-%d", i)), false)
		require.NoError(t, err)
	}

	_, err = svc.UploadPhoto(ctx, res.User.ID, []byte("one-too-many"), false)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeletePhoto_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	alice, err := svc.Signup(ctx, signupInput("alice@test.com"))
	require.NoError(t, err)
	bob, err := svc.Signup(ctx, signupInput("bob@test.com"))
	require.NoError(t, err)

	photo, err := svc.UploadPhoto(ctx, alice.User.ID, []byte("photo"), false)
	require.NoError(t, err)

	err = svc.DeletePhoto(ctx, photo.ID, bob.User.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, svc.DeletePhoto(ctx, photo.ID, alice.User.ID))

	err = svc.DeletePhoto(ctx, photo.ID, alice.User.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := accounts.NewService(appCtx)

	alice, err := svc.Signup(ctx, signupInput("alice@test.com"))
	require.NoError(t, err)
	bob, err := svc.Signup(ctx, signupInput("bob@test.com"))
	require.NoError(t, err)
	carol, err := svc.Signup(ctx, signupInput("carol@test.com"))
	require.NoError(t, err)

	a, b, c := alice.User.ID, bob.User.ID, carol.User.ID
	require.NoError(t, appCtx.DB.Create(&db.Reaction{FromUserID: a, ToUserID: b, Type: db.ReactionLike}).Error)
	require.NoError(t, appCtx.DB.Create(&db.Reaction{FromUserID: a, ToUserID: c, Type: db.ReactionSuperLike}).Error)
	require.NoError(t, appCtx.DB.Create(&db.Reaction{FromUserID: b, ToUserID: a, Type: db.ReactionLike}).Error)
	require.NoError(t, appCtx.DB.Create(&db.Match{UserAID: a, UserBID: b}).Error)

	stats, err := svc.GetStats(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalLikes)
	assert.Equal(t, int64(1), stats.TotalSuperLikes)
	assert.Equal(t, int64(1), stats.TotalMatches)
	assert.Equal(t, int64(1), stats.TotalLikesReceived)
}
