package matches

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/app"
	"github.com/kindling-app/kindling/internal/cache"
	"github.com/kindling-app/kindling/internal/db"
	apperr "github.com/kindling-app/kindling/internal/errors"
	"github.com/kindling-app/kindling/internal/matching"
	"github.com/kindling-app/kindling/internal/repository"
)

// Service is the read side over matches and reactions, plus unmatching.
type Service struct {
	appCtx    *app.AppContext
	matches   *repository.MatchRepository
	reactions *repository.ReactionRepository
	users     *repository.UserRepository
}

// NewService creates the matches service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		matches:   repository.NewMatchRepository(appCtx.DB),
		reactions: repository.NewReactionRepository(appCtx.DB),
		users:     repository.NewUserRepository(appCtx.DB),
	}
}

// PersonEntry is a match or reaction row resolved to the other participant.
type PersonEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Age       int       `json:"age"`
	Avatar    string    `json:"avatar,omitempty"`
	Type      string    `json:"type"`
	At        time.Time `json:"at"`
}

// Overview is the combined payload backing the matches screen.
type Overview struct {
	Matches  []PersonEntry `json:"matches"`
	YouLiked []PersonEntry `json:"youLiked"`
	LikedYou []PersonEntry `json:"likedYou"`
	Views    []PersonEntry `json:"views"`
}

const viewsCap = 20

// ListMatches returns every match the user participates in, each resolved to
// the other participant with main photo and age, newest first.
func (s *Service) ListMatches(ctx context.Context, userID string) ([]PersonEntry, error) {
	rows, err := s.matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}

	otherIDs := make([]string, 0, len(rows))
	for _, m := range rows {
		otherIDs = append(otherIDs, otherParticipant(m, userID))
	}
	usersByID, err := s.users.GetUsersByIDs(ctx, otherIDs)
	if err != nil {
		return nil, apperr.Map(err)
	}

	entries := make([]PersonEntry, 0, len(rows))
	for _, m := range rows {
		other, ok := usersByID[otherParticipant(m, userID)]
		if !ok {
			continue
		}
		entries = append(entries, personEntry(m.ID, other, "match", m.CreatedAt))
	}
	return entries, nil
}

// GetOverview assembles matches, sent likes, received likes and views in a
// single payload.
func (s *Service) GetOverview(ctx context.Context, userID string) (*Overview, error) {
	overview := &Overview{}

	var err error
	if overview.Matches, err = s.ListMatches(ctx, userID); err != nil {
		return nil, err
	}

	sent, _, err := s.reactions.ListSent(ctx, userID, nil, 100)
	if err != nil {
		return nil, apperr.Map(err)
	}
	received, _, err := s.reactions.ListReceivedLikes(ctx, userID, nil, 100)
	if err != nil {
		return nil, apperr.Map(err)
	}
	views, _, err := s.reactions.ListViews(ctx, userID, nil, viewsCap)
	if err != nil {
		return nil, apperr.Map(err)
	}

	ids := make([]string, 0, len(sent)+len(received)+len(views))
	for _, r := range sent {
		ids = append(ids, r.ToUserID)
	}
	for _, r := range received {
		ids = append(ids, r.FromUserID)
	}
	for _, r := range views {
		ids = append(ids, r.FromUserID)
	}
	usersByID, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Map(err)
	}

	for _, r := range sent {
		// "You liked" only carries positive reactions.
		if r.Type == db.ReactionDislike {
			continue
		}
		if u, ok := usersByID[r.ToUserID]; ok {
			overview.YouLiked = append(overview.YouLiked, personEntry(r.ID, u, r.Type, r.CreatedAt))
		}
	}
	for _, r := range received {
		if u, ok := usersByID[r.FromUserID]; ok {
			overview.LikedYou = append(overview.LikedYou, personEntry(r.ID, u, r.Type, r.CreatedAt))
		}
	}
	for _, r := range views {
		if u, ok := usersByID[r.FromUserID]; ok {
			overview.Views = append(overview.Views, personEntry(r.ID, u, "view", r.CreatedAt))
		}
	}
	return overview, nil
}

// CountLikedYou returns how many users liked the recipient.
// Cache-first: Redis hit refreshes the TTL; a miss falls back to the DB and
// repopulates the cache.
func (s *Service) CountLikedYou(ctx context.Context, userID string) (int64, error) {
	key := s.appCtx.RedisCache.KeyForLikeCount(userID)

	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
			_ = s.appCtx.RedisCache.Client.Expire(ctx, key, cache.LikeCountTTL).Err()
			return n, nil
		}
	}

	count, err := s.reactions.CountReceivedLikes(ctx, userID)
	if err != nil {
		return 0, apperr.Map(err)
	}
	if err := s.appCtx.RedisCache.Set(ctx, key, strconv.FormatInt(count, 10), cache.LikeCountTTL); err != nil {
		s.appCtx.Logger.Warn("like count cache set failed", "user", userID, "err", err)
	}
	return count, nil
}

// DeleteMatch unmatches two users.
//
// Behavior:
//   - Only a participant may delete the match.
//   - The requester's own LIKE/SUPER_LIKE toward the other participant is
//     deleted with it, so the other user can be re-suggested. The other
//     participant's reaction stays: their record of having liked the
//     requester is preserved.
func (s *Service) DeleteMatch(ctx context.Context, matchID, requesterID string) error {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("match not found")
		}
		return apperr.Map(err)
	}
	if match.UserAID != requesterID && match.UserBID != requesterID {
		return apperr.Forbidden("not a participant of this match")
	}
	otherUserID := otherParticipant(*match, requesterID)

	var removed *db.Reaction
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewMatchRepository(tx).Delete(ctx, matchID); err != nil {
			return err
		}
		removed, err = repository.NewReactionRepository(tx).DeleteForPair(ctx, requesterID, otherUserID)
		return err
	})
	if err != nil {
		return apperr.Map(err)
	}

	if removed != nil && (removed.Type == db.ReactionLike || removed.Type == db.ReactionSuperLike) {
		if err := s.appCtx.RedisCache.AdjustLikeCount(ctx, otherUserID, -1); err != nil {
			s.appCtx.Logger.Warn("like count cache adjust failed", "user", otherUserID, "err", err)
		}
	}
	return nil
}

func otherParticipant(m db.Match, userID string) string {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

func personEntry(id string, u db.User, entryType string, at time.Time) PersonEntry {
	avatar := ""
	for _, p := range u.Photos {
		if p.IsMain {
			avatar = p.URL
			break
		}
	}
	if avatar == "" && len(u.Photos) > 0 {
		avatar = u.Photos[0].URL
	}
	return PersonEntry{
		ID:        id,
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       matching.AgeNow(u.DateOfBirth),
		Avatar:    avatar,
		Type:      entryType,
		At:        at,
	}
}
