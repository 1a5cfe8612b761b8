package reactions

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/app"
	"github.com/kindling-app/kindling/internal/db"
	apperr "github.com/kindling-app/kindling/internal/errors"
	"github.com/kindling-app/kindling/internal/matching"
	"github.com/kindling-app/kindling/internal/metrics"
	"github.com/kindling-app/kindling/internal/repository"
)

// Service owns the reaction ledger operations and the match formation
// engine that runs synchronously after every positive reaction.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
}

// NewService creates the reactions service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// ReactionView is a reaction as returned to callers.
type ReactionView struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MatchView is a freshly formed match as returned to callers.
type MatchView struct {
	ID        string    `json:"id"`
	UserAID   string    `json:"userAId"`
	UserBID   string    `json:"userBId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmitResult is the outcome of a reaction submission. Matched is true only
// on the single call that materialized the match.
type SubmitResult struct {
	Reaction ReactionView `json:"reaction"`
	Matched  bool         `json:"matched"`
	Match    *MatchView   `json:"match,omitempty"`
}

func isLikeType(t string) bool {
	return t == db.ReactionLike || t == db.ReactionSuperLike
}

func validReactionType(t string) bool {
	return t == db.ReactionLike || t == db.ReactionSuperLike || t == db.ReactionDislike
}

// Submit upserts a reaction and runs the match formation check.
//
// Behavior:
//   - Self-reactions and unknown types fail validation; unknown targets 404.
//   - Upsert and formation run in one transaction: either the reaction row
//     and any resulting match both commit, or neither does.
//   - LIKE/SUPER_LIKE with a reciprocal like forms a match exactly once per
//     unordered pair; a racing duplicate insert is swallowed as benign.
//   - Overwriting to DISLIKE revokes any standing match for the pair:
//     dislike always wins.
//   - The recipient's cached like count is shifted by the like-state delta.
func (s *Service) Submit(ctx context.Context, fromUserID, toUserID, reactionType string) (*SubmitResult, error) {
	s.appCtx.Logger.Debug("submit reaction", "from", fromUserID, "to", toUserID, "type", reactionType)

	if !validReactionType(reactionType) {
		return nil, apperr.Validation("unknown reaction type")
	}
	if fromUserID == toUserID {
		return nil, apperr.Validation("cannot react to yourself")
	}
	if _, err := s.users.GetByID(ctx, toUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("target user not found")
		}
		return nil, apperr.Map(err)
	}

	var (
		reaction *db.Reaction
		previous string
		match    *db.Match
	)

	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reactionRepo := repository.NewReactionRepository(tx)
		matchRepo := repository.NewMatchRepository(tx)

		var err error
		reaction, previous, err = reactionRepo.Upsert(ctx, fromUserID, toUserID, reactionType)
		if err != nil {
			return err
		}

		if reactionType == db.ReactionDislike {
			// A later-established dislike revokes a standing match.
			return matchRepo.DeleteByPair(ctx, fromUserID, toUserID)
		}

		reciprocal, err := reactionRepo.FindReciprocalLike(ctx, toUserID, fromUserID)
		if err != nil || reciprocal == nil {
			return err
		}

		existing, err := matchRepo.FindByPair(ctx, fromUserID, toUserID)
		if err != nil || existing != nil {
			return err
		}

		match, err = matchRepo.Create(ctx, fromUserID, toUserID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against the reciprocal submission; the pair is
			// already matched, which is the outcome we wanted.
			match = nil
			return nil
		}
		return err
	})
	if err != nil {
		s.appCtx.Logger.Error("submit reaction failed", "err", err)
		return nil, apperr.Map(err)
	}

	s.adjustLikeCount(ctx, toUserID, likeDelta(previous, reactionType))

	result := &SubmitResult{
		Reaction: ReactionView{
			ID:         reaction.ID,
			FromUserID: reaction.FromUserID,
			ToUserID:   reaction.ToUserID,
			Type:       reaction.Type,
			CreatedAt:  reaction.CreatedAt,
		},
	}
	if match != nil {
		metrics.RecordMatchFormed()
		s.appCtx.Logger.Info("match formed", "user_a", match.UserAID, "user_b", match.UserBID)
		result.Matched = true
		result.Match = &MatchView{
			ID:        match.ID,
			UserAID:   match.UserAID,
			UserBID:   match.UserBID,
			CreatedAt: match.CreatedAt,
		}
	}
	return result, nil
}

// Delete withdraws a reaction the requester previously sent. The target
// resurfaces as a candidate since the filter only excludes live likes.
func (s *Service) Delete(ctx context.Context, reactionID, requesterID string) error {
	reactionRepo := repository.NewReactionRepository(s.appCtx.DB)

	reaction, err := reactionRepo.GetByID(ctx, reactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("reaction not found")
		}
		return apperr.Map(err)
	}
	if reaction.FromUserID != requesterID {
		return apperr.Forbidden("not the author of this reaction")
	}

	if err := reactionRepo.Delete(ctx, reactionID); err != nil {
		return apperr.Map(err)
	}

	s.adjustLikeCount(ctx, reaction.ToUserID, likeDelta(reaction.Type, ""))
	return nil
}

// ReactionEntry is one row of a sent/received/views listing, resolved to the
// other participant.
type ReactionEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Age       int       `json:"age"`
	Avatar    string    `json:"avatar,omitempty"`
	Type      string    `json:"type"`
	At        time.Time `json:"at"`
}

// ListPage is a page of reaction entries with an opaque continuation token.
type ListPage struct {
	Entries             []ReactionEntry `json:"entries"`
	NextPaginationToken *string         `json:"nextPaginationToken,omitempty"`
}

// Direction selects which end of the edge a listing follows.
type Direction int

const (
	// DirectionSent lists every reaction the user sent, all types.
	DirectionSent Direction = iota
	// DirectionReceived lists likes the user received; dislikes are not
	// shown as "who liked you".
	DirectionReceived
	// DirectionViews lists every received reaction including passes.
	DirectionViews
)

// List returns one page of the requested reaction listing, newest first.
func (s *Service) List(ctx context.Context, userID string, direction Direction, paginationToken *string, limit int) (*ListPage, error) {
	if limit <= 0 {
		limit = 20
	}
	reactionRepo := repository.NewReactionRepository(s.appCtx.DB)

	var (
		rows []db.Reaction
		next *string
		err  error
	)
	switch direction {
	case DirectionSent:
		rows, next, err = reactionRepo.ListSent(ctx, userID, paginationToken, limit)
	case DirectionReceived:
		rows, next, err = reactionRepo.ListReceivedLikes(ctx, userID, paginationToken, limit)
	default:
		rows, next, err = reactionRepo.ListViews(ctx, userID, paginationToken, limit)
	}
	if err != nil {
		return nil, apperr.Map(err)
	}

	otherIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		otherIDs = append(otherIDs, otherEnd(row, direction))
	}
	usersByID, err := s.users.GetUsersByIDs(ctx, otherIDs)
	if err != nil {
		return nil, apperr.Map(err)
	}

	page := &ListPage{Entries: make([]ReactionEntry, 0, len(rows)), NextPaginationToken: next}
	for _, row := range rows {
		other, ok := usersByID[otherEnd(row, direction)]
		if !ok {
			continue
		}
		page.Entries = append(page.Entries, ReactionEntry{
			ID:        row.ID,
			UserID:    other.ID,
			FirstName: other.FirstName,
			LastName:  other.LastName,
			Age:       matching.AgeNow(other.DateOfBirth),
			Avatar:    mainPhotoURL(other),
			Type:      row.Type,
			At:        row.CreatedAt,
		})
	}
	return page, nil
}

func otherEnd(r db.Reaction, direction Direction) string {
	if direction == DirectionSent {
		return r.ToUserID
	}
	return r.FromUserID
}

func mainPhotoURL(u db.User) string {
	for _, p := range u.Photos {
		if p.IsMain {
			return p.URL
		}
	}
	if len(u.Photos) > 0 {
		return u.Photos[0].URL
	}
	return ""
}

// likeDelta computes how a type transition shifts the recipient's received
// like count. Empty strings stand for "no reaction".
func likeDelta(previous, current string) int64 {
	was := isLikeType(previous)
	is := isLikeType(current)
	switch {
	case is && !was:
		return 1
	case was && !is:
		return -1
	default:
		return 0
	}
}

func (s *Service) adjustLikeCount(ctx context.Context, userID string, delta int64) {
	if delta == 0 {
		return
	}
	if err := s.appCtx.RedisCache.AdjustLikeCount(ctx, userID, delta); err != nil {
		s.appCtx.Logger.Warn("like count cache adjust failed", "user", userID, "err", err)
	}
}
