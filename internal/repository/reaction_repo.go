package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/db"
	"github.com/kindling-app/kindling/internal/utils/pagination"
)

// LikeTypes are the reaction types counted as positive signals.
var LikeTypes = []string{db.ReactionLike, db.ReactionSuperLike}

// ReactionRepository provides data access for the reaction ledger.
// It encapsulates all queries on the directional from→to reaction edges.
type ReactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new repository bound to the given DB handle.
// Pass a transaction handle to run the calls inside that transaction.
func NewReactionRepository(database *gorm.DB) *ReactionRepository {
	return &ReactionRepository{db: database}
}

// Upsert inserts or overwrites the reaction from one user toward another.
//
// Behavior:
//   - If the (from, to) pair exists, only Type (and UpdatedAt) change;
//     CreatedAt keeps denoting the first interaction.
//   - If it doesn't exist, a new row is inserted.
//   - The unique index on the pair is the backstop for racing inserts.
//
// Returns the resulting reaction and the previous type ("" when the row is
// new), which callers use to adjust cached like counts.
func (r *ReactionRepository) Upsert(ctx context.Context, fromUserID, toUserID, reactionType string) (*db.Reaction, string, error) {
	var existing db.Reaction
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		First(&existing).Error

	switch {
	case err == nil:
		previous := existing.Type
		if previous != reactionType {
			if err := r.db.WithContext(ctx).
				Model(&existing).
				Update("type", reactionType).Error; err != nil {
				return nil, "", err
			}
			existing.Type = reactionType
		}
		return &existing, previous, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		reaction := db.Reaction{
			FromUserID: fromUserID,
			ToUserID:   toUserID,
			Type:       reactionType,
		}
		if err := r.db.WithContext(ctx).Create(&reaction).Error; err != nil {
			return nil, "", err
		}
		return &reaction, "", nil

	default:
		return nil, "", err
	}
}

// GetByID fetches a single reaction.
func (r *ReactionRepository) GetByID(ctx context.Context, id string) (*db.Reaction, error) {
	var reaction db.Reaction
	if err := r.db.WithContext(ctx).First(&reaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

// Delete removes a reaction row. The author's target becomes eligible again
// as a candidate; no further bookkeeping is needed since the candidate
// filter only excludes currently existing likes.
func (r *ReactionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db.Reaction{}, "id = ?", id).Error
}

// DeleteForPair removes the reaction from one user toward another, returning
// the removed reaction (nil when none existed).
func (r *ReactionRepository) DeleteForPair(ctx context.Context, fromUserID, toUserID string) (*db.Reaction, error) {
	var reaction db.Reaction
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&reaction).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

// FindReciprocalLike returns the LIKE/SUPER_LIKE reaction from one user back
// toward another, or nil when none exists.
func (r *ReactionRepository) FindReciprocalLike(ctx context.Context, fromUserID, toUserID string) (*db.Reaction, error) {
	var reaction db.Reaction
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ? AND type IN ?", fromUserID, toUserID, LikeTypes).
		First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// ListSent returns every reaction the user has sent (all types),
// newest first, with cursor pagination.
func (r *ReactionRepository) ListSent(ctx context.Context, userID string, paginationToken *string, limit int) ([]db.Reaction, *string, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Reaction{}).
		Where("from_user_id = ?", userID)
	return r.list(query, paginationToken, limit)
}

// ListReceivedLikes returns who liked the user. Dislikes are never surfaced
// as "liked you" entries.
func (r *ReactionRepository) ListReceivedLikes(ctx context.Context, userID string, paginationToken *string, limit int) ([]db.Reaction, *string, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Reaction{}).
		Where("to_user_id = ? AND type IN ?", userID, LikeTypes)
	return r.list(query, paginationToken, limit)
}

// ListViews returns every received reaction regardless of type; a dislike is
// still a profile view.
func (r *ReactionRepository) ListViews(ctx context.Context, userID string, paginationToken *string, limit int) ([]db.Reaction, *string, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Reaction{}).
		Where("to_user_id = ?", userID)
	return r.list(query, paginationToken, limit)
}

// list applies recency ordering plus cursor pagination to a reaction query.
// Fetches limit+1 rows to decide whether a next page exists.
func (r *ReactionRepository) list(query *gorm.DB, paginationToken *string, limit int) ([]db.Reaction, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query = query.Order("created_at DESC, id DESC").Limit(limit + 1)
	if cursor.ID != "" && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var reactions []db.Reaction
	if err := query.Find(&reactions).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(reactions) > limit {
		last := reactions[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		reactions = reactions[:limit]
	}

	return reactions, nextToken, nil
}

// SentPartition splits the ids a user has reacted to into positively reacted
// (LIKE/SUPER_LIKE) and disliked sets. The candidate filter hard-excludes the
// former and the scorer penalizes the latter.
func (r *ReactionRepository) SentPartition(ctx context.Context, userID string) (likedIDs []string, dislikedIDs map[string]bool, err error) {
	var reactions []db.Reaction
	if err := r.db.WithContext(ctx).
		Select("to_user_id", "type").
		Where("from_user_id = ?", userID).
		Find(&reactions).Error; err != nil {
		return nil, nil, err
	}

	dislikedIDs = make(map[string]bool)
	for _, reaction := range reactions {
		if reaction.Type == db.ReactionDislike {
			dislikedIDs[reaction.ToUserID] = true
		} else {
			likedIDs = append(likedIDs, reaction.ToUserID)
		}
	}
	return likedIDs, dislikedIDs, nil
}

// CountReceivedLikes counts the likes a user has received.
// Used with the Redis counter cache (DB is the fallback).
func (r *ReactionRepository) CountReceivedLikes(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Reaction{}).
		Where("to_user_id = ? AND type IN ?", userID, LikeTypes).
		Count(&count).Error
	return count, err
}

// CountSentByType counts reactions a user has sent of one type.
func (r *ReactionRepository) CountSentByType(ctx context.Context, userID, reactionType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Reaction{}).
		Where("from_user_id = ? AND type = ?", userID, reactionType).
		Count(&count).Error
	return count, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
