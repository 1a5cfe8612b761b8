package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/db"
)

// MatchRepository provides data access for materialized matches.
// All pair lookups go through the sorted (low, high) key, so the two
// orderings of a pair can never diverge.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB handle.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Create materializes a match. userAID is the initiator whose reaction
// closed the pair.
//
// The unique index on (user_low_id, user_high_id) rejects a racing duplicate
// insert with gorm.ErrDuplicatedKey; callers treat that as "already matched".
func (r *MatchRepository) Create(ctx context.Context, userAID, userBID string) (*db.Match, error) {
	match := db.Match{UserAID: userAID, UserBID: userBID}
	if err := r.db.WithContext(ctx).Create(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// FindByPair returns the match for the unordered pair {a, b}, or nil.
func (r *MatchRepository) FindByPair(ctx context.Context, a, b string) (*db.Match, error) {
	low, high := db.SortPair(a, b)

	var match db.Match
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// GetByID fetches a single match.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*db.Match, error) {
	var match db.Match
	if err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// Delete removes a match row.
func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db.Match{}, "id = ?", id).Error
}

// DeleteByPair removes the match for the unordered pair {a, b} if present.
// Used when a later dislike revokes a standing match.
func (r *MatchRepository) DeleteByPair(ctx context.Context, a, b string) error {
	low, high := db.SortPair(a, b)
	return r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Delete(&db.Match{}).Error
}

// ListForUser returns every match the user participates in, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID string) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}

// CountForUser counts matches the user participates in.
func (r *MatchRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}
