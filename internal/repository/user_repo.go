package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/db"
	"github.com/kindling-app/kindling/internal/matching"
)

// UserRepository provides data access for users, profiles, interests and
// photos, including the candidate pool query behind suggestions.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB handle.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create persists a new user together with its owned associations
// (profile, interests, photos).
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID fetches a user with profile, ordered photos and interests.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Interests.Interest").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail fetches a bare user record for credential checks.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs fetches multiple users with ordered photos, keyed by id.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []string) (map[string]db.User, error) {
	byID := make(map[string]db.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	var users []db.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}

// GetProfileByUserID fetches a user's matching profile.
func (r *UserRepository) GetProfileByUserID(ctx context.Context, userID string) (*db.Profile, error) {
	var profile db.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// InterestIDs returns the interest ids linked to a user.
func (r *UserRepository) InterestIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.UserInterest{}).
		Where("user_id = ?", userID).
		Pluck("interest_id", &ids).Error
	return ids, err
}

// ListInterests returns the interest catalog, name ascending.
func (r *UserRepository) ListInterests(ctx context.Context) ([]db.Interest, error) {
	var interests []db.Interest
	err := r.db.WithContext(ctx).Order("name ASC").Find(&interests).Error
	return interests, err
}

// FindCandidates computes the raw candidate pool for a requester.
//
// Behavior:
//   - Excludes the requester and every excluded id (already-liked users).
//   - Restricts candidate profiles to the given genders and, when
//     conditions are non-empty, to the OR of the (orientation, gender)
//     conditions — the mutual-compatibility predicate.
//   - Preloads ordered photos and interests for scoring and presentation.
//   - Ordered by profile creation recency; capped at poolLimit, which is
//     deliberately larger than the final page so the scorer has slack.
func (r *UserRepository) FindCandidates(
	ctx context.Context,
	requesterID string,
	genders []string,
	conds []matching.ProfileCondition,
	excludeIDs []string,
	poolLimit int,
) ([]db.User, error) {
	query := r.db.WithContext(ctx).
		Model(&db.User{}).
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("users.id <> ?", requesterID).
		Where("profiles.gender IN ?", genders)

	if len(excludeIDs) > 0 {
		query = query.Where("users.id NOT IN ?", excludeIDs)
	}

	if len(conds) > 0 {
		clauses := make([]string, 0, len(conds))
		args := make([]any, 0, 2*len(conds))
		for _, c := range conds {
			if c.Gender != "" {
				clauses = append(clauses, "(profiles.orientation = ? AND profiles.gender = ?)")
				args = append(args, c.Orientation, c.Gender)
			} else {
				clauses = append(clauses, "profiles.orientation = ?")
				args = append(args, c.Orientation)
			}
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var candidates []db.User
	err := query.
		Preload("Profile").
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Interests.Interest").
		Order("users.created_at DESC").
		Limit(poolLimit).
		Find(&candidates).Error
	return candidates, err
}

// CountPhotos counts a user's photos.
func (r *UserRepository) CountPhotos(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Photo{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// MaxPhotoOrder returns the highest photo position for a user, -1 when the
// user has no photos.
func (r *UserRepository) MaxPhotoOrder(ctx context.Context, userID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&db.Photo{}).
		Where("user_id = ?", userID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// ClearMainPhoto unsets IsMain on all of a user's photos, keeping the
// at-most-one-main invariant before a new main is written.
func (r *UserRepository) ClearMainPhoto(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&db.Photo{}).
		Where("user_id = ? AND is_main = ?", userID, true).
		Update("is_main", false).Error
}

// CreatePhoto persists a photo row.
func (r *UserRepository) CreatePhoto(ctx context.Context, photo *db.Photo) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// GetPhoto fetches a single photo.
func (r *UserRepository) GetPhoto(ctx context.Context, id string) (*db.Photo, error) {
	var photo db.Photo
	if err := r.db.WithContext(ctx).First(&photo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

// DeletePhoto removes a photo row.
func (r *UserRepository) DeletePhoto(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db.Photo{}, "id = ?", id).Error
}
