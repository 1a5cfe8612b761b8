package discover

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/app"
	apperr "github.com/kindling-app/kindling/internal/errors"
	"github.com/kindling-app/kindling/internal/matching"
	"github.com/kindling-app/kindling/internal/repository"
)

const (
	// poolSize is deliberately larger than the returned page so the scorer
	// can re-order before truncating.
	poolSize     = 100
	defaultLimit = 20
)

// Service computes ranked candidate suggestions for a requester.
type Service struct {
	appCtx    *app.AppContext
	users     *repository.UserRepository
	reactions *repository.ReactionRepository
}

// NewService creates the discover service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		users:     repository.NewUserRepository(appCtx.DB),
		reactions: repository.NewReactionRepository(appCtx.DB),
	}
}

// PhotoView is a candidate's non-main photo.
type PhotoView struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Order int    `json:"order"`
}

// InterestView is a catalog interest attached to a candidate.
type InterestView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IconName string `json:"iconName,omitempty"`
}

// Suggestion is one ranked candidate.
type Suggestion struct {
	ID                 string         `json:"id"`
	FirstName          string         `json:"firstName"`
	LastName           string         `json:"lastName"`
	Age                int            `json:"age"`
	Avatar             string         `json:"avatar,omitempty"`
	ExtraPhotos        []PhotoView    `json:"extraPhotos"`
	Interests          []InterestView `json:"interests"`
	CommonInterests    int            `json:"commonInterests"`
	CompatibilityScore int            `json:"compatibilityScore"`
}

// Suggestions returns the ranked candidate list for a user.
//
// Behavior:
//   - The pool excludes the requester and everyone they already sent a
//     LIKE/SUPER_LIKE (those live under "you liked" instead).
//   - Previously DISLIKEd users stay in the pool but sink to the bottom via
//     the score penalty (soft exclusion).
//   - Candidates are restricted to mutually compatible (gender, orientation)
//     profiles, scored by shared interests, and truncated to limit.
func (s *Service) Suggestions(ctx context.Context, userID string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	profile, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, apperr.Map(err)
	}

	likedIDs, dislikedIDs, err := s.reactions.SentPartition(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}

	genders, conds := matching.CandidateConditions(profile.Gender, profile.Orientation)
	pool, err := s.users.FindCandidates(ctx, userID, genders, conds, likedIDs, poolSize)
	if err != nil {
		return nil, apperr.Map(err)
	}

	interestIDs, err := s.users.InterestIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}

	ranked := matching.Rank(interestIDs, dislikedIDs, pool, limit)

	s.appCtx.Logger.Debug("suggestions computed",
		"user", userID, "pool", len(pool), "returned", len(ranked))

	suggestions := make([]Suggestion, 0, len(ranked))
	for _, c := range ranked {
		suggestions = append(suggestions, toSuggestion(c))
	}
	return suggestions, nil
}

func toSuggestion(c matching.ScoredCandidate) Suggestion {
	out := Suggestion{
		ID:                 c.User.ID,
		FirstName:          c.User.FirstName,
		LastName:           c.User.LastName,
		Age:                matching.AgeNow(c.User.DateOfBirth),
		ExtraPhotos:        []PhotoView{},
		Interests:          []InterestView{},
		CommonInterests:    c.CommonInterests,
		CompatibilityScore: c.Score,
	}

	for _, p := range c.User.Photos {
		if p.IsMain && out.Avatar == "" {
			out.Avatar = p.URL
			continue
		}
		out.ExtraPhotos = append(out.ExtraPhotos, PhotoView{ID: p.ID, URL: p.URL, Order: p.Order})
	}
	for _, ui := range c.User.Interests {
		out.Interests = append(out.Interests, InterestView{
			ID:       ui.Interest.ID,
			Name:     ui.Interest.Name,
			IconName: ui.Interest.IconName,
		})
	}
	return out
}
