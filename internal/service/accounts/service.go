package accounts

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/app"
	"github.com/kindling-app/kindling/internal/auth"
	"github.com/kindling-app/kindling/internal/db"
	apperr "github.com/kindling-app/kindling/internal/errors"
	"github.com/kindling-app/kindling/internal/matching"
	"github.com/kindling-app/kindling/internal/photostore"
	"github.com/kindling-app/kindling/internal/repository"
)

// Service owns identity, profile, photo and interest operations.
// The matching core treats it as the identity & profile collaborator.
type Service struct {
	appCtx    *app.AppContext
	users     *repository.UserRepository
	reactions *repository.ReactionRepository
	matches   *repository.MatchRepository
	sessions  *auth.SessionStore
	photos    *photostore.Store
}

// NewService creates the accounts service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		users:     repository.NewUserRepository(appCtx.DB),
		reactions: repository.NewReactionRepository(appCtx.DB),
		matches:   repository.NewMatchRepository(appCtx.DB),
		sessions:  auth.NewSessionStore(appCtx.DB),
		photos:    photostore.New(appCtx.Config.Upload.Dir, appCtx.Config.Upload.PublicURL),
	}
}

// SignupInput is the validated signup payload.
type SignupInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      string
	Orientation string
	InterestIDs []string
}

// SessionUser is the identity slice returned on signup/signin.
type SessionUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SessionResult carries a signed token plus the identity it belongs to.
type SessionResult struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// Signup creates a user with its profile and interest links, then opens a
// session. User, profile and interests commit atomically.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*SessionResult, error) {
	if matching.AgeNow(in.DateOfBirth) < 18 {
		return nil, apperr.Validation("you must be at least 18 years old")
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Map(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := db.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		DateOfBirth:  in.DateOfBirth,
		Profile:      &db.Profile{Gender: in.Gender, Orientation: in.Orientation},
	}
	for _, id := range in.InterestIDs {
		user.Interests = append(user.Interests, db.UserInterest{InterestID: id})
	}

	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewUserRepository(tx).Create(ctx, &user)
	})
	if err != nil {
		return nil, apperr.Map(err)
	}

	s.appCtx.Logger.Info("user signed up", "user", user.ID)
	return s.openSession(ctx, &user)
}

// Signin verifies credentials and opens a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Signin(ctx context.Context, email, password string) (*SessionResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, apperr.Map(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	return s.openSession(ctx, user)
}

// Logout closes the requester's session; the token stops working at once.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperr.Map(err)
	}
	return nil
}

func (s *Service) openSession(ctx context.Context, user *db.User) (*SessionResult, error) {
	ttl := s.appCtx.Config.Auth.SessionTTL
	session, err := s.sessions.Create(ctx, user.ID, "", ttl)
	if err != nil {
		return nil, apperr.Map(err)
	}

	token, err := auth.SignToken(s.appCtx.Config.Auth.JWTSecret, user.ID, session.ID, ttl)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.sessions.SetToken(ctx, session.ID, token); err != nil {
		return nil, apperr.Map(err)
	}

	return &SessionResult{
		Token: token,
		User: SessionUser{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	}, nil
}

// PhotoView is a photo as returned to callers.
type PhotoView struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	IsMain bool   `json:"isMain"`
	Order  int    `json:"order"`
}

// InterestView is a catalog interest.
type InterestView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IconName string `json:"iconName,omitempty"`
}

// UserView is the full profile card.
type UserView struct {
	ID          string         `json:"id"`
	Email       string         `json:"email,omitempty"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Age         int            `json:"age"`
	Gender      string         `json:"gender,omitempty"`
	Orientation string         `json:"orientation,omitempty"`
	Avatar      string         `json:"avatar,omitempty"`
	Photos      []PhotoView    `json:"photos"`
	Interests   []InterestView `json:"interests"`
}

// Me returns the requester's own profile card, email included.
func (s *Service) Me(ctx context.Context, userID string) (*UserView, error) {
	view, err := s.userView(ctx, userID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetUser returns another user's public card (no email).
func (s *Service) GetUser(ctx context.Context, userID string) (*UserView, error) {
	view, err := s.userView(ctx, userID)
	if err != nil {
		return nil, err
	}
	view.Email = ""
	return view, nil
}

func (s *Service) userView(ctx context.Context, userID string) (*UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Map(err)
	}

	view := &UserView{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Age:       matching.AgeNow(user.DateOfBirth),
		Photos:    []PhotoView{},
		Interests: []InterestView{},
	}
	if user.Profile != nil {
		view.Gender = user.Profile.Gender
		view.Orientation = user.Profile.Orientation
	}
	for _, p := range user.Photos {
		if p.IsMain {
			view.Avatar = p.URL
		}
		view.Photos = append(view.Photos, PhotoView{ID: p.ID, URL: p.URL, IsMain: p.IsMain, Order: p.Order})
	}
	for _, ui := range user.Interests {
		view.Interests = append(view.Interests, InterestView{
			ID:       ui.Interest.ID,
			Name:     ui.Interest.Name,
			IconName: ui.Interest.IconName,
		})
	}
	return view, nil
}

// ListInterests returns the catalog, name ascending.
func (s *Service) ListInterests(ctx context.Context) ([]InterestView, error) {
	interests, err := s.users.ListInterests(ctx)
	if err != nil {
		return nil, apperr.Map(err)
	}
	views := make([]InterestView, 0, len(interests))
	for _, i := range interests {
		views = append(views, InterestView{ID: i.ID, Name: i.Name, IconName: i.IconName})
	}
	return views, nil
}

// Stats summarizes a user's activity.
type Stats struct {
	TotalLikes         int64 `json:"totalLikes"`
	TotalSuperLikes    int64 `json:"totalSuperLikes"`
	TotalMatches       int64 `json:"totalMatches"`
	TotalLikesReceived int64 `json:"totalLikesReceived"`
}

// GetStats counts a user's sent likes, sent super-likes, matches and
// received likes.
func (s *Service) GetStats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{}

	var err error
	if stats.TotalLikes, err = s.reactions.CountSentByType(ctx, userID, db.ReactionLike); err != nil {
		return nil, apperr.Map(err)
	}
	if stats.TotalSuperLikes, err = s.reactions.CountSentByType(ctx, userID, db.ReactionSuperLike); err != nil {
		return nil, apperr.Map(err)
	}
	if stats.TotalMatches, err = s.matches.CountForUser(ctx, userID); err != nil {
		return nil, apperr.Map(err)
	}
	if stats.TotalLikesReceived, err = s.reactions.CountReceivedLikes(ctx, userID); err != nil {
		return nil, apperr.Map(err)
	}
	return stats, nil
}

// UploadPhoto stores photo bytes and records the row.
//
// Behavior:
//   - At most 6 photos per user.
//   - The first photo, or an explicit isMain, becomes the main photo;
//     any previous main is unset first.
//   - Position is appended after the user's current highest.
func (s *Service) UploadPhoto(ctx context.Context, userID string, content []byte, isMain bool) (*PhotoView, error) {
	if len(content) == 0 {
		return nil, apperr.Validation("empty photo upload")
	}

	count, err := s.users.CountPhotos(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if count >= db.MaxPhotosPerUser {
		return nil, apperr.Validation("maximum of 6 photos reached")
	}

	url, err := s.photos.Save(userID, content)
	if err != nil {
		return nil, apperr.Dependency("photo storage failed", err)
	}

	makeMain := isMain || count == 0
	maxOrder, err := s.users.MaxPhotoOrder(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}

	photo := db.Photo{UserID: userID, URL: url, IsMain: makeMain, Order: maxOrder + 1}
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := repository.NewUserRepository(tx)
		if makeMain {
			if err := userRepo.ClearMainPhoto(ctx, userID); err != nil {
				return err
			}
		}
		return userRepo.CreatePhoto(ctx, &photo)
	})
	if err != nil {
		return nil, apperr.Map(err)
	}

	return &PhotoView{ID: photo.ID, URL: photo.URL, IsMain: photo.IsMain, Order: photo.Order}, nil
}

// DeletePhoto removes a photo the requester owns. The file removal is
// best-effort; the row is authoritative.
func (s *Service) DeletePhoto(ctx context.Context, photoID, requesterID string) error {
	photo, err := s.users.GetPhoto(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("photo not found")
		}
		return apperr.Map(err)
	}
	if photo.UserID != requesterID {
		return apperr.Forbidden("not the owner of this photo")
	}

	if err := s.users.DeletePhoto(ctx, photoID); err != nil {
		return apperr.Map(err)
	}
	if err := s.photos.Delete(photo.URL); err != nil {
		s.appCtx.Logger.Warn("photo file removal failed", "url", photo.URL, "err", err)
	}
	return nil
}
