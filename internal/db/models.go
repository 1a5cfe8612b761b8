package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender values stored on Profile.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)

// Orientation values stored on Profile.
const (
	OrientationHeterosexual = "HETEROSEXUAL"
	OrientationBisexual     = "BISEXUAL"
	OrientationGay          = "GAY"
	OrientationLesbian      = "LESBIAN"
	OrientationOther        = "OTHER"
)

// Reaction types.
const (
	ReactionLike      = "LIKE"
	ReactionSuperLike = "SUPER_LIKE"
	ReactionDislike   = "DISLIKE"
)

// MaxPhotosPerUser caps how many photos a single user may hold.
const MaxPhotosPerUser = 6

// User is the root aggregate. Profile, Photos and Interests share its
// lifetime; Reactions and Matches reference users by id without ownership.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FirstName    string `gorm:"size:64;not null"`
	LastName     string `gorm:"size:64;not null"`
	DateOfBirth  time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`

	Profile   *Profile       `gorm:"constraint:OnDelete:CASCADE"`
	Photos    []Photo        `gorm:"constraint:OnDelete:CASCADE"`
	Interests []UserInterest `gorm:"constraint:OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile holds the matching attributes of a user. Exactly one per user,
// created together with the user at signup.
//
// The orientation model is authoritative; the older three-way "preference"
// field is deprecated and no longer persisted.
type Profile struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      string    `gorm:"uniqueIndex;size:36;not null"`
	Gender      string    `gorm:"size:16;not null;index:idx_profile_gender_orientation,priority:1"`
	Orientation string    `gorm:"size:16;not null;index:idx_profile_gender_orientation,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Interest is static catalog data, seeded once.
type Interest struct {
	ID       string `gorm:"primaryKey;size:36"`
	Name     string `gorm:"uniqueIndex;size:64;not null"`
	IconName string `gorm:"size:64"`
}

func (i *Interest) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// UserInterest links a user to a catalog interest.
//
// Composite PK (UserID, InterestID) makes the association idempotent.
type UserInterest struct {
	UserID     string    `gorm:"primaryKey;size:36"`
	InterestID string    `gorm:"primaryKey;size:36"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Interest Interest `gorm:"foreignKey:InterestID"`
}

// Photo belongs to exactly one user. At most one photo per user has
// IsMain = true; Order is an ascending per-user position.
type Photo struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;not null;index"`
	URL       string    `gorm:"size:255;not null"`
	IsMain    bool      `gorm:"not null;default:false"`
	Order     int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Reaction is a directional edge from one user toward another.
//
// Unique index on (from_user_id, to_user_id) guarantees at most one reaction
// per ordered pair; a repeat reaction overwrites Type and leaves CreatedAt
// untouched, so CreatedAt always denotes the first interaction.
type Reaction struct {
	ID         string    `gorm:"primaryKey;size:36"`
	FromUserID string    `gorm:"size:36;not null;uniqueIndex:idx_reaction_pair,priority:1;index:idx_reaction_from_type,priority:1"`
	ToUserID   string    `gorm:"size:36;not null;uniqueIndex:idx_reaction_pair,priority:2;index:idx_reaction_to_created,priority:1"`
	Type       string    `gorm:"size:16;not null;index:idx_reaction_from_type,priority:2"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_reaction_to_created,priority:2,sort:desc"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Match is an undirected pairing. UserAID is the user whose reaction closed
// the pair; UserLowID/UserHighID hold the lexicographically sorted pair and
// carry the unique index that makes concurrent duplicate inserts impossible,
// regardless of submission ordering.
type Match struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserAID    string    `gorm:"size:36;not null;index"`
	UserBID    string    `gorm:"size:36;not null;index"`
	UserLowID  string    `gorm:"size:36;not null;uniqueIndex:idx_match_pair,priority:1"`
	UserHighID string    `gorm:"size:36;not null;uniqueIndex:idx_match_pair,priority:2"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.UserLowID == "" || m.UserHighID == "" {
		m.UserLowID, m.UserHighID = SortPair(m.UserAID, m.UserBID)
	}
	return nil
}

// SortPair normalizes two user ids into (low, high) ordering.
func SortPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Session is a server-side login session referenced by the JWT.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;not null;index"`
	Token     string    `gorm:"size:512;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
