package db

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedInterests = []Interest{
	{Name: "Photography", IconName: "camera"},
	{Name: "Cooking", IconName: "utensils"},
	{Name: "Video Games", IconName: "gamepad"},
	{Name: "Music", IconName: "music"},
	{Name: "Traveling", IconName: "plane"},
	{Name: "Shopping", IconName: "bag"},
	{Name: "Speeches", IconName: "mic"},
	{Name: "Art & Crafts", IconName: "palette"},
	{Name: "Swimming", IconName: "waves"},
	{Name: "Drinking", IconName: "glass"},
	{Name: "Extreme Sports", IconName: "mountain"},
	{Name: "Fitness", IconName: "dumbbell"},
}

type seedPerson struct {
	first, last string
	gender      string
	orientation string
}

var seedPeople = []seedPerson{
	{"John", "Doe", GenderMale, OrientationHeterosexual},
	{"Michael", "Smith", GenderMale, OrientationHeterosexual},
	{"David", "Johnson", GenderMale, OrientationGay},
	{"James", "Brown", GenderMale, OrientationBisexual},
	{"Robert", "Williams", GenderMale, OrientationHeterosexual},
	{"Emma", "Wilson", GenderFemale, OrientationHeterosexual},
	{"Olivia", "Taylor", GenderFemale, OrientationHeterosexual},
	{"Sophia", "Anderson", GenderFemale, OrientationLesbian},
	{"Isabella", "Thomas", GenderFemale, OrientationBisexual},
	{"Mia", "Moore", GenderFemale, OrientationHeterosexual},
	{"Alex", "Martinez", GenderOther, OrientationOther},
	{"Jordan", "Garcia", GenderOther, OrientationOther},
}

// SeedTestData resets the database and populates it with demo users,
// the interest catalog, photos and a spread of reactions with some
// guaranteed mutual pairs.
func SeedTestData(database *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Fresh start, children first.
	for _, table := range []string{
		"matches", "reactions", "sessions", "photos", "user_interests", "profiles", "users", "interests",
	} {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	// Interest catalog
	interests := make([]Interest, len(seedInterests))
	copy(interests, seedInterests)
	for i := range interests {
		if err := database.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&interests[i]).Error; err != nil {
			return fmt.Errorf("failed to seed interest: %w", err)
		}
	}
	log.Printf("Seeded %d interests.", len(interests))

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Users with profiles, interests and a main photo each.
	users := make([]User, 0, len(seedPeople))
	for i, p := range seedPeople {
		dob := time.Date(1980+r.Intn(24), time.Month(1+r.Intn(12)), 1+r.Intn(28), 0, 0, 0, 0, time.UTC)
		user := User{
			Email:        fmt.Sprintf("%s.%s@example.com", strings.ToLower(p.first), strings.ToLower(p.last)),
			PasswordHash: string(hash),
			FirstName:    p.first,
			LastName:     p.last,
			DateOfBirth:  dob,
			Profile:      &Profile{Gender: p.gender, Orientation: p.orientation},
		}

		// 3..6 interests per user
		picks := r.Perm(len(interests))[:3+r.Intn(4)]
		for _, idx := range picks {
			user.Interests = append(user.Interests, UserInterest{InterestID: interests[idx].ID})
		}

		user.Photos = []Photo{{
			URL:    fmt.Sprintf("/photos/seed/%02d.png", i+1),
			IsMain: true,
			Order:  0,
		}}

		if err := database.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users.", len(users))

	// Reactions: ~70% likes, every 3rd pair guaranteed mutual.
	counter := 0
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
	}
	for i := range users {
		for j := 0; j < 6; j++ {
			target := users[r.Intn(len(users))]
			if target.ID == users[i].ID {
				continue
			}

			typ := ReactionDislike
			if r.Intn(100) < 70 {
				typ = ReactionLike
				if r.Intn(10) == 0 {
					typ = ReactionSuperLike
				}
			}

			if counter%3 == 0 {
				typ = ReactionLike
				recip := Reaction{FromUserID: target.ID, ToUserID: users[i].ID, Type: ReactionLike}
				database.Clauses(upsert).Create(&recip)
			}

			reaction := Reaction{FromUserID: users[i].ID, ToUserID: target.ID, Type: typ}
			if err := database.Clauses(upsert).Create(&reaction).Error; err != nil {
				return fmt.Errorf("failed to seed reaction: %w", err)
			}
			counter++
		}
	}
	log.Printf("Seeded %d reactions.", counter)

	return nil
}

