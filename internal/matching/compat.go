package matching

import "github.com/kindling-app/kindling/internal/db"

// ProfileCondition is one acceptable (orientation, gender) combination for a
// candidate profile. An empty Gender means any gender.
type ProfileCondition struct {
	Orientation string
	Gender      string
}

// CandidateConditions derives, for a requester with the given gender and
// orientation, the set of candidate genders to search and the
// orientation conditions candidates must meet for the attraction to be
// mutual.
//
// Rules:
//   - HETEROSEXUAL seeks the opposite gender.
//   - GAY seeks MALE, LESBIAN seeks FEMALE, BISEXUAL seeks both.
//   - OTHER (gender or orientation) is universally compatible in both
//     directions: nil conditions mean no orientation restriction.
func CandidateConditions(gender, orientation string) (genders []string, conds []ProfileCondition) {
	switch orientation {
	case db.OrientationHeterosexual:
		switch gender {
		case db.GenderMale:
			genders = []string{db.GenderFemale}
		case db.GenderFemale:
			genders = []string{db.GenderMale}
		default:
			genders = []string{db.GenderMale, db.GenderFemale, db.GenderOther}
		}
	case db.OrientationGay:
		genders = []string{db.GenderMale}
	case db.OrientationLesbian:
		genders = []string{db.GenderFemale}
	case db.OrientationBisexual:
		genders = []string{db.GenderMale, db.GenderFemale}
	default: // OTHER
		genders = []string{db.GenderMale, db.GenderFemale, db.GenderOther}
	}

	// The reverse direction: which candidate orientations would accept the
	// requester back. Gender OTHER is accepted by everyone.
	switch gender {
	case db.GenderMale:
		conds = []ProfileCondition{
			{Orientation: db.OrientationHeterosexual, Gender: db.GenderFemale},
			{Orientation: db.OrientationGay, Gender: db.GenderMale},
			{Orientation: db.OrientationBisexual},
			{Orientation: db.OrientationOther},
		}
	case db.GenderFemale:
		conds = []ProfileCondition{
			{Orientation: db.OrientationHeterosexual, Gender: db.GenderMale},
			{Orientation: db.OrientationLesbian, Gender: db.GenderFemale},
			{Orientation: db.OrientationBisexual},
			{Orientation: db.OrientationOther},
		}
	default:
		// OTHER: no orientation restriction.
		conds = nil
	}

	return genders, conds
}
