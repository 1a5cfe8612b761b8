package matching

import "time"

// Age returns whole years between dateOfBirth and now, decremented by one
// when now's month/day precedes the birthday ("last birthday" age, not
// calendar-year subtraction).
func Age(dateOfBirth, now time.Time) int {
	age := now.Year() - dateOfBirth.Year()

	if now.Month() < dateOfBirth.Month() ||
		(now.Month() == dateOfBirth.Month() && now.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

// AgeNow is Age against the current wall clock.
func AgeNow(dateOfBirth time.Time) int {
	return Age(dateOfBirth, time.Now().UTC())
}
