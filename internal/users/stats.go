package users

import "time"

// CompletedWorkout carries the numbers a finished workout contributes
// to the owner's lifetime stats.
type CompletedWorkout struct {
	Date           time.Time
	ExerciseCount  int
	Duration       int // minutes
	CaloriesBurned int
}

// UpdatedStats returns a copy of current with the completed workout
// folded in. Streak accounting runs on calendar days: a workout on the
// day right after the previous one extends the streak, a longer gap
// resets it to 1, and a second workout on the same day leaves the
// streak untouched.
func UpdatedStats(current Stats, w CompletedWorkout) Stats {
	updated := current
	updated.TotalWorkouts++
	updated.TotalExercises += w.ExerciseCount
	updated.TotalCaloriesBurned += w.CaloriesBurned
	updated.TotalTimeSpent += w.Duration

	if current.LastWorkoutDate == nil {
		updated.CurrentStreak = 1
	} else {
		switch gap := calendarDaysBetween(*current.LastWorkoutDate, w.Date); {
		case gap == 1:
			updated.CurrentStreak++
		case gap > 1:
			updated.CurrentStreak = 1
		}
		// same day: streak stays as is
	}

	if updated.CurrentStreak > updated.LongestStreak {
		updated.LongestStreak = updated.CurrentStreak
	}

	workoutDate := w.Date
	updated.LastWorkoutDate = &workoutDate

	return updated
}

func calendarDaysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
