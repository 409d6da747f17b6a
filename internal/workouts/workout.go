package workouts

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkrajina/fitlog/internal/exercises"
)

// Set is one performed set of an exercise. Pointer fields distinguish
// "not measured" from zero values.
type Set struct {
	Reps     *int     `json:"reps,omitempty"`
	Weight   *float64 `json:"weight,omitempty"`
	Duration *int     `json:"duration,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
	RestTime *int     `json:"restTime,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// Countable reports whether the set measures anything at all: at least
// reps or a duration must be present.
func (s *Set) Countable() bool {
	return s.Reps != nil || s.Duration != nil
}

// LoggedExercise is one exercise entry inside a workout. ExerciseID
// references the catalog when set; free-form entries carry only a name.
type LoggedExercise struct {
	ExerciseID *uuid.UUID         `json:"exerciseId,omitempty"`
	Name       string             `json:"name"`
	Category   exercises.Category `json:"category,omitempty"`
	Sets       []Set              `json:"sets"`
	Notes      string             `json:"notes,omitempty"`
}

// Visibility controls who can see a workout.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
	VisibilityPublic  Visibility = "public"
)

type Workout struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"userId"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Date           time.Time        `json:"date"`
	Duration       int              `json:"duration"` // minutes
	Exercises      []LoggedExercise `json:"exercises"`
	CaloriesBurned int              `json:"caloriesBurned"`
	Tags           []string         `json:"tags"`
	Rating         *int             `json:"rating,omitempty"`
	Visibility     Visibility       `json:"visibility"`
	Notes          string           `json:"notes,omitempty"`
	IsTemplate     bool             `json:"isTemplate"`
	TemplateName   string           `json:"templateName,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// ListParams narrows and pages workout listings.
type ListParams struct {
	UserID     uuid.UUID
	IsTemplate bool
	Page       int
	Limit      int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
