package users

import (
	"time"

	"github.com/google/uuid"
)

type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

type Gender string

const (
	GenderMale         Gender = "male"
	GenderFemale       Gender = "female"
	GenderOther        Gender = "other"
	GenderNotSpecified Gender = "prefer-not-to-say"
)

type FitnessLevel string

const (
	FitnessLevelBeginner     FitnessLevel = "beginner"
	FitnessLevelIntermediate FitnessLevel = "intermediate"
	FitnessLevelAdvanced     FitnessLevel = "advanced"
)

type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

type Profile struct {
	Age          *int         `json:"age,omitempty" validate:"omitempty,gte=13,lte=120"`
	Weight       *float64     `json:"weight,omitempty" validate:"omitempty,gte=20"`
	Height       *float64     `json:"height,omitempty" validate:"omitempty,gte=50"`
	Gender       Gender       `json:"gender,omitempty" validate:"omitempty,oneof=male female other prefer-not-to-say"`
	FitnessLevel FitnessLevel `json:"fitnessLevel,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Goals        []string     `json:"goals,omitempty"`
}

type NotificationPreferences struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

type PrivacyPreferences struct {
	ProfileVisible  bool `json:"profileVisible"`
	WorkoutsVisible bool `json:"workoutsVisible"`
}

type Preferences struct {
	Units         Units                   `json:"units" validate:"omitempty,oneof=metric imperial"`
	Notifications NotificationPreferences `json:"notifications"`
	Privacy       PrivacyPreferences      `json:"privacy"`
}

// DefaultPreferences matches what a fresh account starts with:
// notifications on, profile and workouts hidden.
func DefaultPreferences() Preferences {
	return Preferences{
		Units: UnitsMetric,
		Notifications: NotificationPreferences{
			Email: true,
			Push:  true,
		},
	}
}

type Stats struct {
	TotalWorkouts       int        `json:"totalWorkouts"`
	TotalExercises      int        `json:"totalExercises"`
	TotalCaloriesBurned int        `json:"totalCaloriesBurned"`
	TotalTimeSpent      int        `json:"totalTimeSpent"`
	CurrentStreak       int        `json:"currentStreak"`
	LongestStreak       int        `json:"longestStreak"`
	LastWorkoutDate     *time.Time `json:"lastWorkoutDate,omitempty"`
}

type User struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	PasswordHash  string       `json:"-"`
	GoogleID      *string      `json:"-"`
	Avatar        string       `json:"avatar,omitempty"`
	AuthProvider  AuthProvider `json:"authProvider"`
	EmailVerified bool         `json:"emailVerified"`
	IsActive      bool         `json:"-"`
	Profile       Profile      `json:"profile"`
	Preferences   Preferences  `json:"preferences"`
	Stats         Stats        `json:"stats"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// HasPassword reports whether the user can authenticate with a password
// at all. Google-only accounts have no password hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
