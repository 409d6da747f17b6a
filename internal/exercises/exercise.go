package exercises

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryChest      Category = "chest"
	CategoryBack       Category = "back"
	CategoryShoulders  Category = "shoulders"
	CategoryArms       Category = "arms"
	CategoryLegs       Category = "legs"
	CategoryCore       Category = "core"
	CategoryCardio     Category = "cardio"
	CategoryFullBody   Category = "full_body"
	CategoryStretching Category = "stretching"
)

// Categories lists all known exercise categories, in catalog order.
func Categories() []Category {
	return []Category{
		CategoryChest, CategoryBack, CategoryShoulders, CategoryArms,
		CategoryLegs, CategoryCore, CategoryCardio, CategoryFullBody,
		CategoryStretching,
	}
}

func ValidCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type PrimaryMetric string

const (
	MetricReps     PrimaryMetric = "reps"
	MetricTime     PrimaryMetric = "time"
	MetricDistance PrimaryMetric = "distance"
)

// Metrics describes which measurements make sense when logging sets of
// an exercise, e.g. running tracks time and distance but not reps.
type Metrics struct {
	PrimaryMetric PrimaryMetric `json:"primaryMetric"`
	HasWeight     bool          `json:"hasWeight"`
	HasReps       bool          `json:"hasReps"`
	HasTime       bool          `json:"hasTime"`
	HasDistance   bool          `json:"hasDistance"`
}

// Consistent reports whether the primary metric is backed by the
// matching has* flag, e.g. primaryMetric=time requires hasTime.
func (m Metrics) Consistent() bool {
	switch m.PrimaryMetric {
	case MetricReps:
		return m.HasReps
	case MetricTime:
		return m.HasTime
	case MetricDistance:
		return m.HasDistance
	}
	return false
}

func DefaultMetrics() Metrics {
	return Metrics{
		PrimaryMetric: MetricReps,
		HasWeight:     true,
		HasReps:       true,
	}
}

type Exercise struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Category     Category   `json:"category"`
	MuscleGroups []string   `json:"muscleGroups"`
	Equipment    []string   `json:"equipment"`
	Difficulty   Difficulty `json:"difficulty"`
	Instructions []string   `json:"instructions,omitempty"`
	Tips         []string   `json:"tips,omitempty"`
	Metrics      Metrics    `json:"metrics"`
	IsCustom     bool       `json:"isCustom"`
	CreatedBy    *uuid.UUID `json:"createdBy,omitempty"`
	// CreatedByName is the display name of the creating user, resolved
	// on single-exercise reads of custom exercises.
	CreatedByName *string   `json:"createdByName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Summary is the list-view projection of an exercise, without the long
// instructions and tips fields.
type Summary struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Category     Category   `json:"category"`
	MuscleGroups []string   `json:"muscleGroups"`
	Equipment    []string   `json:"equipment"`
	Difficulty   Difficulty `json:"difficulty"`
	Metrics      Metrics    `json:"metrics"`
	IsCustom     bool       `json:"isCustom"`
}

func (e *Exercise) Summary() Summary {
	return Summary{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		Category:     e.Category,
		MuscleGroups: e.MuscleGroups,
		Equipment:    e.Equipment,
		Difficulty:   e.Difficulty,
		Metrics:      e.Metrics,
		IsCustom:     e.IsCustom,
	}
}

// ListFilter narrows catalog listings. Zero values mean "no filter".
type ListFilter struct {
	Category    Category
	Difficulty  Difficulty
	MuscleGroup string
	Search      string
}
