package exercises

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

// DefaultExercises returns the built-in exercise catalog.
func DefaultExercises() []Exercise {
	return []Exercise{
		{
			Name:         "Push-ups",
			Description:  "A basic bodyweight exercise that targets chest, shoulders, and triceps",
			Category:     CategoryChest,
			MuscleGroups: []string{"pectorals", "deltoids", "triceps"},
			Equipment:    []string{"bodyweight"},
			Difficulty:   DifficultyBeginner,
			Instructions: []string{
				"Start in a plank position with hands slightly wider than shoulders",
				"Lower your body until chest nearly touches the floor",
				"Push back up to starting position",
				"Keep your body in a straight line throughout",
			},
			Tips: []string{
				"Keep core engaged",
				"Don't let hips sag",
				"Control the movement - don't rush",
			},
			Metrics: Metrics{PrimaryMetric: MetricReps, HasReps: true},
		},
		{
			Name:         "Bench Press",
			Description:  "Classic chest exercise using a barbell",
			Category:     CategoryChest,
			MuscleGroups: []string{"pectorals", "deltoids", "triceps"},
			Equipment:    []string{"barbell", "bench"},
			Difficulty:   DifficultyIntermediate,
			Instructions: []string{
				"Lie on bench with feet flat on floor",
				"Grip barbell with hands slightly wider than shoulders",
				"Lower bar to chest with control",
				"Press bar back up to starting position",
			},
			Tips: []string{
				"Keep shoulder blades retracted",
				"Don't bounce the bar off your chest",
				"Use a spotter for heavy weights",
			},
			Metrics: Metrics{PrimaryMetric: MetricReps, HasWeight: true, HasReps: true},
		},
		{
			Name:         "Squats",
			Description:  "Fundamental leg exercise targeting quads, glutes, and hamstrings",
			Category:     CategoryLegs,
			MuscleGroups: []string{"quadriceps", "glutes", "hamstrings"},
			Equipment:    []string{"bodyweight"},
			Difficulty:   DifficultyBeginner,
			Instructions: []string{
				"Stand with feet shoulder-width apart",
				"Lower body by bending knees and pushing hips back",
				"Keep chest up and knees tracking over toes",
				"Return to starting position",
			},
			Tips: []string{
				"Keep weight on heels",
				"Don't let knees cave inward",
				"Go as low as comfortable with good form",
			},
			Metrics: Metrics{PrimaryMetric: MetricReps, HasReps: true},
		},
		{
			Name:         "Deadlift",
			Description:  "Compound exercise targeting posterior chain",
			Category:     CategoryBack,
			MuscleGroups: []string{"latissimus_dorsi", "hamstrings", "glutes", "trapezius"},
			Equipment:    []string{"barbell"},
			Difficulty:   DifficultyIntermediate,
			Instructions: []string{
				"Stand with feet hip-width apart, bar over mid-foot",
				"Bend at hips and knees to grip the bar",
				"Keep chest up and back straight",
				"Drive through heels to lift the bar",
			},
			Tips: []string{
				"Keep bar close to body",
				"Engage core throughout",
				"Don't round your back",
			},
			Metrics: Metrics{PrimaryMetric: MetricReps, HasWeight: true, HasReps: true},
		},
		{
			Name:         "Pull-ups",
			Description:  "Upper body pulling exercise",
			Category:     CategoryBack,
			MuscleGroups: []string{"latissimus_dorsi", "rhomboids", "biceps"},
			Equipment:    []string{"pull_up_bar"},
			Difficulty:   DifficultyIntermediate,
			Instructions: []string{
				"Hang from pull-up bar with overhand grip",
				"Pull body up until chin clears the bar",
				"Lower with control to starting position",
			},
			Tips: []string{
				"Use full range of motion",
				"Don't swing or use momentum",
				"Squeeze shoulder blades at the top",
			},
			Metrics: Metrics{PrimaryMetric: MetricReps, HasReps: true},
		},
		{
			Name:         "Plank",
			Description:  "Isometric core strengthening exercise",
			Category:     CategoryCore,
			MuscleGroups: []string{"abdominals", "obliques"},
			Equipment:    []string{"bodyweight"},
			Difficulty:   DifficultyBeginner,
			Instructions: []string{
				"Start in push-up position",
				"Lower to forearms",
				"Hold position with straight body line",
				"Keep core engaged throughout",
			},
			Tips: []string{
				"Don't let hips sag or pike up",
				"Breathe normally",
				"Focus on form over duration",
			},
			Metrics: Metrics{PrimaryMetric: MetricTime, HasTime: true},
		},
		{
			Name:         "Running",
			Description:  "Cardiovascular exercise",
			Category:     CategoryCardio,
			MuscleGroups: []string{"heart", "quadriceps", "hamstrings", "calves"},
			Equipment:    []string{"none"},
			Difficulty:   DifficultyBeginner,
			Instructions: []string{
				"Start with a warm-up walk",
				"Gradually increase pace to comfortable run",
				"Maintain steady breathing",
				"Cool down with walking",
			},
			Tips: []string{
				"Land on midfoot, not heel",
				"Keep cadence around 180 steps per minute",
				"Stay hydrated",
			},
			Metrics: Metrics{PrimaryMetric: MetricDistance, HasTime: true, HasDistance: true},
		},
		{
			Name:         "Bicep Curls",
			Description:  "Isolation exercise for biceps",
			Category:     CategoryArms,
			MuscleGroups: []string{"biceps"},
			Equipment:    []string{"dumbbell"},
			Difficulty:   DifficultyBeginner,
			Instructions: []string{
				"Stand with dumbbells in each hand",
				"Keep elbows at your sides",
				"Curl weights up to shoulders",
				"Lower with control",
			},
			Tips: []string{
				"Don't swing the weights",
				"Keep wrists straight",
				"Control the negative portion",
			},
			Metrics: Metrics{PrimaryMetric: MetricReps, HasWeight: true, HasReps: true},
		},
	}
}

// SeedDefaults inserts the built-in catalog, skipping exercises that
// already exist. Returns the number of newly added exercises.
func (r *Repo) SeedDefaults(ctx context.Context) (int, error) {
	added := 0
	for _, exercise := range DefaultExercises() {
		if _, err := r.Add(ctx, exercise); err != nil {
			if errors.Is(err, ErrExerciseExists) {
				log.Tracef("seed: exercise %q already present, skipping", exercise.Name)
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}
