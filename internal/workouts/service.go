package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mkrajina/fitlog/internal/exercises"
	"github.com/mkrajina/fitlog/internal/telemetry/tracing"
	"github.com/mkrajina/fitlog/internal/users"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts

// ErrSetNotCountable marks a set that measures neither reps nor time.
var ErrSetNotCountable = errors.New("a set needs at least reps or duration")

// ExerciseRefError reports a logged exercise referencing a catalog id
// that does not exist.
type ExerciseRefError struct {
	ExerciseID uuid.UUID
}

func (e *ExerciseRefError) Error() string {
	return fmt.Sprintf("exercise with ID %s not found", e.ExerciseID)
}

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*Workout, error)
	List(ctx context.Context, params ListParams) (_ []Workout, total int, err error)
	Update(ctx context.Context, workout *Workout) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type exercisesCatalog interface {
	Get(ctx context.Context, id uuid.UUID) (*exercises.Exercise, error)
}

type statsRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	UpdateStats(ctx context.Context, id uuid.UUID, stats users.Stats) error
}

type Service struct {
	repo    workoutsRepo
	catalog exercisesCatalog
	stats   statsRepo
}

func NewService(repo workoutsRepo, catalog exercisesCatalog, stats statsRepo) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		stats:   stats,
	}
}

// Create logs a new workout. Referenced catalog exercises must exist.
// For non-template workouts the owner's lifetime stats are updated
// afterwards; exerciseCount is taken from the caller, not derived from
// the exercises array.
func (s *Service) Create(ctx context.Context, workout Workout, exerciseCount int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.validateExercises(ctx, workout.Exercises); err != nil {
		return nil, err
	}

	if workout.Date.IsZero() {
		workout.Date = time.Now()
	}
	if workout.Exercises == nil {
		workout.Exercises = []LoggedExercise{}
	}
	if workout.Tags == nil {
		workout.Tags = []string{}
	}
	if workout.Visibility == "" {
		workout.Visibility = VisibilityPrivate
	}

	added, err := s.repo.Add(ctx, workout)
	if err != nil {
		return nil, err
	}

	if !added.IsTemplate {
		// stats update is a separate write: a failure here leaves the
		// workout in place and only logs the miss
		if err := s.applyStats(ctx, added, exerciseCount); err != nil {
			log.Errorf("update stats for user %s after workout %s: %s", added.UserID, added.ID, err)
		}
	}

	s.resolveCategories(ctx, added.Exercises)

	return added, nil
}

func (s *Service) List(ctx context.Context, params ListParams) (_ []Workout, _ Pagination, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workoutsList, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, Pagination{}, err
	}

	for i := range workoutsList {
		s.resolveCategories(ctx, workoutsList[i].Exercises)
	}

	pages := total / params.Limit
	if total%params.Limit != 0 {
		pages++
	}

	return workoutsList, Pagination{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
		Pages: pages,
	}, nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	s.resolveCategories(ctx, workout.Exercises)

	return workout, nil
}

// UpdateParams carries the allow-listed partial workout update. Nil
// fields stay unchanged; stats are never re-run for updates.
type UpdateParams struct {
	Name           *string           `json:"name"`
	Description    *string           `json:"description"`
	Date           *time.Time        `json:"date"`
	Duration       *int              `json:"duration" validate:"omitempty,gte=0"`
	Exercises      *[]LoggedExercise `json:"exercises"`
	CaloriesBurned *int              `json:"caloriesBurned" validate:"omitempty,gte=0"`
	Tags           *[]string         `json:"tags"`
	Rating         *int              `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Visibility     *Visibility       `json:"visibility" validate:"omitempty,oneof=private friends public"`
	Notes          *string           `json:"notes"`
}

func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, params UpdateParams) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if params.Exercises != nil {
		if err := s.validateExercises(ctx, *params.Exercises); err != nil {
			return nil, err
		}
		workout.Exercises = *params.Exercises
	}
	if params.Name != nil {
		workout.Name = *params.Name
	}
	if params.Description != nil {
		workout.Description = *params.Description
	}
	if params.Date != nil {
		workout.Date = *params.Date
	}
	if params.Duration != nil {
		workout.Duration = *params.Duration
	}
	if params.CaloriesBurned != nil {
		workout.CaloriesBurned = *params.CaloriesBurned
	}
	if params.Tags != nil {
		workout.Tags = *params.Tags
	}
	if params.Rating != nil {
		workout.Rating = params.Rating
	}
	if params.Visibility != nil {
		workout.Visibility = *params.Visibility
	}
	if params.Notes != nil {
		workout.Notes = *params.Notes
	}

	if err := s.repo.Update(ctx, workout); err != nil {
		return nil, err
	}

	s.resolveCategories(ctx, workout.Exercises)

	return workout, nil
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.Delete(ctx, id, userID)
}

// AppendExercise adds one logged exercise to the end of an existing
// workout's exercise list.
func (s *Service) AppendExercise(ctx context.Context, id, userID uuid.UUID, entry LoggedExercise) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.appendExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.validateExercises(ctx, []LoggedExercise{entry}); err != nil {
		return nil, err
	}

	workout, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if entry.Sets == nil {
		entry.Sets = []Set{}
	}
	workout.Exercises = append(workout.Exercises, entry)

	if err := s.repo.Update(ctx, workout); err != nil {
		return nil, err
	}

	s.resolveCategories(ctx, workout.Exercises)

	return workout, nil
}

func (s *Service) validateExercises(ctx context.Context, entries []LoggedExercise) error {
	for i := range entries {
		for j := range entries[i].Sets {
			if !entries[i].Sets[j].Countable() {
				return ErrSetNotCountable
			}
		}

		if entries[i].ExerciseID == nil {
			continue
		}
		if _, err := s.catalog.Get(ctx, *entries[i].ExerciseID); err != nil {
			if errors.Is(err, exercises.ErrExerciseNotFound) {
				return &ExerciseRefError{ExerciseID: *entries[i].ExerciseID}
			}
			return err
		}
	}
	return nil
}

func (s *Service) applyStats(ctx context.Context, workout *Workout, exerciseCount int) error {
	user, err := s.stats.GetByID(ctx, workout.UserID)
	if err != nil {
		return err
	}

	updated := users.UpdatedStats(user.Stats, users.CompletedWorkout{
		Date:           workout.Date,
		ExerciseCount:  exerciseCount,
		Duration:       workout.Duration,
		CaloriesBurned: workout.CaloriesBurned,
	})

	return s.stats.UpdateStats(ctx, workout.UserID, updated)
}

// resolveCategories backfills the display category for entries that
// reference a catalog exercise. Lookup failures are not fatal.
func (s *Service) resolveCategories(ctx context.Context, entries []LoggedExercise) {
	resolved := make(map[uuid.UUID]exercises.Category)
	for i := range entries {
		if entries[i].ExerciseID == nil || entries[i].Category != "" {
			continue
		}
		id := *entries[i].ExerciseID
		if category, ok := resolved[id]; ok {
			entries[i].Category = category
			continue
		}
		exercise, err := s.catalog.Get(ctx, id)
		if err != nil {
			log.Tracef("resolve category for exercise %s: %s", id, err)
			continue
		}
		resolved[id] = exercise.Category
		entries[i].Category = exercise.Category
	}
}
