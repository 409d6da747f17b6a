package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkrajina/fitlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrWorkoutNotFound = errors.New("workout not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const workoutColumns = `
	id, user_id, name, description, date, duration, exercises,
	calories_burned, tags, rating, visibility, notes, is_template,
	template_name, created_at, updated_at`

func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exercisesJson, err := json.Marshal(workout.Exercises)
	if err != nil {
		return nil, fmt.Errorf("marshal exercises: %w", err)
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workouts
				(user_id, name, description, date, duration, exercises, calories_burned, tags, rating, visibility, notes, is_template, template_name)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at, updated_at;`,
		workout.UserID, workout.Name, workout.Description, workout.Date, workout.Duration,
		exercisesJson, workout.CaloriesBurned, workout.Tags, workout.Rating, workout.Visibility,
		workout.Notes, workout.IsTemplate, workout.TemplateName,
	).Scan(&workout.ID, &workout.CreatedAt, &workout.UpdatedAt)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("workout.id", workout.ID.String()))

	return &workout, nil
}

// Get returns the workout only if it belongs to the given user.
func (r *Repo) Get(ctx context.Context, id, userID uuid.UUID) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id.String()))

	row := r.db.QueryRow(
		ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	workout, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	return workout, nil
}

// List returns one page of the user's workouts, newest first, together
// with the total match count.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workouts WHERE user_id = $1 AND is_template = $2`,
		params.UserID, params.IsTemplate,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workouts: %w", err)
	}

	offset := (params.Page - 1) * params.Limit
	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+`
			FROM workouts
			WHERE user_id = $1 AND is_template = $2
			ORDER BY date DESC
			LIMIT $3 OFFSET $4`,
		params.UserID, params.IsTemplate, params.Limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var workoutsList []Workout
	for rows.Next() {
		workout, err := scanWorkout(rows)
		if err != nil {
			return nil, 0, err
		}
		workoutsList = append(workoutsList, *workout)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("workouts.count", len(workoutsList)))

	return workoutsList, total, nil
}

func (r *Repo) Update(ctx context.Context, workout *Workout) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", workout.ID.String()))

	exercisesJson, err := json.Marshal(workout.Exercises)
	if err != nil {
		return fmt.Errorf("marshal exercises: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workouts
			SET name = $1, description = $2, date = $3, duration = $4, exercises = $5,
				calories_burned = $6, tags = $7, rating = $8, visibility = $9, notes = $10, updated_at = now()
			WHERE id = $11 AND user_id = $12;`,
		workout.Name, workout.Description, workout.Date, workout.Duration, exercisesJson,
		workout.CaloriesBurned, workout.Tags, workout.Rating, workout.Visibility, workout.Notes,
		workout.ID, workout.UserID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id, userID uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id.String()))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

func scanWorkout(row pgx.Row) (*Workout, error) {
	var (
		workout       Workout
		exercisesJson []byte
	)
	err := row.Scan(
		&workout.ID, &workout.UserID, &workout.Name, &workout.Description, &workout.Date,
		&workout.Duration, &exercisesJson, &workout.CaloriesBurned, &workout.Tags,
		&workout.Rating, &workout.Visibility, &workout.Notes, &workout.IsTemplate,
		&workout.TemplateName, &workout.CreatedAt, &workout.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(exercisesJson, &workout.Exercises); err != nil {
		return nil, fmt.Errorf("unmarshal exercises: %w", err)
	}

	return &workout, nil
}
