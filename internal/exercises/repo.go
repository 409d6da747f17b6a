package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mkrajina/fitlog/internal/telemetry/tracing"
	"github.com/mkrajina/fitlog/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("exercise with this name already exists")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const exerciseColumns = `
	id, name, description, category, muscle_groups, equipment,
	difficulty, instructions, tips, metrics, is_custom, created_by,
	created_at, updated_at`

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	metricsJson, err := json.Marshal(exercise.Metrics)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO exercises
				(name, description, category, muscle_groups, equipment, difficulty, instructions, tips, metrics, is_custom, created_by)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at;`,
		exercise.Name, exercise.Description, exercise.Category, exercise.MuscleGroups,
		exercise.Equipment, exercise.Difficulty, exercise.Instructions, exercise.Tips,
		metricsJson, exercise.IsCustom, exercise.CreatedBy,
	).Scan(&exercise.ID, &exercise.CreatedAt, &exercise.UpdatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrExerciseExists
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("exercise.id", exercise.ID.String()))

	return &exercise, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id.String()))

	var (
		exercise    Exercise
		metricsJson []byte
	)
	// single-exercise reads also resolve the creator name for custom exercises
	err = r.db.QueryRow(
		ctx,
		`SELECT
				e.id, e.name, e.description, e.category, e.muscle_groups, e.equipment,
				e.difficulty, e.instructions, e.tips, e.metrics, e.is_custom, e.created_by,
				u.name, e.created_at, e.updated_at
			FROM exercises e
			LEFT JOIN users u ON u.id = e.created_by
			WHERE e.id = $1`,
		id,
	).Scan(
		&exercise.ID, &exercise.Name, &exercise.Description, &exercise.Category,
		&exercise.MuscleGroups, &exercise.Equipment, &exercise.Difficulty,
		&exercise.Instructions, &exercise.Tips, &metricsJson,
		&exercise.IsCustom, &exercise.CreatedBy, &exercise.CreatedByName,
		&exercise.CreatedAt, &exercise.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(metricsJson, &exercise.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}

	return &exercise, nil
}

func (r *Repo) GetByName(ctx context.Context, name string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.getByName")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	row := r.db.QueryRow(
		ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE lower(name) = lower($1)`,
		name,
	)

	exercise, err := scanExercise(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	return exercise, nil
}

// List returns catalog exercises matching the filter, sorted by name.
func (r *Repo) List(ctx context.Context, filter ListFilter) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE TRUE`
	var args []any
	nextPlaceholder := func(arg any) string {
		args = append(args, arg)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Category != "" {
		query += " AND category = " + nextPlaceholder(filter.Category)
	}
	if filter.Difficulty != "" {
		query += " AND difficulty = " + nextPlaceholder(filter.Difficulty)
	}
	if filter.MuscleGroup != "" {
		query += " AND " + nextPlaceholder(filter.MuscleGroup) + " = ANY(muscle_groups)"
	}
	if filter.Search != "" {
		placeholder := nextPlaceholder("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (name ILIKE %s OR description ILIKE %s)", placeholder, placeholder)
	}

	query += " ORDER BY name ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exercisesList []Exercise
	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercisesList = append(exercisesList, *exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("exercises.count", len(exercisesList)))

	return exercisesList, nil
}

func scanExercise(row pgx.Row) (*Exercise, error) {
	var (
		exercise    Exercise
		metricsJson []byte
	)
	err := row.Scan(
		&exercise.ID, &exercise.Name, &exercise.Description, &exercise.Category,
		&exercise.MuscleGroups, &exercise.Equipment, &exercise.Difficulty,
		&exercise.Instructions, &exercise.Tips, &metricsJson,
		&exercise.IsCustom, &exercise.CreatedBy, &exercise.CreatedAt, &exercise.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(metricsJson, &exercise.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}

	return &exercise, nil
}
