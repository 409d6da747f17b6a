package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkrajina/fitlog/internal/telemetry/tracing"
	"github.com/mkrajina/fitlog/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	profileJson, err := json.Marshal(user.Profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	preferencesJson, err := json.Marshal(user.Preferences)
	if err != nil {
		return nil, fmt.Errorf("marshal preferences: %w", err)
	}
	statsJson, err := json.Marshal(user.Stats)
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}

	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO users
				(name, email, password_hash, google_id, avatar, auth_provider, email_verified, profile, preferences, stats)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, is_active, created_at, updated_at;`,
		user.Name, user.Email, passwordHash, user.GoogleID, user.Avatar,
		user.AuthProvider, user.EmailVerified, profileJson, preferencesJson, statsJson,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	return &user, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id.String()))

	return r.getUser(ctx, `WHERE id = $1`, id)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getUser(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *Repo) GetByGoogleID(ctx context.Context, googleID string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByGoogleID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getUser(ctx, `WHERE google_id = $1`, googleID)
}

// UpdateProfile persists the mutable account fields: name, avatar,
// profile and preferences documents.
func (r *Repo) UpdateProfile(ctx context.Context, user *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.updateProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	profileJson, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	preferencesJson, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE users SET name = $1, avatar = $2, profile = $3, preferences = $4, updated_at = now() WHERE id = $5;`,
		user.Name, user.Avatar, profileJson, preferencesJson, user.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *Repo) UpdateStats(ctx context.Context, id uuid.UUID, stats Stats) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.updateStats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id.String()))

	statsJson, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE users SET stats = $1, updated_at = now() WHERE id = $2;`,
		statsJson, id,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// LinkGoogleAccount attaches a google identity to an existing local
// account and flips its auth provider to google, so subsequent logins
// go through google sign-in.
func (r *Repo) LinkGoogleAccount(ctx context.Context, id uuid.UUID, googleID, avatar string, emailVerified bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.linkGoogleAccount")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id.String()))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE users
			SET google_id = $1,
				auth_provider = 'google',
				avatar = CASE WHEN avatar = '' THEN $2 ELSE avatar END,
				email_verified = email_verified OR $3,
				updated_at = now()
			WHERE id = $4;`,
		googleID, avatar, emailVerified, id,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *Repo) getUser(ctx context.Context, whereClause string, arg any) (*User, error) {
	var (
		user            User
		passwordHash    *string
		profileJson     []byte
		preferencesJson []byte
		statsJson       []byte
	)

	err := r.db.QueryRow(
		ctx,
		`SELECT
				id, name, email, password_hash, google_id, avatar, auth_provider,
				email_verified, is_active, profile, preferences, stats, created_at, updated_at
			FROM users `+whereClause,
		arg,
	).Scan(
		&user.ID, &user.Name, &user.Email, &passwordHash, &user.GoogleID, &user.Avatar,
		&user.AuthProvider, &user.EmailVerified, &user.IsActive,
		&profileJson, &preferencesJson, &statsJson, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	if err := json.Unmarshal(profileJson, &user.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if err := json.Unmarshal(preferencesJson, &user.Preferences); err != nil {
		return nil, fmt.Errorf("unmarshal preferences: %w", err)
	}
	if err := json.Unmarshal(statsJson, &user.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}

	return &user, nil
}
