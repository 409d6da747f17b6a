package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mkrajina/fitlog/internal/telemetry/tracing"
	"github.com/mkrajina/fitlog/internal/users"
	"github.com/mkrajina/fitlog/pkg"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRequiresGoogleAuth = errors.New("account uses google sign-in")
	ErrAccountDeactivated = errors.New("account deactivated")
)

type usersRepo interface {
	Create(ctx context.Context, user users.User) (*users.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*users.User, error)
	UpdateProfile(ctx context.Context, user *users.User) error
	LinkGoogleAccount(ctx context.Context, id uuid.UUID, googleID, avatar string, emailVerified bool) error
}

type Service struct {
	repo           usersRepo
	tokens         *TokenService
	googleVerifier GoogleVerifier
}

func NewService(repo usersRepo, tokens *TokenService, googleVerifier GoogleVerifier) *Service {
	return &Service{
		repo:           repo,
		tokens:         tokens,
		googleVerifier: googleVerifier,
	}
}

// Register creates a local account and issues a token for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (_ *users.User, token string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, users.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		AuthProvider: users.AuthProviderLocal,
		Preferences:  users.DefaultPreferences(),
	})
	if err != nil {
		return nil, "", err
	}

	token, err = s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	log.Debugf("registered user %s [%s]", user.ID, user.Email)

	return user, token, nil
}

// Login authenticates a local account with email and password.
func (s *Service) Login(ctx context.Context, email, password string) (_ *users.User, token string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if user.AuthProvider == users.AuthProviderGoogle || !user.HasPassword() {
		return nil, "", ErrRequiresGoogleAuth
	}
	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrAccountDeactivated
	}

	token, err = s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// GoogleAuth signs a user in with a google id token. An account is
// looked up by google id first, then by email (in which case the google
// identity gets linked to it), and created fresh as a last resort.
func (s *Service) GoogleAuth(ctx context.Context, idToken string) (_ *users.User, token string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.google")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	googleUser, err := s.googleVerifier.Verify(ctx, idToken)
	if err != nil {
		return nil, "", ErrInvalidGoogleToken
	}

	user, err := s.repo.GetByGoogleID(ctx, googleUser.GoogleID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return nil, "", err
	}

	if user == nil {
		user, err = s.repo.GetByEmail(ctx, googleUser.Email)
		switch {
		case err == nil:
			if linkErr := s.repo.LinkGoogleAccount(
				ctx, user.ID, googleUser.GoogleID, googleUser.Avatar, googleUser.EmailVerified,
			); linkErr != nil {
				return nil, "", fmt.Errorf("link google account: %w", linkErr)
			}
			user, err = s.repo.GetByID(ctx, user.ID)
			if err != nil {
				return nil, "", err
			}
		case errors.Is(err, users.ErrUserNotFound):
			user, err = s.repo.Create(ctx, users.User{
				Name:          googleUser.Name,
				Email:         googleUser.Email,
				GoogleID:      &googleUser.GoogleID,
				Avatar:        googleUser.Avatar,
				AuthProvider:  users.AuthProviderGoogle,
				EmailVerified: googleUser.EmailVerified,
				Preferences:   users.DefaultPreferences(),
			})
			if err != nil {
				return nil, "", err
			}
			log.Debugf("created user %s [%s] via google sign-in", user.ID, user.Email)
		default:
			return nil, "", err
		}
	}

	if !user.IsActive {
		return nil, "", ErrAccountDeactivated
	}

	token, err = s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfileParams carries the allow-listed account updates. Nil
// fields stay unchanged.
type UpdateProfileParams struct {
	Name        *string
	Avatar      *string
	Profile     *users.Profile
	Preferences *users.Preferences
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (_ *users.User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.updateProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Avatar != nil {
		user.Avatar = *params.Avatar
	}
	if params.Profile != nil {
		user.Profile = *params.Profile
	}
	if params.Preferences != nil {
		user.Preferences = *params.Preferences
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ValidateToken exposes token checks to the auth middleware.
func (s *Service) ValidateToken(token string) (uuid.UUID, error) {
	return s.tokens.Validate(token)
}
