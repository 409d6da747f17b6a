package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type RepoMock struct {
	Users map[uuid.UUID]*User
}

func NewRepoMock() *RepoMock {
	return &RepoMock{
		Users: make(map[uuid.UUID]*User),
	}
}

func (r *RepoMock) Create(_ context.Context, user User) (*User, error) {
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, ErrEmailTaken
		}
	}
	user.ID = uuid.New()
	user.IsActive = true
	r.Users[user.ID] = &user
	return &user, nil
}

func (r *RepoMock) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	user, ok := r.Users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (r *RepoMock) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, email) {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *RepoMock) GetByGoogleID(_ context.Context, googleID string) (*User, error) {
	for _, u := range r.Users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *RepoMock) UpdateProfile(_ context.Context, user *User) error {
	stored, ok := r.Users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	stored.Name = user.Name
	stored.Avatar = user.Avatar
	stored.Profile = user.Profile
	stored.Preferences = user.Preferences
	return nil
}

func (r *RepoMock) UpdateStats(_ context.Context, id uuid.UUID, stats Stats) error {
	stored, ok := r.Users[id]
	if !ok {
		return ErrUserNotFound
	}
	stored.Stats = stats
	return nil
}

func (r *RepoMock) LinkGoogleAccount(_ context.Context, id uuid.UUID, googleID, avatar string, emailVerified bool) error {
	stored, ok := r.Users[id]
	if !ok {
		return ErrUserNotFound
	}
	stored.GoogleID = &googleID
	stored.AuthProvider = AuthProviderGoogle
	if stored.Avatar == "" {
		stored.Avatar = avatar
	}
	stored.EmailVerified = stored.EmailVerified || emailVerified
	return nil
}
