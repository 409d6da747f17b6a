package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var ErrInvalidGoogleToken = errors.New("invalid google token")

// GoogleUser is the identity extracted from a verified google id token.
type GoogleUser struct {
	GoogleID      string
	Email         string
	Name          string
	Avatar        string
	EmailVerified bool
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleUser, error)
}

// GoogleTokenVerifier verifies google id tokens against a client id.
type GoogleTokenVerifier struct {
	clientID  string
	validator *idtoken.Validator
}

func NewGoogleTokenVerifier(ctx context.Context, clientID string, httpClient *http.Client) (*GoogleTokenVerifier, error) {
	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(httpClient), option.WithoutAuthentication())
	if err != nil {
		return nil, fmt.Errorf("create idtoken validator: %w", err)
	}
	return &GoogleTokenVerifier{
		clientID:  clientID,
		validator: validator,
	}, nil
}

func (v *GoogleTokenVerifier) Verify(ctx context.Context, token string) (*GoogleUser, error) {
	payload, err := v.validator.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}

	googleUser := &GoogleUser{
		GoogleID: payload.Subject,
	}
	if email, ok := payload.Claims["email"].(string); ok {
		googleUser.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		googleUser.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		googleUser.Avatar = picture
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		googleUser.EmailVerified = verified
	}

	if googleUser.GoogleID == "" || googleUser.Email == "" {
		return nil, ErrInvalidGoogleToken
	}

	return googleUser, nil
}
