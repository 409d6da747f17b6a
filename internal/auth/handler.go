package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/mkrajina/fitlog/internal/telemetry/metrics"
	"github.com/mkrajina/fitlog/internal/telemetry/tracing"
	"github.com/mkrajina/fitlog/internal/users"
	"github.com/mkrajina/fitlog/pkg"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleAuthRequest struct {
	Token string `json:"token" validate:"required"`
}

type UpdateProfileRequest struct {
	Name        *string            `json:"name" validate:"omitempty,min=2,max=50"`
	Avatar      *string            `json:"avatar"`
	Profile     *users.Profile     `json:"profile"`
	Preferences *users.Preferences `json:"preferences"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

type Handler struct {
	service        *Service
	metricsManager *metrics.Manager
	validate       *validator.Validate
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
		validate:       validator.New(),
	}
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	var req RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if issues := pkg.ValidationIssues(handler.validate.Struct(&req)); len(issues) > 0 {
		pkg.WriteErrorWithDetails(w, pkg.ErrKindValidation, "invalid registration request", issues, http.StatusBadRequest)
		return
	}

	user, token, err := handler.service.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			pkg.WriteError(w, pkg.ErrKindDuplicateResource, "user with this email already exists", http.StatusBadRequest)
			return
		}
		log.Errorf("register user [%s]: %s", req.Email, err)
		pkg.WriteError(w, pkg.ErrKindServer, "registration failed", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterRegistrations.Inc()
	}

	pkg.WriteJSON(w, AuthResponse{Token: token, User: user}, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if issues := pkg.ValidationIssues(handler.validate.Struct(&req)); len(issues) > 0 {
		pkg.WriteErrorWithDetails(w, pkg.ErrKindValidation, "invalid login request", issues, http.StatusBadRequest)
		return
	}

	user, token, err := handler.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			pkg.WriteError(w, pkg.ErrKindInvalidCredentials, "invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, ErrRequiresGoogleAuth):
			pkg.WriteError(w, pkg.ErrKindRequiresGoogleAuth, "this account uses google sign-in", http.StatusBadRequest)
		case errors.Is(err, ErrAccountDeactivated):
			pkg.WriteError(w, pkg.ErrKindDeactivated, "account is deactivated", http.StatusForbidden)
		default:
			log.Errorf("login [%s]: %s", req.Email, err)
			pkg.WriteError(w, pkg.ErrKindServer, "login failed", http.StatusInternalServerError)
		}
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterLogins.Inc()
	}

	pkg.WriteJSON(w, AuthResponse{Token: token, User: user}, http.StatusOK)
}

func (handler *Handler) HandleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.google")
	defer span.End()

	var req GoogleAuthRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if issues := pkg.ValidationIssues(handler.validate.Struct(&req)); len(issues) > 0 {
		pkg.WriteErrorWithDetails(w, pkg.ErrKindValidation, "invalid google auth request", issues, http.StatusBadRequest)
		return
	}

	user, token, err := handler.service.GoogleAuth(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidGoogleToken):
			pkg.WriteError(w, pkg.ErrKindInvalidCredentials, "invalid google token", http.StatusUnauthorized)
		case errors.Is(err, ErrAccountDeactivated):
			pkg.WriteError(w, pkg.ErrKindDeactivated, "account is deactivated", http.StatusForbidden)
		default:
			log.Errorf("google auth: %s", err)
			pkg.WriteError(w, pkg.ErrKindServer, "google sign-in failed", http.StatusInternalServerError)
		}
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterLogins.Inc()
	}

	pkg.WriteJSON(w, AuthResponse{Token: token, User: user}, http.StatusOK)
}

func (handler *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.me")
	defer span.End()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		pkg.WriteError(w, pkg.ErrKindUnauthorized, "not authenticated", http.StatusUnauthorized)
		return
	}

	user, err := handler.service.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			pkg.WriteError(w, pkg.ErrKindNotFound, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get user %s: %s", userID, err)
		pkg.WriteError(w, pkg.ErrKindServer, "failed to get user", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, user, http.StatusOK)
}

// HandleLogout exists for API symmetry: tokens are stateless, the
// client simply drops its copy.
func (handler *Handler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, `{"message":"logged out"}`)
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.updateProfile")
	defer span.End()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		pkg.WriteError(w, pkg.ErrKindUnauthorized, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if issues := pkg.ValidationIssues(handler.validate.Struct(&req)); len(issues) > 0 {
		pkg.WriteErrorWithDetails(w, pkg.ErrKindValidation, "invalid profile update", issues, http.StatusBadRequest)
		return
	}

	user, err := handler.service.UpdateProfile(ctx, userID, UpdateProfileParams{
		Name:        req.Name,
		Avatar:      req.Avatar,
		Profile:     req.Profile,
		Preferences: req.Preferences,
	})
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			pkg.WriteError(w, pkg.ErrKindNotFound, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("update profile for %s: %s", userID, err)
		pkg.WriteError(w, pkg.ErrKindServer, "failed to update profile", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, user, http.StatusOK)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Tracef("decode request body: %s", err)
		pkg.WriteError(w, pkg.ErrKindValidation, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
