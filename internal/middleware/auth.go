package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/mkrajina/fitlog/internal/auth"
	"github.com/mkrajina/fitlog/internal/telemetry/tracing"
	"github.com/mkrajina/fitlog/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type tokenValidator interface {
	ValidateToken(token string) (uuid.UUID, error)
}

type AuthMiddlewareHandler struct {
	tokens       tokenValidator
	allowedPaths map[string]bool
	// GET requests under these prefixes are public (catalog browsing)
	publicGetPrefixes []string
}

func NewAuthMiddlewareHandler(tokens tokenValidator) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		tokens: tokens,
		allowedPaths: map[string]bool{
			"/":                  true,
			"/api/auth/register": true,
			"/api/auth/login":    true,
			"/api/auth/google":   true,
		},
		publicGetPrefixes: []string{
			"/api/exercises",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsAlwaysAllowed(method, path string) bool {
	if h.allowedPaths[path] {
		return true
	}
	if method != http.MethodGet {
		return false
	}
	for _, prefix := range h.publicGetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.pathIsAlwaysAllowed(r.Method, r.URL.Path) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			authHeader := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteError(w, pkg.ErrKindUnauthorized, "missing bearer token", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := h.tokens.ValidateToken(token)
			if err != nil {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteError(w, pkg.ErrKindUnauthorized, "invalid or expired token", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(ctx, userID)))
		})
	}
}
