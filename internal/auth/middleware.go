package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const UserIDKey contextKey = "userID"

var (
	ErrMissingToken = errors.New("missing authorization")
	ErrBadScheme    = errors.New("invalid authorization format")
)

// Authenticate validates the bearer token of r, falling back to the
// "token" query parameter that browsers use for websocket upgrades.
// It returns the token subject.
func (s *Service) Authenticate(r *http.Request) (string, error) {
	token := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" {
			return "", ErrBadScheme
		}
		token = value
	}
	if token == "" {
		return "", ErrMissingToken
	}
	return s.ValidateToken(token)
}

// AuthMiddleware rejects requests without a valid operator token and
// stores the subject in the request context.
func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := s.Authenticate(r)
		switch {
		case errors.Is(err, ErrMissingToken):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
			return
		case errors.Is(err, ErrBadScheme):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
			return
		case err != nil:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
