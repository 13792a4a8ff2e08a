package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, password string) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return NewService(string(hash), "test-secret")
}

func TestLoginIssuesOperatorToken(t *testing.T) {
	s := newTestService(t, "hunter22")

	res, err := s.Login("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	sub, err := s.ValidateToken(res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if sub != OperatorSubject {
		t.Errorf("subject = %q, want %q", sub, OperatorSubject)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newTestService(t, "hunter22")
	if _, err := s.Login("nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginNotConfigured(t *testing.T) {
	s := NewService("", "secret")
	if _, err := s.Login("x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	s := newTestService(t, "pw")
	res, err := s.Login("pw")
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if _, err := s.ValidateToken(res.Token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	s := newTestService(t, "pw")
	res, err := s.Login("pw")
	if err != nil {
		t.Fatal(err)
	}
	other := NewService("", "other-secret")
	if _, err := other.ValidateToken(res.Token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestService(t, "pw")
	res, err := s.Login("pw")
	if err != nil {
		t.Fatal(err)
	}

	var gotUser string
	h := s.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + res.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/scenes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if gotUser != OperatorSubject {
		t.Errorf("user in context = %q", gotUser)
	}
}

func TestTokenHandler(t *testing.T) {
	h := NewHandler(newTestService(t, "pw"))

	tests := []struct {
		body string
		want int
	}{
		{`{"password":"pw"}`, http.StatusOK},
		{`{"password":"bad"}`, http.StatusUnauthorized},
		{`{}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		h.Token(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.body, rec.Code, tt.want)
		}
	}
}

func TestUserIDFromEmptyContext(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestAuthenticateQueryToken(t *testing.T) {
	s := newTestService(t, "pw")
	res, err := s.Login("pw")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/ws/scene/scene_x?token="+res.Token, nil)
	sub, err := s.Authenticate(req)
	if err != nil || sub != OperatorSubject {
		t.Errorf("Authenticate = %q, %v", sub, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws/scene/scene_x", nil)
	if _, err := s.Authenticate(req); !errors.Is(err, ErrMissingToken) {
		t.Errorf("err = %v, want ErrMissingToken", err)
	}
}
