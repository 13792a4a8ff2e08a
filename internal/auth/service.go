package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotConfigured      = errors.New("operator login not configured")
)

// OperatorSubject is the token subject of the single operator account.
const OperatorSubject = "operator"

const tokenTTL = 24 * time.Hour

type Service struct {
	passwordHash []byte
	jwtSecret    []byte
	now          func() time.Time
}

// NewService checks operator passwords against the bcrypt passwordHash
// and signs tokens with jwtSecret.
func NewService(passwordHash, jwtSecret string) *Service {
	return &Service{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(jwtSecret),
		now:          time.Now,
	}
}

type TokenResult struct {
	Token     string `json:"token"`
	Subject   string `json:"subject"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Login exchanges the operator password for a signed token.
func (s *Service) Login(password string) (*TokenResult, error) {
	if len(s.passwordHash) == 0 || len(s.jwtSecret) == 0 {
		return nil, ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	exp := s.now().Add(tokenTTL)
	token, err := s.issueToken(OperatorSubject, exp)
	if err != nil {
		return nil, err
	}
	return &TokenResult{Token: token, Subject: OperatorSubject, ExpiresAt: exp.Unix()}, nil
}

func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	subject, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("invalid token subject")
	}

	return subject, nil
}

func (s *Service) issueToken(subject string, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": s.now().Unix(),
		"exp": exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// HashPassword produces a value suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
