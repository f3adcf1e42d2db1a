package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Evgen-Mutagen/atm-inventory/internal/core"
	"github.com/Evgen-Mutagen/atm-inventory/internal/metrics"
	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
	"github.com/Evgen-Mutagen/atm-inventory/internal/repository"
)

const tokenTTL = 24 * time.Hour

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCredentials   = errors.New("username and password are required")
)

type authService struct {
	userRepo     repository.UserRepository
	jwtSecretKey string
	hashCost     int
}

func NewAuthService(userRepo repository.UserRepository, jwtSecretKey string, hashCost int) core.AuthService {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		hashCost:     hashCost,
	}
}

func (s *authService) Register(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.register(ctx, username, password)
	switch {
	case err == nil:
		metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	case errors.Is(err, ErrUserAlreadyExists):
		metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
	case errors.Is(err, ErrEmptyCredentials):
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
	default:
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
	}
	return user, err
}

func (s *authService) register(ctx context.Context, username, password string) (*model.User, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	existingUser, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	// The lookup above races with concurrent registrations; the unique index decides.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, token, err := s.login(ctx, username, password)
	switch {
	case err == nil:
		metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrEmptyCredentials):
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
	default:
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
	}
	return user, token, err
}

func (s *authService) login(ctx context.Context, username, password string) (*model.User, string, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, "", ErrEmptyCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// EnsureUser creates the account unless the username is already taken.
func (s *authService) EnsureUser(ctx context.Context, username, password string) error {
	_, err := s.register(ctx, username, password)
	if errors.Is(err, ErrUserAlreadyExists) {
		return nil
	}
	return err
}

func (s *authService) ValidateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtSecretKey), nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, jwt.ErrSignatureInvalid
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, jwt.ErrSignatureInvalid
	}
	return int64(userID), nil
}

func (s *authService) generateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecretKey))
}
