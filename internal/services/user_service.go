package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/paywallet/bank-webhook/internal/auth"
	"github.com/paywallet/bank-webhook/internal/models"
	repo "github.com/paywallet/bank-webhook/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type UserService struct {
	r  repo.Users
	b  repo.Balances
	tm *auth.TokenManager
}

func NewUserService(r repo.Users, b repo.Balances, tm *auth.TokenManager) *UserService {
	return &UserService{r: r, b: b, tm: tm}
}

func (s *UserService) Register(ctx context.Context, email, password string) (models.User, error) {
	u := models.User{Email: strings.TrimSpace(email)}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if len(password) < 8 {
		return models.User{}, errors.New("password too short")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	created, err := s.r.Create(ctx, u.Email, hash)
	if err != nil {
		return models.User{}, err
	}
	// wallet starts at zero
	if _, err := s.b.GetOrCreate(ctx, created.ID); err != nil {
		return models.User{}, err
	}
	return created, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.r.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	access, refresh, exp, err := s.tm.GeneratePair(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}
