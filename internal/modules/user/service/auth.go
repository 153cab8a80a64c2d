package user

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	userDto "ramplog.app/backend/internal/modules/user/dto"
	userRepo "ramplog.app/backend/internal/modules/user/repository"
	"ramplog.app/backend/pkg/apperror"
)

type AuthService interface {
	Login(ctx context.Context, req userDto.LoginRequest) (*userDto.LoginResponse, error)
}

type authService struct {
	repo     userRepo.UserRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo userRepo.UserRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Login(ctx context.Context, req userDto.LoginRequest) (*userDto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &userDto.LoginResponse{Token: token}, nil
}
