package service

import (
	"context"
	"os"
	"time"

	"ai-consultancy-be/internal/dto"
	"ai-consultancy-be/internal/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type IAuthService interface {
	// Anonymous issues a signed identity for a browser tab. A returning
	// client may present its previous id to keep its sessions.
	Anonymous(ctx context.Context, req *dto.AnonymousAuthRequest) (*dto.AnonymousAuthResponse, error)
}

type authService struct{}

func NewAuthService() IAuthService {
	return &authService{}
}

func (s *authService) Anonymous(ctx context.Context, req *dto.AnonymousAuthRequest) (*dto.AnonymousAuthResponse, error) {
	userId := uuid.New()
	if req != nil && req.ClientId != "" {
		parsed, err := uuid.Parse(req.ClientId)
		if err == nil {
			userId = parsed
		}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, apperror.New(apperror.KindConfig, "JWT_SECRET is not set")
	}

	claims := jwt.MapClaims{
		"user_id": userId.String(),
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "failed to sign token", err)
	}

	return &dto.AnonymousAuthResponse{
		UserId: userId.String(),
		Token:  token,
	}, nil
}
