package auth

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	autherrors "go-workforce/internal/auth/errors"
	"go-workforce/internal/user"
)

const tokenTTL = 24 * time.Hour

type Service struct {
	users  user.Repository
	logger *zap.Logger
}

func NewService(users user.Repository, logger ...*zap.Logger) *Service {
	l := zap.L().Named("auth_service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Service{users: users, logger: l}
}

func (s *Service) Login(ctx context.Context, in LoginRequest) (*TokenResponse, error) {
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, autherrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, autherrors.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"role":    u.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", u.ID.String()))

	return &TokenResponse{
		AccessToken: signed,
		ExpiresIn:   int64(tokenTTL.Seconds()),
	}, nil
}
