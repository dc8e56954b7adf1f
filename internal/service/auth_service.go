package service

import (
	"context"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/repository"
	"github.com/sgsgita/moderation-backend/pkg/jwt"
	"github.com/sgsgita/moderation-backend/pkg/logger"
)

// LoginResult is the login response payload
type LoginResult struct {
	Moderator    *domain.Moderator `json:"moderator"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresIn    int               `json:"expires_in"`
}

// AuthService authenticates moderator accounts and issues tokens
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*LoginResult, error)
	CurrentModerator(ctx context.Context, moderatorID string) (*domain.Moderator, error)
}

type authService struct {
	moderatorRepo repository.ModeratorRepository
	jwtManager    *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(moderatorRepo repository.ModeratorRepository, jwtManager *jwt.Manager) AuthService {
	return &authService{
		moderatorRepo: moderatorRepo,
		jwtManager:    jwtManager,
	}
}

// Login authenticates a moderator and returns a token pair. Not-found and
// wrong-password collapse into one error so usernames cannot be probed.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	moderator, err := s.moderatorRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(moderator.Password), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	if moderator.Status == domain.ModeratorStatusDisabled {
		return nil, common.ErrAccountDisabled
	}

	return s.issueTokens(moderator)
}

// RefreshToken exchanges a refresh token for a new token pair. The role is
// re-read from the store, so a demotion or disable takes effect on the next
// refresh at the latest.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.jwtManager.VerifyToken(refreshToken)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	id, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	moderator, err := s.moderatorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	if moderator.Status == domain.ModeratorStatusDisabled {
		return nil, common.ErrAccountDisabled
	}

	return s.issueTokens(moderator)
}

// CurrentModerator resolves the authenticated moderator's profile
func (s *authService) CurrentModerator(ctx context.Context, moderatorID string) (*domain.Moderator, error) {
	id, err := strconv.ParseUint(moderatorID, 10, 64)
	if err != nil {
		return nil, common.ErrModeratorNotFound
	}
	return s.moderatorRepo.FindByID(ctx, id)
}

func (s *authService) issueTokens(moderator *domain.Moderator) (*LoginResult, error) {
	idStr := strconv.FormatUint(moderator.ID, 10)

	accessToken, err := s.jwtManager.GenerateAccessToken(idStr, moderator.Username, string(moderator.Role))
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(idStr)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Info().
		Str("moderator", moderator.Username).
		Str("role", string(moderator.Role)).
		Msg("tokens issued")

	return &LoginResult{
		Moderator:    moderator,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}
