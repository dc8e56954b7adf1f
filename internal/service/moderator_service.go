package service

import (
	"context"
	"encoding/json"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/internal/repository"
	"github.com/sgsgita/moderation-backend/pkg/cache"
	"github.com/sgsgita/moderation-backend/pkg/logger"
)

// ModeratorService handles reviewer account administration
type ModeratorService interface {
	List(ctx context.Context, page, limit int) ([]domain.Moderator, *common.Meta, error)
	Get(ctx context.Context, id uint64) (*domain.Moderator, error)
	Create(ctx context.Context, req *domain.CreateModeratorRequest) (*domain.Moderator, error)
	UpdateRole(ctx context.Context, id uint64, role domain.Role) error
	SetStatus(ctx context.Context, actorID string, id uint64, status string) error
	Delete(ctx context.Context, actorID string, id uint64) error
}

type moderatorService struct {
	repo  repository.ModeratorRepository
	cache cache.Service
}

// cacheIDKey is the string form of a moderator id, also what the JWT
// subject carries.
func cacheIDKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// NewModeratorService creates a new ModeratorService
func NewModeratorService(repo repository.ModeratorRepository, cacheService cache.Service) ModeratorService {
	return &moderatorService{repo: repo, cache: cacheService}
}

// List returns a paginated moderator roster
func (s *moderatorService) List(ctx context.Context, page, limit int) ([]domain.Moderator, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	moderators, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	meta := &common.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
	return moderators, meta, nil
}

// Get returns one moderator profile, served from cache when possible
func (s *moderatorService) Get(ctx context.Context, id uint64) (*domain.Moderator, error) {
	key := cacheIDKey(id)
	if data, err := s.cache.GetModerator(ctx, key); err == nil {
		var moderator domain.Moderator
		if jsonErr := json.Unmarshal(data, &moderator); jsonErr == nil {
			return &moderator, nil
		}
	}

	moderator, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetModerator(ctx, key, moderator); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("failed to cache moderator profile")
	}
	return moderator, nil
}

// Create registers a new reviewer account
func (s *moderatorService) Create(ctx context.Context, req *domain.CreateModeratorRequest) (*domain.Moderator, error) {
	if !req.Role.Valid() {
		return nil, common.ErrInvalidInput
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrModeratorExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrModeratorExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	moderator := &domain.Moderator{
		Username:    req.Username,
		Email:       req.Email,
		Password:    string(hashed),
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Status:      domain.ModeratorStatusActive,
	}

	if err := s.repo.Create(ctx, moderator); err != nil {
		return nil, err
	}

	logger.GetLogger().Info().
		Str("moderator", moderator.Username).
		Str("role", string(moderator.Role)).
		Msg("moderator account created")
	return moderator, nil
}

// UpdateRole changes a reviewer's role. The change reaches running sessions
// on their next token refresh.
func (s *moderatorService) UpdateRole(ctx context.Context, id uint64, role domain.Role) error {
	if !role.Valid() {
		return common.ErrInvalidInput
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	return s.cache.InvalidateModerator(ctx, cacheIDKey(id))
}

// SetStatus enables or disables an account. An admin cannot disable their
// own account; that would strand the roster.
func (s *moderatorService) SetStatus(ctx context.Context, actorID string, id uint64, status string) error {
	if status != domain.ModeratorStatusActive && status != domain.ModeratorStatusDisabled {
		return common.ErrInvalidInput
	}
	if status == domain.ModeratorStatusDisabled && actorID == cacheIDKey(id) {
		return common.ErrForbidden
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	return s.cache.InvalidateModerator(ctx, cacheIDKey(id))
}

// Delete removes an account. Self-deletion is refused.
func (s *moderatorService) Delete(ctx context.Context, actorID string, id uint64) error {
	if actorID == cacheIDKey(id) {
		return common.ErrForbidden
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.cache.InvalidateModerator(ctx, cacheIDKey(id))
}
