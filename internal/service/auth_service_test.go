package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/domain"
	"github.com/sgsgita/moderation-backend/pkg/jwt"
)

// mockModeratorRepo is a mock implementation of ModeratorRepository
type mockModeratorRepo struct {
	mock.Mock
}

func (m *mockModeratorRepo) FindByID(ctx context.Context, id uint64) (*domain.Moderator, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Moderator), args.Error(1)
}

func (m *mockModeratorRepo) FindByUsername(ctx context.Context, username string) (*domain.Moderator, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Moderator), args.Error(1)
}

func (m *mockModeratorRepo) List(ctx context.Context, page, limit int) ([]domain.Moderator, int64, error) {
	args := m.Called(page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Moderator), args.Get(1).(int64), args.Error(2)
}

func (m *mockModeratorRepo) Create(ctx context.Context, moderator *domain.Moderator) error {
	args := m.Called(moderator)
	return args.Error(0)
}

func (m *mockModeratorRepo) UpdateRole(ctx context.Context, id uint64, role domain.Role) error {
	args := m.Called(id, role)
	return args.Error(0)
}

func (m *mockModeratorRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *mockModeratorRepo) Delete(ctx context.Context, id uint64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *mockModeratorRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *mockModeratorRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func newTestJWTManager() *jwt.Manager {
	return jwt.NewManager("test-secret-key-for-auth", 3600, 86400)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hashed)
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockModeratorRepo)
	svc := NewAuthService(repo, newTestJWTManager())

	moderator := &domain.Moderator{
		ID:       7,
		Username: "reviewer",
		Password: hashFor(t, "password123"),
		Role:     domain.RoleModerator,
		Status:   domain.ModeratorStatusActive,
	}
	repo.On("FindByUsername", "reviewer").Return(moderator, nil)

	result, err := svc.Login(context.Background(), "reviewer", "password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "reviewer", result.Moderator.Username)
	assert.Equal(t, 3600, result.ExpiresIn)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mockModeratorRepo)
	svc := NewAuthService(repo, newTestJWTManager())

	moderator := &domain.Moderator{
		ID:       7,
		Username: "reviewer",
		Password: hashFor(t, "password123"),
		Status:   domain.ModeratorStatusActive,
	}
	repo.On("FindByUsername", "reviewer").Return(moderator, nil)

	_, err := svc.Login(context.Background(), "reviewer", "wrong")

	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_UnknownUsernameSameError(t *testing.T) {
	repo := new(mockModeratorRepo)
	svc := NewAuthService(repo, newTestJWTManager())

	repo.On("FindByUsername", "ghost").Return(nil, common.ErrModeratorNotFound)

	_, err := svc.Login(context.Background(), "ghost", "whatever")

	// Same error as a wrong password, so usernames cannot be probed.
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	repo := new(mockModeratorRepo)
	svc := NewAuthService(repo, newTestJWTManager())

	moderator := &domain.Moderator{
		ID:       8,
		Username: "retired",
		Password: hashFor(t, "password123"),
		Status:   domain.ModeratorStatusDisabled,
	}
	repo.On("FindByUsername", "retired").Return(moderator, nil)

	_, err := svc.Login(context.Background(), "retired", "password123")

	assert.ErrorIs(t, err, common.ErrAccountDisabled)
}

func TestRefreshToken_ReReadsRole(t *testing.T) {
	repo := new(mockModeratorRepo)
	mgr := newTestJWTManager()
	svc := NewAuthService(repo, mgr)

	moderator := &domain.Moderator{
		ID:       9,
		Username: "promoted",
		Password: hashFor(t, "password123"),
		Role:     domain.RoleModerator,
		Status:   domain.ModeratorStatusActive,
	}
	repo.On("FindByUsername", "promoted").Return(moderator, nil)

	login, err := svc.Login(context.Background(), "promoted", "password123")
	assert.NoError(t, err)

	// Role change lands in the store after login.
	promoted := *moderator
	promoted.Role = domain.RoleAdmin
	repo.On("FindByID", uint64(9)).Return(&promoted, nil)

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	assert.NoError(t, err)

	claims, err := mgr.VerifyToken(refreshed.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.RoleAdmin), claims.Role)
}

func TestRefreshToken_InvalidToken(t *testing.T) {
	repo := new(mockModeratorRepo)
	svc := NewAuthService(repo, newTestJWTManager())

	_, err := svc.RefreshToken(context.Background(), "not-a-token")

	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestRefreshToken_DisabledAccountCannotRefresh(t *testing.T) {
	repo := new(mockModeratorRepo)
	mgr := newTestJWTManager()
	svc := NewAuthService(repo, mgr)

	moderator := &domain.Moderator{
		ID:       10,
		Username: "suspended",
		Password: hashFor(t, "password123"),
		Role:     domain.RoleModerator,
		Status:   domain.ModeratorStatusActive,
	}
	repo.On("FindByUsername", "suspended").Return(moderator, nil)

	login, err := svc.Login(context.Background(), "suspended", "password123")
	assert.NoError(t, err)

	disabled := *moderator
	disabled.Status = domain.ModeratorStatusDisabled
	repo.On("FindByID", uint64(10)).Return(&disabled, nil)

	_, err = svc.RefreshToken(context.Background(), login.RefreshToken)

	assert.ErrorIs(t, err, common.ErrAccountDisabled)
}
