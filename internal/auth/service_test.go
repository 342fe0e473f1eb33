package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/groupcollect/groupcollect-backend/pkg/auth"
	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/db/models"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/security"
)

type stubUserRepository struct {
	byLogin      map[string]*models.User
	lastLogin    map[uuid.UUID]time.Time
	rehashedWith string
}

func (s *stubUserRepository) FindByLogin(_ context.Context, identity string) (*models.User, error) {
	if user, ok := s.byLogin[identity]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

func (s *stubUserRepository) UpdatePasswordHash(_ context.Context, _ uuid.UUID, hash string) error {
	s.rehashedWith = hash
	return nil
}

type stubSessionManager struct {
	generated []string
	err       error
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "groupcollect", ExpirationMinutes: 30}
}

func mustHashPassword(t *testing.T, password string, cfg config.PasswordConfig) string {
	t.Helper()
	hash, err := security.HashPassword(password, cfg)
	require.NoError(t, err)
	return hash
}

func buildTestService(t *testing.T, user *models.User, pwCfg config.PasswordConfig) (Service, *stubUserRepository, *stubSessionManager) {
	t.Helper()
	repo := &stubUserRepository{
		byLogin:   map[string]*models.User{user.Username: user, user.Email: user},
		lastLogin: map[uuid.UUID]time.Time{},
	}
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: pwCfg,
	})
	require.NoError(t, err)
	return svc, repo, sessions
}

func testUser(t *testing.T, password string, role enums.UserRole) *models.User {
	return &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: mustHashPassword(t, password, testPasswordConfig()),
		Role:         role,
		IsActive:     true,
	}
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	user := testUser(t, "correct-horse", enums.UserRoleAdmin)
	svc, repo, sessions := buildTestService(t, user, testPasswordConfig())

	for _, login := range []string{"alice", " alice@example.com "} {
		resp, err := svc.Login(context.Background(), LoginRequest{Login: login, Password: "correct-horse"})
		require.NoError(t, err)
		require.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, enums.UserRoleAdmin, resp.User.Role)

		claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, enums.UserRoleAdmin, claims.Role)
		assert.Equal(t, "refresh-"+claims.ID, resp.RefreshToken)
	}
	assert.Len(t, sessions.generated, 2)
	assert.Contains(t, repo.lastLogin, user.ID)
	assert.Empty(t, repo.rehashedWith)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	user := testUser(t, "correct-horse", enums.UserRoleUser)
	svc, _, sessions := buildTestService(t, user, testPasswordConfig())

	cases := []LoginRequest{
		{Login: "alice", Password: "wrong"},
		{Login: "nobody", Password: "correct-horse"},
		{Login: "", Password: "correct-horse"},
		{Login: "alice", Password: ""},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), req.Login)
	}

	user.IsActive = false
	_, err := svc.Login(context.Background(), LoginRequest{Login: "alice", Password: "correct-horse"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Empty(t, sessions.generated)
}

func TestLoginRehashesOutdatedHash(t *testing.T) {
	user := testUser(t, "correct-horse", enums.UserRoleUser)
	stronger := testPasswordConfig()
	stronger.ArgonTime = 2
	svc, repo, _ := buildTestService(t, user, stronger)

	_, err := svc.Login(context.Background(), LoginRequest{Login: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, repo.rehashedWith)
	assert.False(t, security.NeedsRehash(repo.rehashedWith, stronger))
}

func TestLoginSessionFailure(t *testing.T) {
	user := testUser(t, "correct-horse", enums.UserRoleUser)
	svc, _, sessions := buildTestService(t, user, testPasswordConfig())
	sessions.err = errors.New("redis down")

	_, err := svc.Login(context.Background(), LoginRequest{Login: "alice", Password: "correct-horse"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}
