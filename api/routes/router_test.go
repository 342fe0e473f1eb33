package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/groupcollect/groupcollect-backend/internal/auth"
	"github.com/groupcollect/groupcollect-backend/internal/collects"
	"github.com/groupcollect/groupcollect-backend/internal/comments"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	"github.com/groupcollect/groupcollect-backend/internal/payments"
	"github.com/groupcollect/groupcollect-backend/internal/users"
	pkgAuth "github.com/groupcollect/groupcollect-backend/pkg/auth"
	"github.com/groupcollect/groupcollect-backend/pkg/auth/session"
	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/metrics"
	"github.com/groupcollect/groupcollect-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.AccountDTO, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubCollectsService struct {
	collects.Service
}

func (stubCollectsService) ListPublic(ctx context.Context, listing string, page int) (*collects.PageResult, error) {
	return &collects.PageResult{Page: page, PageSize: 9}, nil
}

func (stubCollectsService) ListAdmin(ctx context.Context, f collects.AdminFilters, p pagination.Params) (*collects.ListResult, error) {
	return &collects.ListResult{}, nil
}

func (stubCollectsService) ListByAuthor(ctx context.Context, authorID uuid.UUID, p pagination.Params) (*collects.ListResult, error) {
	return &collects.ListResult{}, nil
}

type stubPaymentsService struct {
	payments.Service
}

type stubCommentsService struct {
	comments.Service
}

type stubUsersService struct {
	users.Service
}

func (stubUsersService) ListWithStats(ctx context.Context, p pagination.Params) (*users.StatsListResult, error) {
	return &users.StatsListResult{}, nil
}

type stubNotificationsService struct {
	notifications.Service
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()
	return NewRouter(
		cfg,
		logg,
		Infra{
			DB:       stubPinger{},
			Sessions: stubSessionManager{},
			Metrics:  metrics.NewHTTPMetrics(reg),
			Gatherer: reg,
		},
		stubAuthService{},
		stubRegisterService{},
		stubRegisterService{},
		stubCollectsService{},
		stubPaymentsService{},
		stubCommentsService{},
		stubUsersService{},
		stubNotificationsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "tester",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicListingNeedsNoJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/v1/collects?status=active&page=2", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public listing got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/collects", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/collects", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for own collects got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	for _, path := range []string{"/api/admin/v1/collects", "/api/admin/v1/users"} {
		user := httptest.NewRequest(http.MethodGet, path, nil)
		user.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, user)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 for non-admin got %d", path, resp.Code)
		}

		admin := httptest.NewRequest(http.MethodGet, path, nil)
		admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
		resp = httptest.NewRecorder()
		router.ServeHTTP(resp, admin)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 for admin got %d", path, resp.Code)
		}
	}
}

func TestAdminRegisterHiddenInProd(t *testing.T) {
	cfg := testConfig()
	cfg.App.Env = config.AppEnvProd
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound && resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected admin register to be unavailable in prod got %d", resp.Code)
	}
}

func TestOpsEndpoints(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}
