package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/elcilc/clicle/internal/alarms"
	"github.com/elcilc/clicle/internal/auth"
	"github.com/elcilc/clicle/internal/posts"
	"github.com/elcilc/clicle/internal/users"
	pkgAuth "github.com/elcilc/clicle/pkg/auth"
	"github.com/elcilc/clicle/pkg/auth/session"
	"github.com/elcilc/clicle/pkg/config"
	"github.com/elcilc/clicle/pkg/db/models"
	"github.com/elcilc/clicle/pkg/enums"
	"github.com/elcilc/clicle/pkg/logger"
	"github.com/elcilc/clicle/pkg/redis"
	"github.com/elcilc/clicle/pkg/sse"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Join(ctx context.Context, req auth.JoinRequest) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

type stubPostsService struct{}

func (stubPostsService) Create(ctx context.Context, userID uuid.UUID, title, body string) (*posts.PostDTO, error) {
	return &posts.PostDTO{}, nil
}

func (stubPostsService) List(ctx context.Context, params posts.ListParams) (*posts.ListResult, error) {
	return &posts.ListResult{}, nil
}

func (stubPostsService) My(ctx context.Context, userID uuid.UUID, params posts.ListParams) (*posts.ListResult, error) {
	return &posts.ListResult{}, nil
}

func (stubPostsService) Modify(ctx context.Context, userID, postID uuid.UUID, title, body string) (*posts.PostDTO, error) {
	return &posts.PostDTO{}, nil
}

func (stubPostsService) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	return nil
}

func (stubPostsService) Comment(ctx context.Context, userID, postID uuid.UUID, comment string) error {
	return nil
}

func (stubPostsService) Comments(ctx context.Context, postID uuid.UUID, params posts.ListParams) (*posts.CommentListResult, error) {
	return &posts.CommentListResult{}, nil
}

func (stubPostsService) Like(ctx context.Context, userID, postID uuid.UUID) error {
	return nil
}

func (stubPostsService) LikeCount(ctx context.Context, postID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubAlarmsService struct{}

func (stubAlarmsService) Send(ctx context.Context, alarmType enums.AlarmType, args models.AlarmArgs, recipient *models.User) error {
	return nil
}

func (stubAlarmsService) Subscribe(ctx context.Context, userID uuid.UUID, ch sse.Channel) error {
	ch.Close()
	return nil
}

func (stubAlarmsService) List(ctx context.Context, params alarms.ListParams) (*alarms.ListResult, error) {
	return &alarms.ListResult{}, nil
}

func (stubAlarmsService) MarkRead(ctx context.Context, userID, alarmID uuid.UUID) error {
	return nil
}

func (stubAlarmsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
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
		Alarm: config.AlarmConfig{StreamLifetime: time.Minute},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionChecker{},
		stubAuthService{},
		stubPostsService{},
		stubAlarmsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "alice",
		Role:     enums.UserRoleUser,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-Clicle-Env"); env != "test" {
		t.Fatalf("unexpected env header %q", env)
	}
}

func TestPublicPingIsOpen(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestUsersMeReturnsProfileWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for users/me got %d", resp.Code)
	}
}

func TestPostsRequireAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAlarmSubscribeRequiresAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/alarms/subscribe", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAlarmSubscribeStreamsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alarms/subscribe", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream content type got %q", ct)
	}
}

func TestJoinRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/join", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestJoinAcceptsGoodJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"username":"alice","password":"hunter2pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/join", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for valid payload got %d", resp.Code)
	}
}

func TestMetricsEndpointIsOpen(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
