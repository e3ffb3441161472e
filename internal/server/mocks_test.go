package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"folio/internal/config"
	"folio/internal/featureflags"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-for-handlers"

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetProfile(ctx context.Context, id uint) (*models.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) IncrementViews(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, filter repository.PostFilter) ([]models.Post, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Post, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) Stats(ctx context.Context, since time.Time) (*models.BlogStats, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogStats), args.Error(1)
}

// MockProjectRepository is a mock of the ProjectRepository interface
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Project, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) Stats(ctx context.Context, since time.Time) (*models.ProjectStats, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectStats), args.Error(1)
}

type testRepos struct {
	users    *MockUserRepository
	posts    *MockPostRepository
	projects *MockProjectRepository
}

// newMockServer wires a Server over mock repositories and returns an app
// with the production routes mounted.
func newMockServer(t *testing.T, cfg *config.Config) (*Server, *fiber.App, testRepos) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{Env: "test"}
	}
	repos := testRepos{
		users:    new(MockUserRepository),
		posts:    new(MockPostRepository),
		projects: new(MockProjectRepository),
	}
	tokens := service.NewTokenManager(testJWTSecret, time.Hour)
	s := &Server{
		config:         cfg,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		rateLimiter:    middleware.NewRateLimiter(nil, false),
		tokens:         tokens,
		authService:    service.NewAuthService(repos.users, tokens),
		userService:    service.NewUserService(repos.users, bcrypt.MinCost),
		postService:    service.NewPostService(repos.posts),
		projectService: service.NewProjectService(repos.projects, nil),
	}

	app := fiber.New(fiber.Config{ErrorHandler: s.errorHandler})
	s.SetupRoutes(app)
	return s, app, repos
}

func bearer(t *testing.T, s *Server, id uint, role models.Role) string {
	t.Helper()
	token, err := s.tokens.Issue(&models.User{ID: id, Email: "caller@example.com", Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, auth string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
