package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"folio/internal/models"
	"folio/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn      func(context.Context, uint) (*models.User, error)
	getByEmailFn   func(context.Context, string) (*models.User, error)
	getProfileFn   func(context.Context, uint) (*models.UserProfile, error)
	listProfilesFn func(context.Context) ([]models.UserProfile, error)
	createFn       func(context.Context, *models.User) error
	updateFn       func(context.Context, uint, map[string]interface{}) (*models.User, error)
	deleteFn       func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id uint) (*models.UserProfile, error) {
	return s.getProfileFn(ctx, id)
}
func (s *userRepoStub) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	return s.listProfilesFn(ctx)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
	return s.updateFn(ctx, id, updates)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:      func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:   func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getProfileFn:   func(_ context.Context, id uint) (*models.UserProfile, error) { return &models.UserProfile{ID: id}, nil },
		listProfilesFn: func(_ context.Context) ([]models.UserProfile, error) { return nil, nil },
		createFn:       func(_ context.Context, _ *models.User) error { return nil },
		updateFn: func(_ context.Context, id uint, _ map[string]interface{}) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	getBySlugFn      func(context.Context, string) (*models.Post, error)
	incrementViewsFn func(context.Context, uint) (*models.Post, error)
	listFn           func(context.Context, repository.PostFilter) ([]models.Post, int64, error)
	updateFn         func(context.Context, uint, map[string]interface{}) (*models.Post, error)
	deleteFn         func(context.Context, uint) error
	statsFn          func(context.Context, time.Time) (*models.BlogStats, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *postRepoStub) IncrementViews(ctx context.Context, id uint) (*models.Post, error) {
	return s.incrementViewsFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.PostFilter) ([]models.Post, int64, error) {
	return s.listFn(ctx, filter)
}
func (s *postRepoStub) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Post, error) {
	return s.updateFn(ctx, id, updates)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Stats(ctx context.Context, since time.Time) (*models.BlogStats, error) {
	return s.statsFn(ctx, since)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:         func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:        func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getBySlugFn:      func(_ context.Context, slug string) (*models.Post, error) { return &models.Post{Slug: slug}, nil },
		incrementViewsFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn: func(_ context.Context, _ repository.PostFilter) ([]models.Post, int64, error) {
			return nil, 0, nil
		},
		updateFn: func(_ context.Context, id uint, _ map[string]interface{}) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		statsFn:  func(_ context.Context, _ time.Time) (*models.BlogStats, error) { return &models.BlogStats{}, nil },
	}
}

// projectRepoStub is a stub for repository.ProjectRepository.
type projectRepoStub struct {
	createFn    func(context.Context, *models.Project) error
	getByIDFn   func(context.Context, uint) (*models.Project, error)
	getBySlugFn func(context.Context, string) (*models.Project, error)
	listFn      func(context.Context, repository.ProjectFilter) ([]models.Project, int64, error)
	updateFn    func(context.Context, uint, map[string]interface{}) (*models.Project, error)
	deleteFn    func(context.Context, uint) error
	statsFn     func(context.Context, time.Time) (*models.ProjectStats, error)
}

func (s *projectRepoStub) Create(ctx context.Context, project *models.Project) error {
	return s.createFn(ctx, project)
}
func (s *projectRepoStub) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	return s.getByIDFn(ctx, id)
}
func (s *projectRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *projectRepoStub) List(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, int64, error) {
	return s.listFn(ctx, filter)
}
func (s *projectRepoStub) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Project, error) {
	return s.updateFn(ctx, id, updates)
}
func (s *projectRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *projectRepoStub) Stats(ctx context.Context, since time.Time) (*models.ProjectStats, error) {
	return s.statsFn(ctx, since)
}

func noopProjectRepo() *projectRepoStub {
	return &projectRepoStub{
		createFn:    func(_ context.Context, _ *models.Project) error { return nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Project, error) { return &models.Project{ID: id}, nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Project, error) { return &models.Project{Slug: slug}, nil },
		listFn: func(_ context.Context, _ repository.ProjectFilter) ([]models.Project, int64, error) {
			return nil, 0, nil
		},
		updateFn: func(_ context.Context, id uint, _ map[string]interface{}) (*models.Project, error) {
			return &models.Project{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		statsFn:  func(_ context.Context, _ time.Time) (*models.ProjectStats, error) { return &models.ProjectStats{}, nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
