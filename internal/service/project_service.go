package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"folio/internal/cache"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"
	"folio/internal/slug"
	"folio/internal/validation"
)

// ProjectService manages portfolio projects. Single-project reads go through
// the cache; writes invalidate it.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	cache       *cache.Store
	now         func() time.Time
}

type CreateProjectInput struct {
	Title       string
	Slug        string
	Description string
	Thumbnail   string
	LiveURL     string
	RepoURL     string
	IsFeatured  bool
	OwnerID     uint
}

type ListProjectsInput struct {
	Page       int
	Limit      int
	Search     string
	IsFeatured *bool
}

// UpdateProjectInput holds the fields to change; nil fields are left as they are.
type UpdateProjectInput struct {
	Title       *string
	Slug        *string
	Description *string
	Thumbnail   *string
	LiveURL     *string
	RepoURL     *string
	IsFeatured  *bool
}

// NewProjectService returns a ProjectService; store may be nil.
func NewProjectService(projectRepo repository.ProjectRepository, store *cache.Store) *ProjectService {
	if store == nil {
		store = cache.NewStore(nil)
	}
	return &ProjectService{projectRepo: projectRepo, cache: store, now: time.Now}
}

func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	if in.OwnerID == 0 {
		return nil, models.NewValidationError("Owner is required")
	}
	title := strings.TrimSpace(in.Title)
	if err := validation.ValidateTitle(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validateProjectURLs(&in.LiveURL, &in.RepoURL); err != nil {
		return nil, err
	}

	projectSlug := strings.TrimSpace(in.Slug)
	if projectSlug == "" {
		projectSlug = slug.Generate(title)
	} else if err := validation.ValidateSlug(projectSlug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	project := &models.Project{
		Title:       title,
		Slug:        projectSlug,
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		LiveURL:     in.LiveURL,
		RepoURL:     in.RepoURL,
		IsFeatured:  in.IsFeatured,
		OwnerID:     in.OwnerID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, in ListProjectsInput) (*models.Page[models.Project], error) {
	page, limit := models.NormalizePaging(in.Page, in.Limit)
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	projects, total, err := s.projectRepo.List(ctx, repository.ProjectFilter{
		Search:     strings.TrimSpace(in.Search),
		IsFeatured: in.IsFeatured,
		Limit:      limit,
		Offset:     models.Offset(page, limit),
	})
	if err != nil {
		return nil, err
	}

	return &models.Page[models.Project]{
		Data:       projects,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := s.cache.Aside(ctx, cache.ProjectKey(id), &project, cache.ProjectTTL, func() error {
		p, err := s.projectRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		project = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) GetProjectBySlug(ctx context.Context, projectSlug string) (*models.Project, error) {
	var project models.Project
	err := s.cache.Aside(ctx, cache.ProjectSlugKey(projectSlug), &project, cache.ProjectTTL, func() error {
		p, err := s.projectRepo.GetBySlug(ctx, projectSlug)
		if err != nil {
			return err
		}
		project = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// AuthorizeProjectWrite allows admins and the project's owner to modify it.
func (s *ProjectService) AuthorizeProjectWrite(ctx context.Context, caller models.Identity, id uint) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && project.OwnerID != caller.UserID {
		return models.NewForbiddenError("Only the owner or an admin can modify this project")
	}
	return nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id uint, in UpdateProjectInput) (*models.Project, error) {
	updates := map[string]interface{}{}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := validation.ValidateTitle(title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["title"] = title
	}
	if in.Slug != nil {
		if err := validation.ValidateSlug(*in.Slug); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["slug"] = *in.Slug
	}
	if err := validateProjectURLs(in.LiveURL, in.RepoURL); err != nil {
		return nil, err
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Thumbnail != nil {
		updates["thumbnail"] = *in.Thumbnail
	}
	if in.LiveURL != nil {
		updates["live_url"] = *in.LiveURL
	}
	if in.RepoURL != nil {
		updates["repo_url"] = *in.RepoURL
	}
	if in.IsFeatured != nil {
		updates["is_featured"] = *in.IsFeatured
	}

	var staleKeys []string
	if in.Slug != nil && s.cache.Enabled() {
		if before, err := s.projectRepo.GetByID(ctx, id); err == nil {
			staleKeys = append(staleKeys, cache.ProjectSlugKey(before.Slug))
		}
	}

	project, err := s.projectRepo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, append(staleKeys, cache.ProjectKey(id), cache.ProjectSlugKey(project.Slug))...)
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id uint) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.ProjectKey(id), cache.ProjectSlugKey(project.Slug))
	return nil
}

// GetProjectStats counts projects, featured projects and projects created in
// the trailing seven days, and returns the most recent ones.
func (s *ProjectService) GetProjectStats(ctx context.Context) (stats *models.ProjectStats, err error) {
	ctx, span := observability.StartSpan(ctx, "ProjectService", "GetProjectStats")
	defer func() { observability.EndSpan(span, err) }()

	return s.projectRepo.Stats(ctx, s.now().UTC().Add(-statsWindow))
}

func (s *ProjectService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		middleware.Logger.WarnContext(ctx, "project cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

func validateProjectURLs(liveURL, repoURL *string) error {
	if liveURL != nil {
		if err := validation.ValidateURL("live_url", *liveURL); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if repoURL != nil {
		if err := validation.ValidateURL("repo_url", *repoURL); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	return nil
}
