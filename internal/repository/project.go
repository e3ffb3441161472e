package repository

import (
	"context"
	"time"

	"folio/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecentProjectsLimit is how many projects ProjectRepository.Stats returns as recent.
const RecentProjectsLimit = 3

// ProjectFilter narrows a project listing. All enabled filters must match.
type ProjectFilter struct {
	Search     string
	IsFeatured *bool
	Limit      int
	Offset     int
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Project, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context, since time.Time) (*models.ProjectStats, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository returns a new ProjectRepository implementation.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}
		return tx.Preload("Owner").First(project, project.ID).Error
	})
	return translateError(err, "Project", project.Slug)
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Owner").First(&project, id).Error; err != nil {
		return nil, translateError(err, "Project", id)
	}
	return &project, nil
}

func (r *projectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Owner").Where("slug = ?", slug).First(&project).Error; err != nil {
		return nil, translateError(err, "Project", slug)
	}
	return &project, nil
}

func applyProjectFilter(db *gorm.DB, filter ProjectFilter) *gorm.DB {
	if filter.Search != "" {
		like := likePattern(filter.Search)
		db = db.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, like, like)
	}
	if filter.IsFeatured != nil {
		db = db.Where("is_featured = ?", *filter.IsFeatured)
	}
	return db
}

// List returns one page of projects matching filter, oldest first, and the
// number of matching projects across all pages.
func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	var total int64
	if err := applyProjectFilter(r.db.WithContext(ctx).Model(&models.Project{}), filter).Count(&total).Error; err != nil {
		return nil, 0, models.NewDatabaseError(err)
	}

	projects := []models.Project{}
	err := applyProjectFilter(r.db.WithContext(ctx), filter).
		Preload("Owner").
		Order("created_at ASC").
		Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&projects).Error
	if err != nil {
		return nil, 0, models.NewDatabaseError(err)
	}
	return projects, total, nil
}

func (r *projectRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&models.Project{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError("Project", id)
			}
		}
		return tx.Preload("Owner").First(&project, id).Error
	})
	if err != nil {
		return nil, translateError(err, "Project", id)
	}
	return &project, nil
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, id)
	if res.Error != nil {
		return translateError(res.Error, "Project", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Project", id)
	}
	return nil
}

// Stats computes the project statistics in a single transaction.
func (r *projectRepository) Stats(ctx context.Context, since time.Time) (*models.ProjectStats, error) {
	stats := &models.ProjectStats{RecentProjects: []models.Project{}}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).Count(&stats.TotalProjects).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Project{}).Where("is_featured = ?", true).Count(&stats.FeaturedCount).Error; err != nil {
			return err
		}
		err := tx.Preload("Owner").
			Order("created_at DESC").
			Order("id DESC").
			Limit(RecentProjectsLimit).
			Find(&stats.RecentProjects).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.Project{}).Where("created_at >= ?", since).Count(&stats.LastWeekProjectCount).Error
	})
	if err != nil {
		return nil, models.NewDatabaseError(err)
	}
	return stats, nil
}
