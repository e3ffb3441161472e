package repository

import (
	"context"
	"time"

	"folio/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. Zero values disable a filter; all
// enabled filters must match.
type PostFilter struct {
	Search     string
	IsFeatured *bool
	Tags       []string
	Limit      int
	Offset     int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	IncrementViews(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context, since time.Time) (*models.BlogStats, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		return tx.Preload("Author").First(post, post.ID).Error
	})
	return translateError(err, "Post", post.Slug)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, translateError(err, "Post", slug)
	}
	return &post, nil
}

// IncrementViews bumps view_count by one and returns the post as it is after
// the increment, both inside one transaction.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return tx.Preload("Author").First(&post, id).Error
	})
	if err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

func applyPostFilter(db *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.Search != "" {
		like := likePattern(filter.Search)
		db = db.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\'`, like, like)
	}
	if filter.IsFeatured != nil {
		db = db.Where("is_featured = ?", *filter.IsFeatured)
	}
	if len(filter.Tags) > 0 {
		db = db.Where("tags && ?", pq.Array(filter.Tags))
	}
	return db
}

// List returns one page of posts matching filter, newest first, and the
// number of matching posts across all pages.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	var total int64
	if err := applyPostFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).Count(&total).Error; err != nil {
		return nil, 0, models.NewDatabaseError(err)
	}

	posts := []models.Post{}
	err := applyPostFilter(r.db.WithContext(ctx), filter).
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewDatabaseError(err)
	}
	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&models.Post{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError("Post", id)
			}
		}
		return tx.Preload("Author").First(&post, id).Error
	})
	if err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return translateError(res.Error, "Post", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// Stats computes the blog statistics in a single transaction. Posts created
// at or after since count towards LastWeekPostCount.
func (r *postRepository) Stats(ctx context.Context, since time.Time) (*models.BlogStats, error) {
	stats := &models.BlogStats{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{}).
			Select("COUNT(*) AS total_posts, " +
				"COALESCE(SUM(view_count), 0) AS total_views, " +
				"CAST(COALESCE(AVG(view_count), 0) AS FLOAT) AS avg_views, " +
				"COALESCE(MIN(view_count), 0) AS min_views, " +
				"COALESCE(MAX(view_count), 0) AS max_views").
			Scan(&stats.Stats).Error
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Post{}).Where("is_featured = ?", true).Count(&stats.FeaturedCount).Error; err != nil {
			return err
		}

		var top []models.Post
		err = tx.Preload("Author").
			Where("is_featured = ?", true).
			Order("view_count DESC").
			Order("id ASC").
			Limit(1).
			Find(&top).Error
		if err != nil {
			return err
		}
		if len(top) > 0 {
			stats.TopFeatured = &top[0]
		}

		return tx.Model(&models.Post{}).Where("created_at >= ?", since).Count(&stats.LastWeekPostCount).Error
	})
	if err != nil {
		return nil, models.NewDatabaseError(err)
	}
	return stats, nil
}
