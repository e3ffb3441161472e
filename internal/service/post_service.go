package service

import (
	"context"
	"strings"
	"time"

	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"
	"folio/internal/slug"
	"folio/internal/validation"
)

// MaxPageSize caps the limit of every listing.
const MaxPageSize = 100

// statsWindow is the trailing period counted as "last week" by the stats endpoints.
const statsWindow = 7 * 24 * time.Hour

type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

type CreatePostInput struct {
	Title      string
	Slug       string
	Content    string
	Thumbnail  string
	Tags       []string
	IsFeatured bool
	AuthorID   uint
}

type ListPostsInput struct {
	Page       int
	Limit      int
	Search     string
	IsFeatured *bool
	Tags       []string
}

// UpdatePostInput holds the fields to change; nil fields are left as they are.
type UpdatePostInput struct {
	Title      *string
	Slug       *string
	Content    *string
	Thumbnail  *string
	Tags       *[]string
	IsFeatured *bool
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo, now: time.Now}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewValidationError("Author is required")
	}
	title := strings.TrimSpace(in.Title)
	if err := validation.ValidateTitle(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if err := validation.ValidateTags(in.Tags); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	postSlug := strings.TrimSpace(in.Slug)
	if postSlug == "" {
		postSlug = slug.Generate(title)
	} else if err := validation.ValidateSlug(postSlug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		Title:      title,
		Slug:       postSlug,
		Content:    in.Content,
		Thumbnail:  in.Thumbnail,
		Tags:       models.Tags(in.Tags),
		IsFeatured: in.IsFeatured,
		AuthorID:   in.AuthorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*models.Page[models.Post], error) {
	page, limit := models.NormalizePaging(in.Page, in.Limit)
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	posts, total, err := s.postRepo.List(ctx, repository.PostFilter{
		Search:     strings.TrimSpace(in.Search),
		IsFeatured: in.IsFeatured,
		Tags:       in.Tags,
		Limit:      limit,
		Offset:     models.Offset(page, limit),
	})
	if err != nil {
		return nil, err
	}

	return &models.Page[models.Post]{
		Data:       posts,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

// GetPostByID counts a view and returns the post with the new view count.
func (s *PostService) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	observability.PostViews.Inc()
	return post, nil
}

// GetPostBySlug reads a post without counting a view.
func (s *PostService) GetPostBySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	return s.postRepo.GetBySlug(ctx, postSlug)
}

// AuthorizePostWrite allows admins and the post's author to modify it.
func (s *PostService) AuthorizePostWrite(ctx context.Context, caller models.Identity, id uint) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && post.AuthorID != caller.UserID {
		return models.NewForbiddenError("Only the author or an admin can modify this post")
	}
	return nil
}

func (s *PostService) UpdatePost(ctx context.Context, id uint, in UpdatePostInput) (*models.Post, error) {
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
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, models.NewValidationError("Content must not be empty")
		}
		updates["content"] = *in.Content
	}
	if in.Thumbnail != nil {
		updates["thumbnail"] = *in.Thumbnail
	}
	if in.Tags != nil {
		if err := validation.ValidateTags(*in.Tags); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["tags"] = models.Tags(*in.Tags)
	}
	if in.IsFeatured != nil {
		updates["is_featured"] = *in.IsFeatured
	}

	return s.postRepo.Update(ctx, id, updates)
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}

// GetBlogStats aggregates view counts, featured posts and the posts created
// in the trailing seven days.
func (s *PostService) GetBlogStats(ctx context.Context) (stats *models.BlogStats, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "GetBlogStats")
	defer func() { observability.EndSpan(span, err) }()

	return s.postRepo.Stats(ctx, s.now().UTC().Add(-statsWindow))
}
