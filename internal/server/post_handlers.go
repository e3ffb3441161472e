package server

import (
	"folio/internal/featureflags"
	"folio/internal/markdown"
	"folio/internal/models"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Content    string   `json:"content"`
	Thumbnail  string   `json:"thumbnail"`
	Tags       []string `json:"tags"`
	IsFeatured bool     `json:"is_featured"`
}

type updatePostRequest struct {
	Title      *string   `json:"title"`
	Slug       *string   `json:"slug"`
	Content    *string   `json:"content"`
	Thumbnail  *string   `json:"thumbnail"`
	Tags       *[]string `json:"tags"`
	IsFeatured *bool     `json:"is_featured"`
}

// wantsHTML reports whether the request asked for rendered markdown and
// rendering is switched on.
func (s *Server) wantsHTML(c *fiber.Ctx) bool {
	return c.Query("format") == "html" && s.featureFlags.EnabledOr(featureflags.MarkdownRender, true)
}

func renderPost(post *models.Post) error {
	if post == nil {
		return nil
	}
	html, err := markdown.Render(post.Content)
	if err != nil {
		return models.NewInternalError(err)
	}
	post.ContentHTML = html
	return nil
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Newest first. Search matches title or content; tags match any of the given values.
// @Tags posts
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Search term"
// @Param is_featured query bool false "Featured only"
// @Param tags query string false "Comma separated tags"
// @Param format query string false "html renders markdown content"
// @Success 200 {object} models.Page[models.Post]
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	result, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Page:       page,
		Limit:      limit,
		Search:     c.Query("search"),
		IsFeatured: parseOptionalBool(c, "is_featured"),
		Tags:       parseTags(c),
	})
	if err != nil {
		return s.respondError(c, err)
	}

	if s.wantsHTML(c) {
		for i := range result.Data {
			if err := renderPost(&result.Data[i]); err != nil {
				return s.respondError(c, err)
			}
		}
	}
	return c.JSON(result)
}

// GetPost handles GET /api/posts/:id. Each call counts one view.
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Param format query string false "html renders markdown content"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPostByID(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.sendPost(c, fiber.StatusOK, post)
}

// GetPostBySlug handles GET /api/posts/slug/:slug
// @Summary Get post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Param format query string false "html renders markdown content"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/slug/{slug} [get]
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	post, err := s.postService.GetPostBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return s.respondError(c, err)
	}
	return s.sendPost(c, fiber.StatusOK, post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Description The caller becomes the author. A slug is generated from the title when omitted.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "New post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		Thumbnail:  req.Thumbnail,
		Tags:       req.Tags,
		IsFeatured: req.IsFeatured,
		AuthorID:   identity.UserID,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return s.sendPost(c, fiber.StatusCreated, post)
}

// UpdatePost handles PATCH /api/posts/:id
// @Summary Update post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body updatePostRequest true "Fields to change"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	identity, err := caller(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx := c.UserContext()
	if err := s.postService.AuthorizePostWrite(ctx, identity, id); err != nil {
		return s.respondError(c, err)
	}

	post, err := s.postService.UpdatePost(ctx, id, service.UpdatePostInput{
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		Thumbnail:  req.Thumbnail,
		Tags:       req.Tags,
		IsFeatured: req.IsFeatured,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return s.sendPost(c, fiber.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	identity, err := caller(c)
	if err != nil {
		return s.respondError(c, err)
	}

	ctx := c.UserContext()
	if err := s.postService.AuthorizePostWrite(ctx, identity, id); err != nil {
		return s.respondError(c, err)
	}
	if err := s.postService.DeletePost(ctx, id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBlogStats handles GET /api/posts/stats
// @Summary Blog statistics
// @Tags posts
// @Produce json
// @Success 200 {object} models.BlogStats
// @Router /posts/stats [get]
func (s *Server) GetBlogStats(c *fiber.Ctx) error {
	stats, err := s.postService.GetBlogStats(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(stats)
}

func (s *Server) sendPost(c *fiber.Ctx, status int, post *models.Post) error {
	if s.wantsHTML(c) {
		if err := renderPost(post); err != nil {
			return s.respondError(c, err)
		}
	}
	return c.Status(status).JSON(post)
}
