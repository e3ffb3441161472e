package server

import (
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createProjectRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	LiveURL     string `json:"live_url"`
	RepoURL     string `json:"repo_url"`
	IsFeatured  bool   `json:"is_featured"`
}

type updateProjectRequest struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
	LiveURL     *string `json:"live_url"`
	RepoURL     *string `json:"repo_url"`
	IsFeatured  *bool   `json:"is_featured"`
}

// GetProjects handles GET /api/projects
// @Summary List projects
// @Description Oldest first. Search matches title or description.
// @Tags projects
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Search term"
// @Param is_featured query bool false "Featured only"
// @Success 200 {object} models.Page[models.Project]
// @Router /projects [get]
func (s *Server) GetProjects(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	result, err := s.projectService.ListProjects(c.UserContext(), service.ListProjectsInput{
		Page:       page,
		Limit:      limit,
		Search:     c.Query("search"),
		IsFeatured: parseOptionalBool(c, "is_featured"),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// GetProject handles GET /api/projects/:id
// @Summary Get project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id} [get]
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	project, err := s.projectService.GetProjectByID(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(project)
}

// GetProjectBySlug handles GET /api/projects/slug/:slug
// @Summary Get project by slug
// @Tags projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} models.Project
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/slug/{slug} [get]
func (s *Server) GetProjectBySlug(c *fiber.Ctx) error {
	project, err := s.projectService.GetProjectBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(project)
}

// CreateProject handles POST /api/projects
// @Summary Create project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createProjectRequest true "New project"
// @Success 201 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /projects [post]
func (s *Server) CreateProject(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req createProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	project, err := s.projectService.CreateProject(c.UserContext(), service.CreateProjectInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		LiveURL:     req.LiveURL,
		RepoURL:     req.RepoURL,
		IsFeatured:  req.IsFeatured,
		OwnerID:     identity.UserID,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject handles PATCH /api/projects/:id
// @Summary Update project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body updateProjectRequest true "Fields to change"
// @Success 200 {object} models.Project
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id} [patch]
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	identity, err := caller(c)
	if err != nil {
		return s.respondError(c, err)
	}

	var req updateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx := c.UserContext()
	if err := s.projectService.AuthorizeProjectWrite(ctx, identity, id); err != nil {
		return s.respondError(c, err)
	}

	project, err := s.projectService.UpdateProject(ctx, id, service.UpdateProjectInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		LiveURL:     req.LiveURL,
		RepoURL:     req.RepoURL,
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
// @Summary Delete project
// @Tags projects
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /projects/{id} [delete]
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	identity, err := caller(c)
	if err != nil {
		return s.respondError(c, err)
	}

	ctx := c.UserContext()
	if err := s.projectService.AuthorizeProjectWrite(ctx, identity, id); err != nil {
		return s.respondError(c, err)
	}
	if err := s.projectService.DeleteProject(ctx, id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetProjectStats handles GET /api/projects/stats
// @Summary Project statistics
// @Tags projects
// @Produce json
// @Success 200 {object} models.ProjectStats
// @Router /projects/stats [get]
func (s *Server) GetProjectStats(c *fiber.Ctx) error {
	stats, err := s.projectService.GetProjectStats(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(stats)
}
