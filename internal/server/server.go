// Package server contains the HTTP handlers and routing of the folio API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "folio/docs" // swagger docs
	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/featureflags"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	rateLimiter    *middleware.RateLimiter
	tokens         *service.TokenManager
	google         *service.GoogleProvider
	authService    *service.AuthService
	userService    *service.UserService
	postService    *service.PostService
	projectService *service.ProjectService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	projectCache := cache.NewStore(redisClient)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("folio-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		rateLimiter:    middleware.NewRateLimiter(redisClient, rateLimitEnabled(cfg.Env)),
		tokens:         tokens,
		authService:    service.NewAuthService(userRepo, tokens),
		userService:    service.NewUserService(userRepo, cfg.BcryptCost).WithCache(projectCache),
		postService:    service.NewPostService(postRepo),
		projectService: service.NewProjectService(projectRepo, projectCache),
	}

	if cfg.GoogleEnabled() && s.featureFlags.EnabledOr(featureflags.GoogleOAuth, true) {
		s.google = service.NewGoogleProvider(service.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
	}

	return s, nil
}

func rateLimitEnabled(env string) bool {
	switch env {
	case "", "test", "development":
		return false
	}
	return true
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "folio API",
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return s.respondError(c, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before anything that can short-circuit so error
	// responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if rateLimitEnabled(s.config.Env) {
		app.Use(limiter.New(limiter.Config{
			Max:        300,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
					Error: "Too many requests, please try again later.",
					Code:  "RATE_LIMITED",
				})
			},
		}))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	authRequired := middleware.AuthRequired(s.tokens)
	adminRequired := middleware.AdminRequired()

	auth := api.Group("/auth")
	auth.Post("/login", s.rateLimiter.Limit("login", 10, 5*time.Minute), s.Login)
	auth.Post("/google", s.rateLimiter.Limit("google", 10, 5*time.Minute), s.AuthWithGoogle)
	auth.Get("/google/login", s.GoogleLogin)
	auth.Get("/google/callback", s.GoogleCallback)
	auth.Get("/me", authRequired, s.Me)

	users := api.Group("/users")
	users.Post("/", s.rateLimiter.Limit("signup", 5, 10*time.Minute), s.CreateUser)
	users.Get("/", authRequired, adminRequired, s.GetUsers)
	users.Get("/:id", authRequired, adminRequired, s.GetUser)
	users.Patch("/:id", authRequired, s.UpdateUser)
	users.Delete("/:id", authRequired, adminRequired, s.DeleteUser)

	// specific routes before /:id
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/stats", s.GetBlogStats)
	posts.Get("/slug/:slug", s.GetPostBySlug)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", authRequired, s.rateLimiter.Limit("create_post", 20, time.Hour), s.CreatePost)
	posts.Patch("/:id", authRequired, s.UpdatePost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	projects := api.Group("/projects")
	projects.Get("/", s.GetProjects)
	projects.Get("/stats", s.GetProjectStats)
	projects.Get("/slug/:slug", s.GetProjectBySlug)
	projects.Get("/:id", s.GetProject)
	projects.Post("/", authRequired, s.CreateProject)
	projects.Patch("/:id", authRequired, s.UpdateProject)
	projects.Delete("/:id", authRequired, s.DeleteProject)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck reports database and cache health. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		middleware.Logger.WarnContext(ctx, "readiness: database ping failed", slog.String("error", err.Error()))
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start listens on the configured port and blocks until the server stops.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port), slog.String("env", s.config.Env))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
