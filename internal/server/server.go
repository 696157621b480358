package server

import (
	"backend-glimpse/internal/admin"
	"backend-glimpse/internal/auth"
	"backend-glimpse/internal/config"
	"backend-glimpse/internal/content"
	"backend-glimpse/internal/follow"
	"backend-glimpse/internal/notification"
	"backend-glimpse/internal/permission"
	"backend-glimpse/internal/preview"
	"backend-glimpse/internal/storage"
	"backend-glimpse/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	requireAuth := auth.RequireAuth(s.Cfg.JWTSecret)
	optionalAuth := auth.OptionalAuth(s.Cfg.JWTSecret)

	authSvc := auth.NewService(s.Cfg.JWTSecret, s.DB)
	notificationSvc := notification.NewService(s.DB, s.Stream)
	followSvc := follow.NewService(s.DB, notificationSvc)
	contentSvc := content.NewService(s.DB, s.Cfg.JWTSecret)
	evaluator := permission.NewEvaluator(followSvc)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc, requireAuth)
	content.RegisterRoutes(s.App.Group("/contents"), contentSvc, evaluator, requireAuth, optionalAuth)
	content.RegisterFeedRoutes(s.App.Group("/feed"), contentSvc, requireAuth)
	follow.RegisterRoutes(s.App.Group("/follows"), followSvc, requireAuth)
	notification.RegisterRoutes(s.App.Group("/notifications"), notificationSvc, requireAuth)
	preview.RegisterRoutes(s.App.Group("/preview"), preview.NewService(s.DB, s.Redis))
	storage.RegisterRoutes(s.App.Group("/storage"), storage.NewService(s.DB, s.Cfg.UploadBaseURL), requireAuth)
	admin.RegisterRoutes(s.App.Group("/admin"), admin.NewService(s.DB), requireAuth, auth.RequireAdmin())
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, func(token string) (string, error) {
		identity, err := authSvc.ValidateAccessToken(token)
		if err != nil {
			return "", err
		}
		return identity.UserID, nil
	})
}
