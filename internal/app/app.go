// Package app assembles the HTTP application from its dependencies.
package app

import (
	"time"

	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/handlers"
	"foodgram/internal/repositories"
	"foodgram/internal/services"
	"foodgram/internal/shoppinglist"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the collaborators the application is built from. Redis, Events and Images
// are optional.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Events   services.EventPublisher
	Images   services.ImageStore
	Renderer services.ShoppingListRenderer
}

// Services exposes the wired services for commands that bypass HTTP.
type Services struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Recipes      *services.RecipeService
	Relations    *services.RelationService
	ShoppingList *services.ShoppingListService
	Catalog      *services.CatalogService
}

// NewServices wires repositories into services.
func NewServices(d Deps) *Services {
	cfg := d.Config
	userRepo := repositories.NewGORMUserRepository(d.DB)
	catalogRepo := repositories.NewGORMCatalogRepository(d.DB)
	recipeRepo := repositories.NewGORMRecipeRepository(d.DB)
	relationRepo := repositories.NewGORMRelationRepository(d.DB)
	shoppingRepo := repositories.NewGORMShoppingListRepository(d.DB)

	var (
		denylist     repositories.TokenDenylist = repositories.NewMemoryTokenDenylist()
		catalogCache services.CatalogCache
	)
	renderer := d.Renderer
	if renderer == nil {
		renderer = shoppinglist.NewRenderer(cfg.ShoppingListFont)
	}
	if d.Redis != nil {
		denylist = repositories.NewRedisTokenDenylist(d.Redis)
		catalogCache = cache.NewRedisCache(d.Redis, cfg.CacheTTL)
	}

	return &Services{
		Auth:         services.NewAuthService(userRepo, denylist, cfg.JWTSecret, cfg.TokenTTL),
		Users:        services.NewUserService(userRepo, recipeRepo, relationRepo, cfg.PageSize),
		Recipes:      services.NewRecipeService(recipeRepo, catalogRepo, relationRepo, d.Images, d.Events, cfg.PageSize),
		Relations:    services.NewRelationService(relationRepo, recipeRepo, userRepo, d.Events),
		ShoppingList: services.NewShoppingListService(shoppingRepo, renderer),
		Catalog:      services.NewCatalogService(catalogRepo, catalogCache),
	}
}

// New builds the fiber application with middleware, the /api routes and /health.
func New(d Deps) *fiber.App {
	svc := NewServices(d)

	app := fiber.New(fiber.Config{
		AppName:   "foodgram",
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())
	if d.Config.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        d.Config.RateLimitMax,
			Expiration: time.Minute,
		}))
	}

	if d.Config.MediaURL != "" && d.Config.MediaRoot != "" && d.Config.S3Bucket == "" {
		app.Static(d.Config.MediaURL, d.Config.MediaRoot)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})

	h := handlers.Handlers{
		Auth:    handlers.NewAuthHandler(svc.Auth),
		Users:   handlers.NewUserHandler(svc.Auth, svc.Users, svc.Relations),
		Catalog: handlers.NewCatalogHandler(svc.Catalog),
		Recipes: handlers.NewRecipeHandler(svc.Recipes, svc.Relations, svc.ShoppingList),
	}
	handlers.RegisterRoutes(app.Group("/api"), h.Routes(), svc.Auth)

	return app
}
