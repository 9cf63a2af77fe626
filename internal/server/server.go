// Package server assembles the fiber application.
package server

import (
	"time"

	"katalog/internal/handlers"
	"katalog/internal/imagehost"
	"katalog/internal/middleware"
	"katalog/internal/services"
	"katalog/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// BodyLimit leaves room above the image limit so oversize uploads are
// reported by the upload middleware instead of the transport.
const BodyLimit = 8 << 20

// Options configures New.
type Options struct {
	Service *services.ProductService
	// Pages serves the browser UI when set.
	Pages *web.Handler
	// FrontendURL is the only origin allowed by CORS.
	FrontendURL string
	// UploadDir is served under /uploads when the local image host is used.
	UploadDir string
	AccessLog bool
}

// New builds the application: API under /api, pages at the root, and the
// health check.
func New(opts Options) *fiber.App {
	cfg := fiber.Config{
		AppName:      "katalog",
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    BodyLimit,
	}
	if opts.Pages != nil {
		cfg.Views = web.NewEngine()
	}
	app := fiber.New(cfg)

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	if opts.FrontendURL != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: opts.FrontendURL,
			AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders: "Content-Type,Authorization",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")
	handlers.NewProductHandler(opts.Service).RegisterRoutes(api)

	if opts.UploadDir != "" {
		app.Static(imagehost.LocalPrefix, opts.UploadDir)
	}
	if opts.Pages != nil {
		opts.Pages.RegisterRoutes(app)
	}
	return app
}
