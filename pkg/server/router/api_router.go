package router

import (
	"errors"

	handlers "github.com/NeuralTrust/TrustBook/pkg/handlers/http"
	"github.com/NeuralTrust/TrustBook/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

const (
	RootPath    = "/"
	HealthPath  = "/health"
	VersionPath = "/version"
	UsagePath   = "/usage"
	DocsPath    = "/docs/*"

	// QuerySuffix marks the route admitted by the query orchestrator
	// rather than the rate limit middleware.
	QuerySuffix = "/query"
)

var ErrInvalidHandlerTransport = errors.New("invalid handler transport")

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    *handlers.HandlerTransport
}

func NewAPIRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport *handlers.HandlerTransport,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

// SkipRateLimitPaths lists the routes that are never rate limited.
func SkipRateLimitPaths() []string {
	return []string{RootPath, HealthPath, VersionPath, UsagePath}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	if r.handlerTransport == nil || r.middlewareTransport == nil {
		return ErrInvalidHandlerTransport
	}
	h := r.handlerTransport
	m := r.middlewareTransport

	for _, mw := range []middleware.Middleware{
		m.PanicRecoverMiddleware,
		m.CORSMiddleware,
		m.RequestLoggerMiddleware,
		m.MetricsMiddleware,
		m.IdentityMiddleware,
		m.RateLimitMiddleware,
	} {
		if mw != nil {
			router.Use(mw.Middleware())
		}
	}

	// Renders the document registered by the docs package.
	router.Get(DocsPath, swagger.HandlerDefault)

	router.Get(RootPath, h.RootHandler.Handle)
	router.Get(HealthPath, h.HealthHandler.Handle)
	router.Get(VersionPath, h.GetVersionHandler.Handle)
	router.Get(UsagePath, h.UsageHandler.Handle)

	admin := func(c *fiber.Ctx) error { return c.Next() }
	if m.AdminAuthMiddleware != nil {
		admin = m.AdminAuthMiddleware.Middleware()
	}

	v1 := router.Group("/api/v1")
	{
		v1.Post("/textbook/:textbook_id"+QuerySuffix, h.QueryHandler.Handle)

		ragIndex := v1.Group("/rag-index")
		{
			ragIndex.Post("", admin, h.CreateRAGIndexHandler.Handle)
			ragIndex.Get("/:textbook_id", h.GetRAGIndexHandler.Handle)
		}

		textbooks := v1.Group("/textbooks")
		{
			textbooks.Post("", admin, h.CreateTextbookHandler.Handle)
			textbooks.Get("/:textbook_id", h.GetTextbookHandler.Handle)
			textbooks.Put("/:textbook_id", admin, h.UpdateTextbookHandler.Handle)
			textbooks.Get("/:textbook_id/chapters", h.ListChaptersHandler.Handle)
		}

		chapters := v1.Group("/chapters")
		{
			chapters.Post("", admin, h.CreateChapterHandler.Handle)
			chapters.Get("/:chapter_id", h.GetChapterHandler.Handle)
			chapters.Put("/:chapter_id", admin, h.UpdateChapterHandler.Handle)
			chapters.Delete("/:chapter_id", admin, h.DeleteChapterHandler.Handle)
		}

		users := v1.Group("/users")
		{
			users.Post("", h.CreateUserHandler.Handle)
			users.Get("/:user_id", h.GetUserHandler.Handle)

			prefs := users.Group("/:user_id/textbooks/:textbook_id")
			{
				prefs.Get("/preferences", h.GetPreferenceHandler.Handle)
				prefs.Post("/preferences", h.SetPreferenceHandler.Handle)
				prefs.Get("/chapters", h.FilteredChaptersHandler.Handle)
			}
		}
	}
	return nil
}
