package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/catalog_api/internal/config"
	"github.com/Pesokrava/catalog_api/internal/delivery/http/handler"
	"github.com/Pesokrava/catalog_api/internal/delivery/http/middleware"
	"github.com/Pesokrava/catalog_api/internal/delivery/http/response"
	"github.com/Pesokrava/catalog_api/internal/domain"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
)

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Products   *handler.ProductHandler
	Reviews    *handler.ReviewHandler
	Categories *handler.CategoryHandler
	Users      *handler.UserHandler
}

// Router holds HTTP handlers and router configuration
type Router struct {
	handlers Handlers
	auth     middleware.Authenticator
	logger   *logger.Logger
	cfg      *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	handlers Handlers,
	auth middleware.Authenticator,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		handlers: handlers,
		auth:     auth,
		logger:   log,
		cfg:      cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.StripSlashes)
	r.Use(chimiddleware.Timeout(rt.cfg.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Group(rt.mountAPI)
	r.Route("/api/v1", rt.mountAPI)

	return r
}

func (rt *Router) mountAPI(r chi.Router) {
	h := rt.handlers
	authenticate := middleware.Authenticate(rt.auth)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.Products.List)
		r.Get("/category/{id}", h.Products.ListByCategory)
		r.Get("/{id}", h.Products.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middleware.RequireRole(domain.RoleSeller))
			r.Post("/", h.Products.Create)
			r.Put("/{id}", h.Products.Update)
			r.Delete("/{id}", h.Products.Delete)
		})
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.Reviews.List)
		r.Get("/products/{id}/reviews", h.Reviews.ListByProduct)

		r.With(authenticate, middleware.RequireRole(domain.RoleBuyer)).Post("/", h.Reviews.Create)
		r.With(authenticate, middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}", h.Reviews.Delete)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Categories.List)
		r.Get("/{id}", h.Categories.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middleware.RequireRole(domain.RoleAdmin))
			r.Post("/", h.Categories.Create)
			r.Put("/{id}", h.Categories.Update)
			r.Delete("/{id}", h.Categories.Delete)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Users.Register)
		r.Post("/token", h.Users.Login)
		r.Post("/refresh-token", h.Users.Refresh)
	})
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
