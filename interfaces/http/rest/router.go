package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"kellerliste/application/services"
	"kellerliste/interfaces/http/rest/handlers"
	"kellerliste/interfaces/http/rest/middleware"
	"kellerliste/pkg/auth"
	apperrors "kellerliste/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	inventory      *services.InventoryService
	auth           *services.AuthService
	validator      *auth.JWTValidator
	allowedOrigins []string
	logger         *zap.Logger
}

// NewRouter creates a new router instance. validator may be nil when every
// request arrives through an API Gateway authorizer.
func NewRouter(
	inventory *services.InventoryService,
	authService *services.AuthService,
	validator *auth.JWTValidator,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Router{
		inventory:      inventory,
		auth:           authService,
		validator:      validator,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	errHandler := apperrors.NewErrorHandler(rt.logger)

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errHandler.Middleware)
	router.Use(middleware.Logger(rt.logger, "/health"))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.healthCheck)

	authHandler := handlers.NewAuthHandler(rt.auth, errHandler, rt.logger)
	router.Route("/auth", func(r chi.Router) {
		r.Get("/", authHandler.ExchangeCode)
		r.Post("/refresh", authHandler.Refresh)
	})

	inventoryHandler := handlers.NewInventoryHandler(rt.inventory, errHandler, rt.logger)
	router.Route("/items", func(r chi.Router) {
		r.Use(middleware.Identity(rt.validator, errHandler, rt.logger))

		r.Get("/", inventoryHandler.ListItems)
		r.Post("/", inventoryHandler.CreateItem)
		r.Get("/{id}", inventoryHandler.GetItem)
		r.Patch("/{id}", inventoryHandler.UpdateItem)
		r.Delete("/{id}", inventoryHandler.DeleteItem)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
