package api

import (
	"net/http"

	"fooddelivery/api/middleware"
	"fooddelivery/config"
	"fooddelivery/domain/shared"

	"github.com/gin-gonic/gin"
)

// ControllerRegister registers routes on the group it is mounted on.
type ControllerRegister interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// AdminRegister registers restaurant-owner and admin routes.
type AdminRegister interface {
	RegisterAdminRoutes(router *gin.RouterGroup)
}

// MiddlewareRegister provides extra global middleware.
type MiddlewareRegister interface {
	Handler() gin.HandlerFunc
}

// Route is a custom route mounted on the engine root.
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// Controllers groups route registrars by audience. Authenticated routes run
// behind the auth middleware; admin routes are mounted under /admin.
type Controllers struct {
	Public        []ControllerRegister
	Authenticated []ControllerRegister
	Admin         []AdminRegister
}

// Router Route configuration
type Router struct {
	engine       *gin.Engine
	config       *config.Config
	controllers  Controllers
	customRoutes []Route
}

// NewRouter Create route configuration
func NewRouter(cfg *config.Config, controllers Controllers, middlewares []MiddlewareRegister, customRoutes []Route) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// order matters: the request id must exist before anything logs
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))
	for _, m := range middlewares {
		engine.Use(m.Handler())
	}

	return &Router{
		engine:       engine,
		config:       cfg,
		controllers:  controllers,
		customRoutes: customRoutes,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	for _, c := range r.controllers.Public {
		c.RegisterRoutes(apiGroup)
	}

	authed := apiGroup.Group("")
	authed.Use(middleware.AuthMiddleware(&r.config.Auth))
	for _, c := range r.controllers.Authenticated {
		c.RegisterRoutes(authed)
	}

	admin := apiGroup.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(&r.config.Auth),
		middleware.RequireRole(shared.RoleRestaurantOwner, shared.RoleAdmin),
	)
	for _, c := range r.controllers.Admin {
		c.RegisterAdminRoutes(admin)
	}

	for _, route := range r.customRoutes {
		r.engine.Handle(route.Method, route.Path, route.Handler)
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
