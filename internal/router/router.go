// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aperture-science/city-lens-api/internal/config"
	"github.com/aperture-science/city-lens-api/internal/handler"
	"github.com/aperture-science/city-lens-api/internal/middleware"
)

// Handlers collects the handler groups the router needs.
type Handlers struct {
	Users    *handler.UserHandler
	Reports  *handler.ReportHandler
	Listings *handler.ListingHandler
}

// Register mounts all routes on the Echo instance. The read-only
// listing and search endpoints additionally pass through the Redis
// response cache; both cache and rate limiter degrade to no-ops when
// Redis is absent.
func Register(e *echo.Echo, h Handlers, rdb *redis.Client) {
	e.Use(middleware.RequestLogger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)

	users := e.Group("/v1/users")
	users.POST("/register", h.Users.Register)
	users.POST("/login", h.Users.Login)
	users.POST("/logout", h.Users.Logout)
	users.GET("/me", h.Users.Me)
	users.PUT("/me", h.Users.UpdateMe)

	report := e.Group("/v1/report")
	report.POST("/create", h.Reports.Create)
	report.PUT("/update", h.Reports.Update)
	report.DELETE("/delete", h.Reports.Delete)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	report.GET("/search", h.Reports.Search, cache)

	list := e.Group("/v1/list", cache)
	list.GET("/latest", h.Listings.Latest)
	list.GET("/oldest", h.Listings.Oldest)
	list.GET("/active", h.Listings.Active)
	list.GET("/recently-resolved", h.Listings.RecentlyResolved)
}
