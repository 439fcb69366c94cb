package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aslboq/catering-backend/internal/config"
	"github.com/aslboq/catering-backend/internal/handler"
	"github.com/aslboq/catering-backend/internal/middleware"
	"github.com/aslboq/catering-backend/internal/model"
)

// RegisterCatalog registers the tenant-scoped catalog CRUD: customers,
// events, categories, ingredients and menus. Any authenticated member of
// the company may read and write these. GET responses are cached per
// tenant; the cache middleware sees every write in this group and bumps
// the tenant's version counter, so reads never serve stale catalog data
// past a write.
func RegisterCatalog(e *echo.Echo, cu *handler.CustomerHandler, ev *handler.EventHandler,
	cat *handler.CategoryHandler, ing *handler.IngredientHandler, m *handler.MenuHandler,
	jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleUser, model.RoleSupervisor),
		middleware.NewTenantCache(cacheCfg, rdb),
	)

	// ---- Customers ----
	g.POST("/customers", cu.Create)
	g.GET("/customers", cu.List)
	g.GET("/customers/:id", cu.Get)
	g.PUT("/customers/:id", cu.Update)
	g.PATCH("/customers/:id", cu.Update)
	g.DELETE("/customers/:id", cu.Delete)

	// ---- Events ----
	g.POST("/events", ev.Create)
	g.GET("/events", ev.List)
	g.GET("/events/:id", ev.Get)
	g.PUT("/events/:id", ev.Update)
	g.PATCH("/events/:id", ev.Update)
	g.DELETE("/events/:id", ev.Delete)

	// ---- Categories ----
	g.POST("/categories", cat.Create)
	g.GET("/categories", cat.List)
	g.GET("/categories/:id", cat.Get)
	g.PUT("/categories/:id", cat.Update)
	g.PATCH("/categories/:id", cat.Update)
	g.DELETE("/categories/:id", cat.Delete)

	// ---- Ingredients ----
	g.POST("/ingredients", ing.Create)
	g.GET("/ingredients", ing.List)
	g.GET("/ingredients/:id", ing.Get)
	g.PUT("/ingredients/:id", ing.Update)
	g.PATCH("/ingredients/:id", ing.Update)
	g.DELETE("/ingredients/:id", ing.Delete)

	// ---- Menus ----
	g.POST("/menus", m.Create)
	g.GET("/menus", m.List)
	g.GET("/menus/:id", m.Get)
	g.PUT("/menus/:id", m.Update)
	g.PATCH("/menus/:id", m.Update)
	g.DELETE("/menus/:id", m.Delete)
}
