package readers

import (
	"github.com/labstack/echo/v4"
	"github.com/shelftrack/shelftrack/pkg/auth"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers reader routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	readerService := NewService(db)

	h := &handler{
		readerService: readerService,
	}

	staffOnly := authMiddleware.RequireRole(models.RoleLibrarian, models.RoleManager)
	managerOnly := authMiddleware.RequireRole(models.RoleManager)

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, staffOnly)
	g.PUT("/:id", h.update, staffOnly)
	g.DELETE("/:id", h.deleteReader, managerOnly)
}
