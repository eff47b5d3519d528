package damagetypes

import (
	"github.com/labstack/echo/v4"
	"github.com/shelftrack/shelftrack/pkg/auth"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers damage type routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	damageTypeService := NewService(db)

	h := &handler{
		damageTypeService: damageTypeService,
	}

	managerOnly := authMiddleware.RequireRole(models.RoleManager)

	g.GET("", h.list)
	g.POST("", h.create, managerOnly)
	g.PUT("/:id", h.update, managerOnly)
	g.DELETE("/:id", h.deleteDamageType, managerOnly)
}
