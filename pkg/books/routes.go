package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shelftrack/shelftrack/pkg/auth"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroups registers title routes on titles and copy routes on copies.
func RegisterRoutesWithGroups(titles, copies *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
	}

	staffOnly := authMiddleware.RequireRole(models.RoleLibrarian, models.RoleManager)
	managerOnly := authMiddleware.RequireRole(models.RoleManager)

	titles.GET("", h.listTitles)
	titles.POST("", h.createTitle, staffOnly)
	titles.PUT("/:id", h.updateTitle, staffOnly)
	titles.DELETE("/:id", h.deleteTitle, managerOnly)

	copies.GET("", h.listCopies)
	copies.POST("", h.createCopy, staffOnly)
	copies.PUT("/:id", h.updateCopy, staffOnly)
	copies.DELETE("/:id", h.deleteCopy, managerOnly)
}
