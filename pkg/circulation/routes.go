package circulation

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shelftrack/shelftrack/pkg/auth"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroups registers checkout routes on borrow and return
// routes on ret. All of them require an authenticated staff member.
func RegisterRoutesWithGroups(borrow, ret *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	circulationService := NewService(db)

	h := &handler{
		circulationService: circulationService,
		now:                time.Now,
	}

	staffOnly := authMiddleware.RequireRole(models.RoleLibrarian, models.RoleManager)

	borrow.POST("/checkout", h.checkout, staffOnly)

	ret.POST("/scan", h.scan, staffOnly)
	ret.POST("/confirm", h.confirm, staffOnly)
	ret.GET("/item/:id/damages", h.itemDamages, staffOnly)
}
