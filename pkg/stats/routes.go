package stats

import (
	"github.com/labstack/echo/v4"
	"github.com/shelftrack/shelftrack/pkg/auth"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers reporting routes on a pre-configured
// group. All reports are restricted to managers.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	statsService := NewService(db)

	h := &handler{
		statsService: statsService,
	}

	managerOnly := authMiddleware.RequireRole(models.RoleManager)

	g.GET("/books", h.topBorrowedTitles, managerOnly)
	g.GET("/books/:title_id/borrows", h.titleBorrows, managerOnly)
	g.GET("/readers", h.topReaders, managerOnly)
	g.GET("/receipts/:receipt_id", h.receiptDetail, managerOnly)
	g.GET("/revenue", h.revenue, managerOnly)
}
