package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shelftrack/shelftrack/pkg/auth"
	"github.com/shelftrack/shelftrack/pkg/binder"
	"github.com/shelftrack/shelftrack/pkg/books"
	"github.com/shelftrack/shelftrack/pkg/circulation"
	"github.com/shelftrack/shelftrack/pkg/config"
	"github.com/shelftrack/shelftrack/pkg/damagetypes"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/publishers"
	"github.com/shelftrack/shelftrack/pkg/readers"
	"github.com/shelftrack/shelftrack/pkg/stats"
	"github.com/shelftrack/shelftrack/pkg/testutils"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db)
	}

	authService := auth.RegisterRoutes(e, db, cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(authService)

	registerProtectedRoutes(e, db, authMiddleware)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// registerProtectedRoutes mounts the API groups that require a logged-in
// staff member. Write access per route is narrowed further inside each
// package's RegisterRoutes function.
func registerProtectedRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	readersGroup := e.Group("/api/readers")
	readersGroup.Use(authMiddleware.Authenticate)
	readers.RegisterRoutesWithGroup(readersGroup, db, authMiddleware)

	publishersGroup := e.Group("/api/publishers")
	publishersGroup.Use(authMiddleware.Authenticate)
	publishers.RegisterRoutesWithGroup(publishersGroup, db, authMiddleware)

	titlesGroup := e.Group("/api/titles")
	titlesGroup.Use(authMiddleware.Authenticate)
	copiesGroup := e.Group("/api/copies")
	copiesGroup.Use(authMiddleware.Authenticate)
	books.RegisterRoutesWithGroups(titlesGroup, copiesGroup, db, authMiddleware)

	damageTypesGroup := e.Group("/api/damage-types")
	damageTypesGroup.Use(authMiddleware.Authenticate)
	damagetypes.RegisterRoutesWithGroup(damageTypesGroup, db, authMiddleware)

	borrowGroup := e.Group("/api/borrow")
	borrowGroup.Use(authMiddleware.Authenticate)
	returnGroup := e.Group("/api/return")
	returnGroup.Use(authMiddleware.Authenticate)
	circulation.RegisterRoutesWithGroups(borrowGroup, returnGroup, db, authMiddleware)

	statsGroup := e.Group("/api/stats")
	statsGroup.Use(authMiddleware.Authenticate)
	stats.RegisterRoutesWithGroup(statsGroup, db, authMiddleware)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
