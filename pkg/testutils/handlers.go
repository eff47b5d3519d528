package testutils

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/auth"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

type handler struct {
	db *bun.DB
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" default:"MANAGER" validate:"oneof=LIBRARIAN MANAGER"`
}

type createUserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// createUser creates a staff account for end-to-end tests.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     req.Username,
		PasswordHash: hashedPassword,
		Role:         req.Role,
		IsActive:     true,
	}
	if _, err := h.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusCreated, createUserResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

// deleteAllData clears every table so each end-to-end suite starts clean.
// Child tables go first to satisfy foreign keys.
// DELETE /test/data.
func (h *handler) deleteAllData(c echo.Context) error {
	ctx := c.Request().Context()

	tables := []interface{}{
		(*models.BorrowItemDamage)(nil),
		(*models.BorrowItem)(nil),
		(*models.BorrowReceipt)(nil),
		(*models.BookCopy)(nil),
		(*models.BookTitle)(nil),
		(*models.Publisher)(nil),
		(*models.DamageType)(nil),
		(*models.Reader)(nil),
		(*models.User)(nil),
	}
	for _, model := range tables {
		_, err := h.db.NewDelete().
			Model(model).
			Where("1=1").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}
