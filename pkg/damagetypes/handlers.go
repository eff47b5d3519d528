package damagetypes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/models"
)

type handler struct {
	damageTypeService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListDamageTypesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	damageTypes, err := h.damageTypeService.ListDamageTypes(ctx, ListDamageTypesOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"data": damageTypes}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateDamageTypePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	damageType := &models.DamageType{
		Name:       params.Name,
		DefaultFee: params.DefaultFee,
	}
	if err := h.damageTypeService.CreateDamageType(ctx, damageType); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, damageType))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Damage type")
	}

	params := UpdateDamageTypePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	damageType, err := h.damageTypeService.RetrieveDamageType(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	damageType.Name = params.Name
	damageType.DefaultFee = params.DefaultFee

	err = h.damageTypeService.UpdateDamageType(ctx, damageType, UpdateDamageTypeOptions{
		Columns: []string{"name", "default_fee"},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, damageType))
}

func (h *handler) deleteDamageType(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Damage type")
	}

	if _, err := h.damageTypeService.RetrieveDamageType(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	if err := h.damageTypeService.DeleteDamageType(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
