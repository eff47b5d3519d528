package stats

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
)

type handler struct {
	statsService *Service
}

func (h *handler) topBorrowedTitles(c echo.Context) error {
	ctx := c.Request().Context()

	params := DateRangeQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	rows, err := h.statsService.TopBorrowedTitles(ctx, params.From, params.To)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"data": rows}))
}

func (h *handler) titleBorrows(c echo.Context) error {
	ctx := c.Request().Context()
	titleID, err := strconv.Atoi(c.Param("title_id"))
	if err != nil {
		return errcodes.NotFound("Book title")
	}

	params := DateRangeQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	title, rows, err := h.statsService.TitleBorrows(ctx, titleID, params.From, params.To)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"title": title,
		"data":  rows,
	}))
}

func (h *handler) topReaders(c echo.Context) error {
	ctx := c.Request().Context()

	params := DateRangeQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	rows, err := h.statsService.TopReaders(ctx, params.From, params.To)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"data": rows}))
}

func (h *handler) receiptDetail(c echo.Context) error {
	ctx := c.Request().Context()
	receiptID, err := strconv.Atoi(c.Param("receipt_id"))
	if err != nil {
		return errcodes.NotFound("Borrow receipt")
	}

	receipt, items, err := h.statsService.ReceiptDetail(ctx, receiptID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"receipt": receipt,
		"items":   items,
	}))
}

func (h *handler) revenue(c echo.Context) error {
	ctx := c.Request().Context()

	params := DateRangeQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	summary, details, err := h.statsService.Revenue(ctx, params.From, params.To)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"summary": summary,
		"details": details,
	}))
}
