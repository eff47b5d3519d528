package circulation

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/auth"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
)

type handler struct {
	circulationService *Service
	now                func() time.Time
}

func (h *handler) checkout(c echo.Context) error {
	ctx := c.Request().Context()

	params := CheckoutPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	librarianID, ok := auth.GetUserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("You must be logged in to check books out.")
	}

	borrowDate := FormatDate(h.now())
	if params.BorrowDate != nil {
		borrowDate = *params.BorrowDate
	}

	result, err := h.circulationService.Checkout(ctx, CheckoutParams{
		ReaderID:     params.ReaderID,
		LibrarianID:  librarianID,
		CopyBarcodes: params.CopyBarcodes,
		BorrowDate:   borrowDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, result))
}

func (h *handler) scan(c echo.Context) error {
	ctx := c.Request().Context()

	params := QuotePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	returnDate := FormatDate(h.now())
	if params.ReturnDate != nil {
		returnDate = *params.ReturnDate
	}

	quote, err := h.circulationService.QuoteReturn(ctx, QuoteParams{
		ReaderID:    params.ReaderID,
		CopyBarcode: params.CopyBarcode,
		ReturnDate:  returnDate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, quote))
}

func (h *handler) confirm(c echo.Context) error {
	ctx := c.Request().Context()

	params := ConfirmPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	returnDate := FormatDate(h.now())
	if params.ReturnDate != nil {
		returnDate = *params.ReturnDate
	}

	damages := make([]DamageLine, 0, len(params.Damages))
	for _, line := range params.Damages {
		damages = append(damages, DamageLine{
			DamageTypeID: line.DamageTypeID,
			Fee:          line.Fee,
		})
	}

	var override *int64
	if params.LateFeeOverride != nil {
		rounded := int64(math.Round(*params.LateFeeOverride))
		override = &rounded
	}

	result, err := h.circulationService.ConfirmReturn(ctx, ConfirmParams{
		BorrowItemID:    params.BorrowItemID,
		ReturnDate:      returnDate,
		Damages:         damages,
		LateFeeOverride: override,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, result))
}

func (h *handler) itemDamages(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Borrow item")
	}

	damages, err := h.circulationService.ListItemDamages(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"data": damages}))
}
