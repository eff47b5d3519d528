package readers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/models"
)

const returnedHistoryLimit = 200

type handler struct {
	readerService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListReadersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	readers, err := h.readerService.ListReaders(ctx, ListReadersOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"data": readers}))
}

// retrieve returns the reader along with their open loans and returned
// history, which is what the front desk shows when a reader is scanned.
func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	reader, err := h.readerService.RetrieveReader(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	borrowed, err := h.readerService.ListOpenLoans(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	returned, err := h.readerService.ListReturnedLoans(ctx, id, returnedHistoryLimit)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ReaderDetailResponse{
		Reader:   reader,
		Borrowed: borrowed,
		Returned: returned,
	}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateReaderPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reader := &models.Reader{
		Code:    params.Code,
		Name:    params.Name,
		DOB:     params.DOB,
		Address: params.Address,
		Phone:   params.Phone,
		Barcode: params.Barcode,
	}
	if err := h.readerService.CreateReader(ctx, reader); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, reader))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	params := UpdateReaderPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reader, err := h.readerService.RetrieveReader(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	reader.Code = params.Code
	reader.Name = params.Name
	reader.DOB = params.DOB
	reader.Address = params.Address
	reader.Phone = params.Phone
	reader.Barcode = params.Barcode

	err = h.readerService.UpdateReader(ctx, reader, UpdateReaderOptions{
		Columns: []string{"code", "name", "dob", "address", "phone", "barcode"},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, reader))
}

func (h *handler) deleteReader(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	if _, err := h.readerService.RetrieveReader(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	if err := h.readerService.DeleteReader(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
