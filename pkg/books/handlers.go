package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/models"
)

type handler struct {
	bookService *Service
}

func (h *handler) listTitles(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListTitlesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	titles, err := h.bookService.ListTitles(ctx, ListTitlesOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"data": titles}))
}

func (h *handler) createTitle(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateTitlePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	title := &models.BookTitle{
		Code:        params.Code,
		Title:       params.Title,
		Author:      params.Author,
		PublishYear: params.PublishYear,
		CoverPrice:  params.CoverPrice,
		PublisherID: params.PublisherID,
		Description: params.Description,
	}
	if err := h.bookService.CreateTitle(ctx, title); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, title))
}

func (h *handler) updateTitle(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book title")
	}

	params := UpdateTitlePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	title, err := h.bookService.RetrieveTitle(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	title.Code = params.Code
	title.Title = params.Title
	title.Author = params.Author
	title.PublishYear = params.PublishYear
	title.CoverPrice = params.CoverPrice
	title.PublisherID = params.PublisherID
	title.Description = params.Description

	err = h.bookService.UpdateTitle(ctx, title, UpdateTitleOptions{
		Columns: []string{"code", "title", "author", "publish_year", "cover_price", "publisher_id", "description"},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, title))
}

func (h *handler) deleteTitle(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book title")
	}

	if _, err := h.bookService.RetrieveTitle(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	if err := h.bookService.DeleteTitle(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) listCopies(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListCopiesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	copies, err := h.bookService.ListCopies(ctx, ListCopiesOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"data": copies}))
}

func (h *handler) createCopy(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateCopyPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	copy := &models.BookCopy{
		TitleID: params.TitleID,
		Status:  models.CopyStatusAvailable,
	}
	if params.Barcode != nil {
		copy.Barcode = *params.Barcode
	}
	if err := h.bookService.CreateCopy(ctx, copy); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, copy))
}

func (h *handler) updateCopy(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book copy")
	}

	params := UpdateCopyPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	copy, err := h.bookService.RetrieveCopy(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	copy.TitleID = params.TitleID
	copy.Barcode = params.Barcode
	copy.Status = params.Status

	err = h.bookService.UpdateCopy(ctx, copy, UpdateCopyOptions{
		Columns: []string{"title_id", "barcode", "status"},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, copy))
}

func (h *handler) deleteCopy(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book copy")
	}

	if _, err := h.bookService.RetrieveCopy(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	if err := h.bookService.DeleteCopy(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
