package circulation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/shelftrack/shelftrack/pkg/binder"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock pins "now" so default borrow and return dates are predictable.
func fixedClock(date string) func() time.Time {
	return func() time.Time {
		t, _ := ParseDate(date)
		return t
	}
}

func newHandlerContext(t *testing.T, payload string, librarianID int) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", librarianID)

	return c, rec
}

func TestCheckoutHandler_DefaultsBorrowDateToToday(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)

	h := &handler{
		circulationService: NewService(db),
		now:                fixedClock("2024-01-01"),
	}

	payload := `{"reader_id":` + strconv.Itoa(reader.ID) + `,"copy_barcodes":["C001"]}`
	c, rec := newHandlerContext(t, payload, librarian.ID)

	require.NoError(t, h.checkout(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var result CheckoutResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "2024-04-30", result.DueDate)

	receipt := &models.BorrowReceipt{}
	err := db.NewSelect().Model(receipt).Where("br.id = ?", result.ReceiptID).Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", receipt.BorrowDate)
	assert.Equal(t, librarian.ID, receipt.LibrarianID)
}

func TestCheckoutHandler_RequiresAuthenticatedUser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	h := &handler{
		circulationService: NewService(db),
		now:                fixedClock("2024-01-01"),
	}

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reader_id":1,"copy_barcodes":["C001"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = h.checkout(c)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnauthorized, codeErr.HTTPCode)
}

func TestConfirmHandler_RoundsOverride(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)

	svc := NewService(db)
	_, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001"},
		BorrowDate:   "2023-09-12",
	})
	require.NoError(t, err)

	quote, err := svc.QuoteReturn(ctx, QuoteParams{
		ReaderID:    reader.ID,
		CopyBarcode: "C001",
		ReturnDate:  "2024-01-15",
	})
	require.NoError(t, err)

	h := &handler{
		circulationService: svc,
		now:                fixedClock("2024-01-15"),
	}

	payload := `{"borrow_item_id":` + strconv.Itoa(quote.BorrowItemID) + `,"late_fee_override":12500.6}`
	c, rec := newHandlerContext(t, payload, librarian.ID)

	require.NoError(t, h.confirm(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var result ConfirmResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, int64(12501), result.LateFee)
	assert.Equal(t, "2024-01-15", result.ReturnDate)
}

