package circulation

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/migrations"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestLibrarian(ctx context.Context, t *testing.T, db *bun.DB) *models.User {
	t.Helper()

	user := &models.User{
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		Username:     "librarian",
		PasswordHash: "x",
		Role:         models.RoleLibrarian,
		IsActive:     true,
	}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	return user
}

func createTestReader(ctx context.Context, t *testing.T, db *bun.DB, code string) *models.Reader {
	t.Helper()

	reader := &models.Reader{
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Code:      code,
		Name:      "Reader " + code,
		Barcode:   "R-" + code,
	}
	_, err := db.NewInsert().Model(reader).Exec(ctx)
	require.NoError(t, err)

	return reader
}

func createTestTitle(ctx context.Context, t *testing.T, db *bun.DB, code string, coverPrice int64) *models.BookTitle {
	t.Helper()

	title := &models.BookTitle{
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		Code:       code,
		Title:      "Title " + code,
		Author:     "Author " + code,
		CoverPrice: coverPrice,
	}
	_, err := db.NewInsert().Model(title).Exec(ctx)
	require.NoError(t, err)

	return title
}

func createTestCopy(ctx context.Context, t *testing.T, db *bun.DB, titleID int, barcode, status string) *models.BookCopy {
	t.Helper()

	copy := &models.BookCopy{
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		TitleID:   titleID,
		Barcode:   barcode,
		Status:    status,
	}
	_, err := db.NewInsert().Model(copy).Exec(ctx)
	require.NoError(t, err)

	return copy
}

func createTestDamageType(ctx context.Context, t *testing.T, db *bun.DB, name string, defaultFee int64) *models.DamageType {
	t.Helper()

	damageType := &models.DamageType{
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		Name:       name,
		DefaultFee: defaultFee,
	}
	_, err := db.NewInsert().Model(damageType).Exec(ctx)
	require.NoError(t, err)

	return damageType
}

func copyStatus(ctx context.Context, t *testing.T, db *bun.DB, copyID int) string {
	t.Helper()

	copy := &models.BookCopy{}
	err := db.NewSelect().Model(copy).Where("bc.id = ?", copyID).Scan(ctx)
	require.NoError(t, err)

	return copy.Status
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	copy1 := createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)
	copy2 := createTestCopy(ctx, t, db, title.ID, "C002", models.CopyStatusAvailable)

	result, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001", "C002"},
		BorrowDate:   "2024-01-01",
	})
	require.NoError(t, err)
	assert.NotZero(t, result.ReceiptID)
	assert.Equal(t, "2024-04-30", result.DueDate)

	receipt := &models.BorrowReceipt{}
	err = db.NewSelect().
		Model(receipt).
		Relation("Items").
		Where("br.id = ?", result.ReceiptID).
		Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, reader.ID, receipt.ReaderID)
	assert.Equal(t, librarian.ID, receipt.LibrarianID)
	assert.Equal(t, "2024-01-01", receipt.BorrowDate)
	require.Len(t, receipt.Items, 2)
	for _, item := range receipt.Items {
		assert.Equal(t, "2024-04-30", item.DueDate)
		assert.Nil(t, item.ReturnDate)
	}

	assert.Equal(t, models.CopyStatusBorrowed, copyStatus(ctx, t, db, copy1.ID))
	assert.Equal(t, models.CopyStatusBorrowed, copyStatus(ctx, t, db, copy2.ID))
}

func TestCheckout_ReaderNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)

	_, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     999,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001"},
		BorrowDate:   "2024-01-01",
	})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusNotFound, codeErr.HTTPCode)
}

func TestCheckout_UnknownBarcodesNamed(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	copy := createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)

	_, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001", "NOPE1", "NOPE2"},
		BorrowDate:   "2024-01-01",
	})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Contains(t, codeErr.Message, "NOPE1")
	assert.Contains(t, codeErr.Message, "NOPE2")

	// Nothing was written.
	count, err := db.NewSelect().Model((*models.BorrowReceipt)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, models.CopyStatusAvailable, copyStatus(ctx, t, db, copy.ID))
}

func TestCheckout_RejectsDuplicateBarcodes(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	copy := createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)

	// The same copy listed twice can't silently collapse into one item.
	_, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001", "C001"},
		BorrowDate:   "2024-01-01",
	})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Contains(t, codeErr.Message, "C001")

	// Nothing was written.
	count, err := db.NewSelect().Model((*models.BorrowReceipt)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = db.NewSelect().Model((*models.BorrowItem)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, models.CopyStatusAvailable, copyStatus(ctx, t, db, copy.ID))
}

func TestCheckout_UnavailableCopyIsAllOrNothing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	available := createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)
	createTestCopy(ctx, t, db, title.ID, "C002", models.CopyStatusLost)

	_, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001", "C002"},
		BorrowDate:   "2024-01-01",
	})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "business_rule_violation", codeErr.Code)
	assert.Contains(t, codeErr.Message, "C002")

	receiptCount, err := db.NewSelect().Model((*models.BorrowReceipt)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, receiptCount)

	itemCount, err := db.NewSelect().Model((*models.BorrowItem)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, itemCount)

	assert.Equal(t, models.CopyStatusAvailable, copyStatus(ctx, t, db, available.ID))
}

func TestCheckout_BorrowLimit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)

	barcodes := []string{}
	for i := 1; i <= 4; i++ {
		barcodes = append(barcodes, fmt.Sprintf("C%03d", i))
		createTestCopy(ctx, t, db, title.ID, barcodes[i-1], models.CopyStatusAvailable)
	}
	_, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: barcodes,
		BorrowDate:   "2024-01-01",
	})
	require.NoError(t, err)

	createTestCopy(ctx, t, db, title.ID, "C005", models.CopyStatusAvailable)
	createTestCopy(ctx, t, db, title.ID, "C006", models.CopyStatusAvailable)

	// Four open loans plus two requested copies exceeds the cap.
	_, err = svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C005", "C006"},
		BorrowDate:   "2024-01-02",
	})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "business_rule_violation", codeErr.Code)
	assert.Contains(t, codeErr.Message, "4")
	assert.Contains(t, codeErr.Message, "5")

	// One more copy still fits under the cap.
	_, err = svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C005"},
		BorrowDate:   "2024-01-02",
	})
	require.NoError(t, err)
}

func TestQuoteReturn(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	copy := createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)

	result, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001"},
		BorrowDate:   "2023-09-12",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", result.DueDate)

	// Five days past due charges the flat penalty.
	quote, err := svc.QuoteReturn(ctx, QuoteParams{
		ReaderID:    reader.ID,
		CopyBarcode: "C001",
		ReturnDate:  "2024-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, copy.ID, quote.CopyID)
	assert.Equal(t, "C001", quote.CopyBarcode)
	assert.Equal(t, title.Title, quote.Title)
	assert.Equal(t, "2023-09-12", quote.BorrowDate)
	assert.Equal(t, "2024-01-10", quote.DueDate)
	assert.Equal(t, int64(100000), quote.CoverPrice)
	assert.Equal(t, int64(20000), quote.LateFee)

	// A day before the due date there is no fee.
	quote, err = svc.QuoteReturn(ctx, QuoteParams{
		ReaderID:    reader.ID,
		CopyBarcode: "C001",
		ReturnDate:  "2024-01-09",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.LateFee)

	// Quoting writes nothing.
	item := &models.BorrowItem{}
	err = db.NewSelect().Model(item).Where("bi.id = ?", quote.BorrowItemID).Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, item.ReturnDate)
	assert.Equal(t, models.CopyStatusBorrowed, copyStatus(ctx, t, db, copy.ID))
}

func TestQuoteReturn_NoOpenLoan(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	reader := createTestReader(ctx, t, db, "RD001")

	_, err := svc.QuoteReturn(ctx, QuoteParams{
		ReaderID:    reader.ID,
		CopyBarcode: "C001",
		ReturnDate:  "2024-01-15",
	})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusNotFound, codeErr.HTTPCode)
}

func TestQuoteReturn_PicksMostRecentOpenLoan(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)

	first, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001"},
		BorrowDate:   "2024-01-01",
	})
	require.NoError(t, err)

	quote, err := svc.QuoteReturn(ctx, QuoteParams{
		ReaderID:    reader.ID,
		CopyBarcode: "C001",
		ReturnDate:  "2024-02-01",
	})
	require.NoError(t, err)
	_, err = svc.ConfirmReturn(ctx, ConfirmParams{
		BorrowItemID: quote.BorrowItemID,
		ReturnDate:   "2024-02-01",
	})
	require.NoError(t, err)

	second, err := svc.Checkout(ctx, CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001"},
		BorrowDate:   "2024-03-01",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ReceiptID, second.ReceiptID)

	quote, err = svc.QuoteReturn(ctx, QuoteParams{
		ReaderID:    reader.ID,
		CopyBarcode: "C001",
		ReturnDate:  "2024-03-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", quote.BorrowDate)
	assert.Equal(t, "2024-06-29", quote.DueDate)
}

func TestConfirmReturn(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	copy := createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)
	torn := createTestDamageType(ctx, t, db, "Torn pages", 5000)
	stained := createTestDamageType(ctx, t, db, "Stained cover", 3000)

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

	result, err := svc.ConfirmReturn(ctx, ConfirmParams{
		BorrowItemID: quote.BorrowItemID,
		ReturnDate:   "2024-01-15",
		Damages: []DamageLine{
			{DamageTypeID: torn.ID, Fee: 5000},
			{DamageTypeID: stained.ID, Fee: 3000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), result.LateFee)
	assert.Equal(t, int64(8000), result.DamageFee)
	assert.Equal(t, int64(28000), result.TotalFee)

	item := &models.BorrowItem{}
	err = db.NewSelect().Model(item).Where("bi.id = ?", quote.BorrowItemID).Scan(ctx)
	require.NoError(t, err)
	require.NotNil(t, item.ReturnDate)
	assert.Equal(t, "2024-01-15", *item.ReturnDate)
	require.NotNil(t, item.LateFee)
	assert.Equal(t, int64(20000), *item.LateFee)
	require.NotNil(t, item.DamageFee)
	assert.Equal(t, int64(8000), *item.DamageFee)
	require.NotNil(t, item.TotalFee)
	assert.Equal(t, int64(28000), *item.TotalFee)

	damages, err := svc.ListItemDamages(ctx, quote.BorrowItemID)
	require.NoError(t, err)
	require.Len(t, damages, 2)
	assert.Equal(t, torn.ID, damages[0].DamageTypeID)
	assert.Equal(t, int64(5000), damages[0].Fee)
	assert.Equal(t, stained.ID, damages[1].DamageTypeID)
	assert.Equal(t, int64(3000), damages[1].Fee)

	assert.Equal(t, models.CopyStatusAvailable, copyStatus(ctx, t, db, copy.ID))
}

func TestConfirmReturn_DoubleConfirmConflicts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)

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

	_, err = svc.ConfirmReturn(ctx, ConfirmParams{
		BorrowItemID: quote.BorrowItemID,
		ReturnDate:   "2024-01-15",
	})
	require.NoError(t, err)

	_, err = svc.ConfirmReturn(ctx, ConfirmParams{
		BorrowItemID: quote.BorrowItemID,
		ReturnDate:   "2024-02-20",
		Damages:      []DamageLine{{DamageTypeID: 1, Fee: 99999}},
	})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusConflict, codeErr.HTTPCode)

	// The stored values are untouched by the rejected second attempt.
	item := &models.BorrowItem{}
	err = db.NewSelect().Model(item).Where("bi.id = ?", quote.BorrowItemID).Scan(ctx)
	require.NoError(t, err)
	require.NotNil(t, item.ReturnDate)
	assert.Equal(t, "2024-01-15", *item.ReturnDate)
	require.NotNil(t, item.TotalFee)
	assert.Equal(t, int64(20000), *item.TotalFee)

	damages, err := svc.ListItemDamages(ctx, quote.BorrowItemID)
	require.NoError(t, err)
	assert.Empty(t, damages)
}

func TestConfirmReturn_LateFeeOverride(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	librarian := createTestLibrarian(ctx, t, db)
	reader := createTestReader(ctx, t, db, "RD001")
	title := createTestTitle(ctx, t, db, "BK001", 100000)
	createTestCopy(ctx, t, db, title.ID, "C001", models.CopyStatusAvailable)

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
	require.Equal(t, int64(20000), quote.LateFee)

	// The override replaces the computed fee, here waiving it entirely.
	override := int64(0)
	result, err := svc.ConfirmReturn(ctx, ConfirmParams{
		BorrowItemID:    quote.BorrowItemID,
		ReturnDate:      "2024-01-15",
		LateFeeOverride: &override,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.LateFee)
	assert.Equal(t, int64(0), result.TotalFee)
}

func TestConfirmReturn_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.ConfirmReturn(ctx, ConfirmParams{
		BorrowItemID: 999,
		ReturnDate:   "2024-01-15",
	})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusNotFound, codeErr.HTTPCode)
}

func TestListItemDamages_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.ListItemDamages(ctx, 999)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusNotFound, codeErr.HTTPCode)
}
