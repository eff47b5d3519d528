package readers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shelftrack/shelftrack/pkg/circulation"
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

func TestCreateAndListReaders(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	reader := &models.Reader{
		Code:    "RD001",
		Name:    "Jamie Nguyen",
		Barcode: "R-0001",
	}
	require.NoError(t, svc.CreateReader(ctx, reader))
	assert.NotZero(t, reader.ID)

	other := &models.Reader{Code: "RD002", Name: "Morgan Tran", Barcode: "R-0002"}
	require.NoError(t, svc.CreateReader(ctx, other))

	all, err := svc.ListReaders(ctx, ListReadersOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	search := "jamie"
	matched, err := svc.ListReaders(ctx, ListReadersOptions{Search: &search})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "RD001", matched[0].Code)
}

func TestUpdateReader(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	reader := &models.Reader{Code: "RD001", Name: "Jamie Nguyen", Barcode: "R-0001"}
	require.NoError(t, svc.CreateReader(ctx, reader))

	phone := "0901234567"
	reader.Phone = &phone
	reader.Name = "Jamie N."
	err := svc.UpdateReader(ctx, reader, UpdateReaderOptions{Columns: []string{"name", "phone"}})
	require.NoError(t, err)

	got, err := svc.RetrieveReader(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jamie N.", got.Name)
	require.NotNil(t, got.Phone)
	assert.Equal(t, phone, *got.Phone)
}

func TestDeleteReader_RefusedWithBorrowHistory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	reader := &models.Reader{Code: "RD001", Name: "Jamie Nguyen", Barcode: "R-0001"}
	require.NoError(t, svc.CreateReader(ctx, reader))

	librarian := &models.User{
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
		Username: "lib", PasswordHash: "x", Role: models.RoleLibrarian, IsActive: true,
	}
	_, err := db.NewInsert().Model(librarian).Exec(ctx)
	require.NoError(t, err)

	receipt := &models.BorrowReceipt{
		CreatedAt:   time.Now(),
		ReaderID:    reader.ID,
		LibrarianID: librarian.ID,
		BorrowDate:  "2024-01-01",
	}
	_, err = db.NewInsert().Model(receipt).Exec(ctx)
	require.NoError(t, err)

	err = svc.DeleteReader(ctx, reader.ID)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "business_rule_violation", codeErr.Code)

	// Still there.
	_, err = svc.RetrieveReader(ctx, reader.ID)
	require.NoError(t, err)
}

func TestDeleteReader_NoHistory(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	reader := &models.Reader{Code: "RD001", Name: "Jamie Nguyen", Barcode: "R-0001"}
	require.NoError(t, svc.CreateReader(ctx, reader))

	require.NoError(t, svc.DeleteReader(ctx, reader.ID))

	_, err := svc.RetrieveReader(ctx, reader.ID)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "not_found", codeErr.Code)
}

func TestListLoans(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	circ := circulation.NewService(db)
	ctx := context.Background()

	reader := &models.Reader{Code: "RD001", Name: "Jamie Nguyen", Barcode: "R-0001"}
	require.NoError(t, svc.CreateReader(ctx, reader))

	librarian := &models.User{
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
		Username: "lib", PasswordHash: "x", Role: models.RoleLibrarian, IsActive: true,
	}
	_, err := db.NewInsert().Model(librarian).Exec(ctx)
	require.NoError(t, err)

	title := &models.BookTitle{
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
		Code: "BK001", Title: "The Pragmatic Shelf", Author: "A. Author", CoverPrice: 50000,
	}
	_, err = db.NewInsert().Model(title).Exec(ctx)
	require.NoError(t, err)

	for _, barcode := range []string{"C001", "C002"} {
		copy := &models.BookCopy{
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
			TitleID: title.ID, Barcode: barcode, Status: models.CopyStatusAvailable,
		}
		_, err = db.NewInsert().Model(copy).Exec(ctx)
		require.NoError(t, err)
	}

	_, err = circ.Checkout(ctx, circulation.CheckoutParams{
		ReaderID:     reader.ID,
		LibrarianID:  librarian.ID,
		CopyBarcodes: []string{"C001", "C002"},
		BorrowDate:   "2024-01-01",
	})
	require.NoError(t, err)

	open, err := svc.ListOpenLoans(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "The Pragmatic Shelf", open[0].Title)
	assert.Nil(t, open[0].ReturnDate)

	quote, err := circ.QuoteReturn(ctx, circulation.QuoteParams{
		ReaderID:    reader.ID,
		CopyBarcode: "C001",
		ReturnDate:  "2024-02-01",
	})
	require.NoError(t, err)
	_, err = circ.ConfirmReturn(ctx, circulation.ConfirmParams{
		BorrowItemID: quote.BorrowItemID,
		ReturnDate:   "2024-02-01",
	})
	require.NoError(t, err)

	open, err = svc.ListOpenLoans(ctx, reader.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	returned, err := svc.ListReturnedLoans(ctx, reader.ID, 200)
	require.NoError(t, err)
	require.Len(t, returned, 1)
	assert.Equal(t, "C001", returned[0].CopyBarcode)
	require.NotNil(t, returned[0].ReturnDate)
	assert.Equal(t, "2024-02-01", *returned[0].ReturnDate)
}
