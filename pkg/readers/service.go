package readers

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

type ListReadersOptions struct {
	Limit  *int
	Offset *int
	Search *string
}

type UpdateReaderOptions struct {
	Columns []string
}

// LoanRow is one row of a reader's borrow history, open or returned.
type LoanRow struct {
	BorrowItemID int     `bun:"borrow_item_id" json:"borrow_item_id"`
	CopyBarcode  string  `bun:"copy_barcode" json:"copy_barcode"`
	Title        string  `bun:"title" json:"title"`
	Author       string  `bun:"author" json:"author"`
	BorrowDate   string  `bun:"borrow_date" json:"borrow_date"`
	DueDate      string  `bun:"due_date" json:"due_date"`
	ReturnDate   *string `bun:"return_date" json:"return_date,omitempty"`
	LateFee      *int64  `bun:"late_fee" json:"late_fee,omitempty"`
	DamageFee    *int64  `bun:"damage_fee" json:"damage_fee,omitempty"`
	TotalFee     *int64  `bun:"total_fee" json:"total_fee,omitempty"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateReader(ctx context.Context, reader *models.Reader) error {
	now := time.Now()
	if reader.CreatedAt.IsZero() {
		reader.CreatedAt = now
	}
	reader.UpdatedAt = reader.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(reader).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveReader(ctx context.Context, id int) (*models.Reader, error) {
	reader := &models.Reader{}

	err := svc.db.
		NewSelect().
		Model(reader).
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Reader")
		}
		return nil, errors.WithStack(err)
	}

	return reader, nil
}

func (svc *Service) ListReaders(ctx context.Context, opts ListReadersOptions) ([]*models.Reader, error) {
	var readers []*models.Reader

	q := svc.db.
		NewSelect().
		Model(&readers).
		Order("r.id DESC")

	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*opts.Search)) + "%"
		q = q.Where("LOWER(r.code) LIKE ? OR LOWER(r.name) LIKE ? OR LOWER(r.barcode) LIKE ?", search, search, search)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return readers, nil
}

func (svc *Service) UpdateReader(ctx context.Context, reader *models.Reader, opts UpdateReaderOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	reader.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(reader).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Reader")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteReader removes a reader. Readers with any borrow history are kept to
// preserve the ledger; deletion is refused in that case.
func (svc *Service) DeleteReader(ctx context.Context, readerID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.BorrowReceipt)(nil)).
		Where("reader_id = ?", readerID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.BusinessRuleViolation("Reader has borrow history and can't be deleted.")
	}

	_, err = svc.db.NewDelete().
		Model((*models.Reader)(nil)).
		Where("id = ?", readerID).
		Exec(ctx)
	return errors.WithStack(err)
}

// ListOpenLoans returns the reader's currently-borrowed items, newest first.
func (svc *Service) ListOpenLoans(ctx context.Context, readerID int) ([]*LoanRow, error) {
	rows := []*LoanRow{}

	err := svc.loanQuery(readerID).
		Where("bi.return_date IS NULL").
		OrderExpr("br.borrow_date DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return rows, nil
}

// ListReturnedLoans returns the reader's returned items, most recent first.
func (svc *Service) ListReturnedLoans(ctx context.Context, readerID int, limit int) ([]*LoanRow, error) {
	rows := []*LoanRow{}

	err := svc.loanQuery(readerID).
		Where("bi.return_date IS NOT NULL").
		OrderExpr("bi.return_date DESC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return rows, nil
}

func (svc *Service) loanQuery(readerID int) *bun.SelectQuery {
	return svc.db.NewSelect().
		TableExpr("borrow_items AS bi").
		Join("JOIN borrow_receipts AS br ON br.id = bi.receipt_id").
		Join("JOIN book_copies AS bc ON bc.id = bi.copy_id").
		Join("JOIN book_titles AS bt ON bt.id = bc.title_id").
		ColumnExpr("bi.id AS borrow_item_id").
		ColumnExpr("bc.barcode AS copy_barcode").
		ColumnExpr("bt.title, bt.author").
		ColumnExpr("br.borrow_date, bi.due_date").
		ColumnExpr("bi.return_date, bi.late_fee, bi.damage_fee, bi.total_fee").
		Where("br.reader_id = ?", readerID)
}
