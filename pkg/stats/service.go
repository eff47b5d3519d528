package stats

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/uptrace/bun"
)

// TitleBorrowCount is one ranked row in the top-borrowed-titles report.
type TitleBorrowCount struct {
	TitleID     int    `json:"title_id"`
	TitleCode   string `json:"title_code"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	BorrowCount int    `json:"borrow_count"`
}

// TitleBorrowRow is one borrow of a specific title within a reporting range.
type TitleBorrowRow struct {
	ReceiptID   int     `json:"receipt_id"`
	BorrowDate  string  `json:"borrow_date"`
	ReaderName  string  `json:"reader_name"`
	ReaderCode  string  `json:"reader_code"`
	ReturnDate  *string `json:"return_date"`
	TotalFee    *int64  `json:"total_fee"`
	CopyBarcode string  `json:"copy_barcode"`
}

// TitleSummary identifies the title a borrow-detail report is about.
type TitleSummary struct {
	ID     int    `json:"id"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// ReaderBorrowCount is one ranked row in the top-readers report.
type ReaderBorrowCount struct {
	ReaderID    int     `json:"reader_id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Phone       *string `json:"phone"`
	BorrowCount int     `json:"borrow_count"`
}

// ReceiptSummary is the header of a receipt detail report.
type ReceiptSummary struct {
	ID                int    `json:"id"`
	ReaderID          int    `json:"reader_id"`
	LibrarianID       int    `json:"librarian_id"`
	BorrowDate        string `json:"borrow_date"`
	ReaderName        string `json:"reader_name"`
	ReaderCode        string `json:"reader_code"`
	LibrarianUsername string `json:"librarian_username"`
}

// ReceiptItemRow is one borrowed copy on a receipt detail report.
type ReceiptItemRow struct {
	BorrowItemID int     `json:"borrow_item_id"`
	CopyBarcode  string  `json:"copy_barcode"`
	TitleCode    string  `json:"title_code"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	DueDate      string  `json:"due_date"`
	ReturnDate   *string `json:"return_date"`
	TotalFee     *int64  `json:"total_fee"`
}

// RevenueSummary totals the fees collected on returns in a range.
type RevenueSummary struct {
	TotalRevenue int64 `json:"total_revenue"`
	TotalLate    int64 `json:"total_late"`
	TotalDamage  int64 `json:"total_damage"`
}

// RevenueRow is one fee-bearing return in the revenue detail report.
type RevenueRow struct {
	ReturnDate  string `json:"return_date"`
	TotalFee    int64  `json:"total_fee"`
	LateFee     int64  `json:"late_fee"`
	DamageFee   int64  `json:"damage_fee"`
	ReaderCode  string `json:"reader_code"`
	ReaderName  string `json:"reader_name"`
	CopyBarcode string `json:"copy_barcode"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// TopBorrowedTitles ranks titles by how many times their copies were checked
// out in the range, most borrowed first.
func (svc *Service) TopBorrowedTitles(ctx context.Context, from, to string) ([]*TitleBorrowCount, error) {
	rows := []*TitleBorrowCount{}

	err := svc.db.
		NewSelect().
		TableExpr("borrow_items AS bi").
		Join("JOIN borrow_receipts AS br ON br.id = bi.receipt_id").
		Join("JOIN book_copies AS bc ON bc.id = bi.copy_id").
		Join("JOIN book_titles AS bt ON bt.id = bc.title_id").
		ColumnExpr("bt.id AS title_id, bt.code AS title_code, bt.title, bt.author").
		ColumnExpr("COUNT(*) AS borrow_count").
		Where("br.borrow_date BETWEEN ? AND ?", from, to).
		GroupExpr("bt.id").
		OrderExpr("borrow_count DESC, bt.title ASC").
		Limit(200).
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return rows, nil
}

// TitleBorrows lists the borrows of one title in the range, newest first.
func (svc *Service) TitleBorrows(ctx context.Context, titleID int, from, to string) (*TitleSummary, []*TitleBorrowRow, error) {
	title := &TitleSummary{}
	err := svc.db.
		NewSelect().
		TableExpr("book_titles AS bt").
		ColumnExpr("bt.id, bt.code, bt.title, bt.author").
		Where("bt.id = ?", titleID).
		Scan(ctx, title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, errcodes.NotFound("Book title")
		}
		return nil, nil, errors.WithStack(err)
	}

	rows := []*TitleBorrowRow{}
	err = svc.db.
		NewSelect().
		TableExpr("borrow_items AS bi").
		Join("JOIN borrow_receipts AS br ON br.id = bi.receipt_id").
		Join("JOIN readers AS r ON r.id = br.reader_id").
		Join("JOIN book_copies AS bc ON bc.id = bi.copy_id").
		ColumnExpr("br.id AS receipt_id, br.borrow_date").
		ColumnExpr("r.name AS reader_name, r.code AS reader_code").
		ColumnExpr("bi.return_date, bi.total_fee").
		ColumnExpr("bc.barcode AS copy_barcode").
		Where("bc.title_id = ?", titleID).
		Where("br.borrow_date BETWEEN ? AND ?", from, to).
		OrderExpr("br.borrow_date DESC").
		Limit(500).
		Scan(ctx, &rows)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return title, rows, nil
}

// TopReaders ranks readers by how many copies they checked out in the range.
func (svc *Service) TopReaders(ctx context.Context, from, to string) ([]*ReaderBorrowCount, error) {
	rows := []*ReaderBorrowCount{}

	err := svc.db.
		NewSelect().
		TableExpr("borrow_items AS bi").
		Join("JOIN borrow_receipts AS br ON br.id = bi.receipt_id").
		Join("JOIN readers AS r ON r.id = br.reader_id").
		ColumnExpr("r.id AS reader_id, r.code, r.name, r.phone").
		ColumnExpr("COUNT(*) AS borrow_count").
		Where("br.borrow_date BETWEEN ? AND ?", from, to).
		GroupExpr("r.id").
		OrderExpr("borrow_count DESC, r.name ASC").
		Limit(200).
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return rows, nil
}

// ReceiptDetail returns a receipt's header and every copy borrowed on it.
func (svc *Service) ReceiptDetail(ctx context.Context, receiptID int) (*ReceiptSummary, []*ReceiptItemRow, error) {
	receipt := &ReceiptSummary{}
	err := svc.db.
		NewSelect().
		TableExpr("borrow_receipts AS br").
		Join("JOIN readers AS r ON r.id = br.reader_id").
		Join("JOIN users AS u ON u.id = br.librarian_id").
		ColumnExpr("br.id, br.reader_id, br.librarian_id, br.borrow_date").
		ColumnExpr("r.name AS reader_name, r.code AS reader_code").
		ColumnExpr("u.username AS librarian_username").
		Where("br.id = ?", receiptID).
		Scan(ctx, receipt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, errcodes.NotFound("Borrow receipt")
		}
		return nil, nil, errors.WithStack(err)
	}

	items := []*ReceiptItemRow{}
	err = svc.db.
		NewSelect().
		TableExpr("borrow_items AS bi").
		Join("JOIN book_copies AS bc ON bc.id = bi.copy_id").
		Join("JOIN book_titles AS bt ON bt.id = bc.title_id").
		ColumnExpr("bi.id AS borrow_item_id, bc.barcode AS copy_barcode").
		ColumnExpr("bt.code AS title_code, bt.title, bt.author").
		ColumnExpr("bi.due_date, bi.return_date, bi.total_fee").
		Where("bi.receipt_id = ?", receiptID).
		OrderExpr("bi.id ASC").
		Scan(ctx, &items)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return receipt, items, nil
}

// Revenue totals fees on returns in the range and lists the fee-bearing
// returns, newest first.
func (svc *Service) Revenue(ctx context.Context, from, to string) (*RevenueSummary, []*RevenueRow, error) {
	summary := &RevenueSummary{}
	err := svc.db.
		NewSelect().
		TableExpr("borrow_items AS bi").
		ColumnExpr("COALESCE(SUM(bi.total_fee), 0) AS total_revenue").
		ColumnExpr("COALESCE(SUM(bi.late_fee), 0) AS total_late").
		ColumnExpr("COALESCE(SUM(bi.damage_fee), 0) AS total_damage").
		Where("bi.return_date BETWEEN ? AND ?", from, to).
		Scan(ctx, summary)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	details := []*RevenueRow{}
	err = svc.db.
		NewSelect().
		TableExpr("borrow_items AS bi").
		Join("JOIN borrow_receipts AS br ON br.id = bi.receipt_id").
		Join("JOIN readers AS r ON r.id = br.reader_id").
		Join("JOIN book_copies AS bc ON bc.id = bi.copy_id").
		ColumnExpr("bi.return_date, bi.total_fee, bi.late_fee, bi.damage_fee").
		ColumnExpr("r.code AS reader_code, r.name AS reader_name").
		ColumnExpr("bc.barcode AS copy_barcode").
		Where("bi.return_date BETWEEN ? AND ?", from, to).
		Where("bi.total_fee > 0").
		OrderExpr("bi.return_date DESC").
		Limit(500).
		Scan(ctx, &details)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return summary, details, nil
}
