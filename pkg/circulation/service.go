package circulation

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shelftrack/shelftrack/pkg/errcodes"
	"github.com/shelftrack/shelftrack/pkg/models"
	"github.com/uptrace/bun"
)

type CheckoutParams struct {
	ReaderID     int
	LibrarianID  int
	CopyBarcodes []string
	BorrowDate   string // YYYY-MM-DD
}

type CheckoutResult struct {
	ReceiptID int    `json:"receipt_id"`
	DueDate   string `json:"due_date"`
}

type QuoteParams struct {
	ReaderID    int
	CopyBarcode string
	ReturnDate  string // YYYY-MM-DD
}

// Quote describes the open loan matched by a return scan, with the late fee
// that would be charged if the return were confirmed on ReturnDate.
type Quote struct {
	BorrowItemID int    `json:"borrow_item_id"`
	CopyID       int    `json:"copy_id"`
	CopyBarcode  string `json:"copy_barcode"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	CoverPrice   int64  `json:"cover_price"`
	BorrowDate   string `json:"borrow_date"`
	DueDate      string `json:"due_date"`
	ReturnDate   string `json:"return_date"`
	LateFee      int64  `json:"late_fee"`
}

type DamageLine struct {
	DamageTypeID int
	Fee          int64
}

type ConfirmParams struct {
	BorrowItemID    int
	ReturnDate      string // YYYY-MM-DD
	Damages         []DamageLine
	LateFeeOverride *int64
}

type ConfirmResult struct {
	BorrowItemID int    `json:"borrow_item_id"`
	ReturnDate   string `json:"return_date"`
	LateFee      int64  `json:"late_fee"`
	DamageFee    int64  `json:"damage_fee"`
	TotalFee     int64  `json:"total_fee"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Checkout creates one receipt with a borrow item per barcode and marks the
// copies BORROWED. Validation happens up front; the writes run in one
// transaction so a failure part way through leaves nothing behind.
func (svc *Service) Checkout(ctx context.Context, params CheckoutParams) (*CheckoutResult, error) {
	exists, err := svc.db.
		NewSelect().
		Model((*models.Reader)(nil)).
		Where("id = ?", params.ReaderID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !exists {
		return nil, errcodes.NotFound("Reader")
	}

	openCount, err := svc.CountOpenLoans(ctx, params.ReaderID)
	if err != nil {
		return nil, err
	}
	if openCount >= MaxOpenLoans || openCount+len(params.CopyBarcodes) > MaxOpenLoans {
		return nil, errcodes.BusinessRuleViolation(fmt.Sprintf(
			"Reader already has %d open loans; the limit is %d books at a time.",
			openCount, MaxOpenLoans,
		))
	}

	seen := map[string]bool{}
	duplicates := []string{}
	for _, barcode := range params.CopyBarcodes {
		if seen[barcode] {
			duplicates = append(duplicates, barcode)
		}
		seen[barcode] = true
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return nil, errcodes.ValidationError("Duplicate barcodes: " + strings.Join(duplicates, ", ") + ".")
	}

	copies := []*models.BookCopy{}
	err = svc.db.
		NewSelect().
		Model(&copies).
		Where("bc.barcode IN (?)", bun.In(params.CopyBarcodes)).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	byBarcode := map[string]*models.BookCopy{}
	for _, copy := range copies {
		byBarcode[copy.Barcode] = copy
	}

	missing := []string{}
	unavailable := []string{}
	for _, barcode := range params.CopyBarcodes {
		copy, ok := byBarcode[barcode]
		if !ok {
			missing = append(missing, barcode)
			continue
		}
		if copy.Status != models.CopyStatusAvailable {
			unavailable = append(unavailable, barcode)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errcodes.ValidationError("Unknown barcodes: " + strings.Join(missing, ", ") + ".")
	}
	if len(unavailable) > 0 {
		sort.Strings(unavailable)
		return nil, errcodes.BusinessRuleViolation("Copies not available for checkout: " + strings.Join(unavailable, ", ") + ".")
	}

	dueDate, err := DueDateFor(params.BorrowDate)
	if err != nil {
		return nil, errcodes.ValidationError("'borrow_date' must be a valid YYYY-MM-DD date.")
	}

	receipt := &models.BorrowReceipt{
		CreatedAt:   time.Now(),
		ReaderID:    params.ReaderID,
		LibrarianID: params.LibrarianID,
		BorrowDate:  params.BorrowDate,
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(receipt).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		items := make([]*models.BorrowItem, 0, len(copies))
		copyIDs := make([]int, 0, len(copies))
		for _, copy := range copies {
			items = append(items, &models.BorrowItem{
				CreatedAt: receipt.CreatedAt,
				ReceiptID: receipt.ID,
				CopyID:    copy.ID,
				DueDate:   dueDate,
			})
			copyIDs = append(copyIDs, copy.ID)
		}

		_, err = tx.NewInsert().
			Model(&items).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		// The AVAILABLE guard re-checks status inside the transaction. A copy
		// grabbed by a concurrent checkout makes the count come up short and
		// rolls the whole receipt back.
		res, err := tx.NewUpdate().
			Model((*models.BookCopy)(nil)).
			Set("status = ?", models.CopyStatusBorrowed).
			Set("updated_at = ?", time.Now()).
			Where("id IN (?)", bun.In(copyIDs)).
			Where("status = ?", models.CopyStatusAvailable).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		updated, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if updated != int64(len(copyIDs)) {
			return errcodes.BusinessRuleViolation("One or more copies are no longer available for checkout.")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{ReceiptID: receipt.ID, DueDate: dueDate}, nil
}

// CountOpenLoans counts the reader's borrow items that haven't been returned.
func (svc *Service) CountOpenLoans(ctx context.Context, readerID int) (int, error) {
	count, err := svc.db.
		NewSelect().
		TableExpr("borrow_items AS bi").
		Join("JOIN borrow_receipts AS br ON br.id = bi.receipt_id").
		Where("br.reader_id = ?", readerID).
		Where("bi.return_date IS NULL").
		Count(ctx)
	return count, errors.WithStack(err)
}

// QuoteReturn finds the most recent open loan for the reader and barcode and
// computes the late fee a confirmation on ReturnDate would charge. It writes
// nothing.
func (svc *Service) QuoteReturn(ctx context.Context, params QuoteParams) (*Quote, error) {
	quote := &Quote{}

	err := svc.db.
		NewSelect().
		TableExpr("borrow_items AS bi").
		Join("JOIN borrow_receipts AS br ON br.id = bi.receipt_id").
		Join("JOIN book_copies AS bc ON bc.id = bi.copy_id").
		Join("JOIN book_titles AS bt ON bt.id = bc.title_id").
		ColumnExpr("bi.id AS borrow_item_id").
		ColumnExpr("bc.id AS copy_id, bc.barcode AS copy_barcode").
		ColumnExpr("bt.title, bt.author, bt.cover_price").
		ColumnExpr("br.borrow_date, bi.due_date").
		Where("br.reader_id = ?", params.ReaderID).
		Where("bc.barcode = ?", params.CopyBarcode).
		Where("bi.return_date IS NULL").
		OrderExpr("br.borrow_date DESC").
		Limit(1).
		Scan(ctx, quote)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Open loan for that reader and barcode")
		}
		return nil, errors.WithStack(err)
	}

	quote.ReturnDate = params.ReturnDate
	quote.LateFee, err = LateFeeFor(quote.CoverPrice, params.ReturnDate, quote.DueDate)
	if err != nil {
		return nil, errcodes.ValidationError("'return_date' must be a valid YYYY-MM-DD date.")
	}

	return quote, nil
}

// ConfirmReturn closes out a borrow item: it finalizes the fees, replaces the
// item's damage lines with the supplied ones, and puts the copy back in
// circulation. The whole operation is one transaction; a second confirmation
// of the same item fails with a conflict and changes nothing.
func (svc *Service) ConfirmReturn(ctx context.Context, params ConfirmParams) (*ConfirmResult, error) {
	result := &ConfirmResult{BorrowItemID: params.BorrowItemID, ReturnDate: params.ReturnDate}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		item := &models.BorrowItem{}
		err := tx.NewSelect().
			Model(item).
			Relation("Copy").
			Relation("Copy.Title").
			Where("bi.id = ?", params.BorrowItemID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Borrow item")
			}
			return errors.WithStack(err)
		}
		if item.IsReturned() {
			return errcodes.Conflict("This loan has already been returned.")
		}

		if params.LateFeeOverride != nil {
			result.LateFee = *params.LateFeeOverride
		} else {
			result.LateFee, err = LateFeeFor(item.Copy.Title.CoverPrice, params.ReturnDate, item.DueDate)
			if err != nil {
				return errcodes.ValidationError("'return_date' must be a valid YYYY-MM-DD date.")
			}
		}

		result.DamageFee = 0
		for _, line := range params.Damages {
			result.DamageFee += line.Fee
		}
		result.TotalFee = result.LateFee + result.DamageFee

		// The return_date guard makes the update a compare-and-set, so two
		// racing confirmations can't both close the same item.
		res, err := tx.NewUpdate().
			Model((*models.BorrowItem)(nil)).
			Set("return_date = ?", params.ReturnDate).
			Set("late_fee = ?", result.LateFee).
			Set("damage_fee = ?", result.DamageFee).
			Set("total_fee = ?", result.TotalFee).
			Where("id = ?", params.BorrowItemID).
			Where("return_date IS NULL").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		updated, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if updated != 1 {
			return errcodes.Conflict("This loan has already been returned.")
		}

		_, err = tx.NewDelete().
			Model((*models.BorrowItemDamage)(nil)).
			Where("borrow_item_id = ?", params.BorrowItemID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if len(params.Damages) > 0 {
			lines := make([]*models.BorrowItemDamage, 0, len(params.Damages))
			for _, line := range params.Damages {
				lines = append(lines, &models.BorrowItemDamage{
					CreatedAt:    time.Now(),
					BorrowItemID: params.BorrowItemID,
					DamageTypeID: line.DamageTypeID,
					Fee:          line.Fee,
				})
			}
			_, err = tx.NewInsert().
				Model(&lines).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		_, err = tx.NewUpdate().
			Model((*models.BookCopy)(nil)).
			Set("status = ?", models.CopyStatusAvailable).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", item.CopyID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListItemDamages returns the damage lines recorded against a borrow item.
func (svc *Service) ListItemDamages(ctx context.Context, borrowItemID int) ([]*models.BorrowItemDamage, error) {
	exists, err := svc.db.
		NewSelect().
		Model((*models.BorrowItem)(nil)).
		Where("id = ?", borrowItemID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !exists {
		return nil, errcodes.NotFound("Borrow item")
	}

	damages := []*models.BorrowItemDamage{}
	err = svc.db.
		NewSelect().
		Model(&damages).
		Relation("DamageType").
		Where("bid.borrow_item_id = ?", borrowItemID).
		Order("bid.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return damages, nil
}
