package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BorrowItem tracks one copy's custody from checkout to return. ReturnDate
// and the fee columns stay null while the loan is open; once ReturnDate is
// set the row is immutable.
type BorrowItem struct {
	bun.BaseModel `bun:"table:borrow_items,alias:bi"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ReceiptID int       `bun:",nullzero" json:"receipt_id"`
	CopyID    int       `bun:",nullzero" json:"copy_id"`
	DueDate   string    `bun:",nullzero" json:"due_date"` // YYYY-MM-DD

	ReturnDate *string `json:"return_date,omitempty"` // YYYY-MM-DD, null while open
	LateFee    *int64  `json:"late_fee,omitempty"`
	DamageFee  *int64  `json:"damage_fee,omitempty"`
	TotalFee   *int64  `json:"total_fee,omitempty"`

	// Relations
	Receipt *BorrowReceipt      `bun:"rel:belongs-to,join:receipt_id=id" json:"receipt,omitempty"`
	Copy    *BookCopy           `bun:"rel:belongs-to,join:copy_id=id" json:"copy,omitempty"`
	Damages []*BorrowItemDamage `bun:"rel:has-many,join:id=borrow_item_id" json:"damages,omitempty"`
}

// IsReturned reports whether the loan has been closed out.
func (bi *BorrowItem) IsReturned() bool {
	return bi.ReturnDate != nil
}
