package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BorrowReceipt is one checkout transaction. It owns between one and five
// borrow items, created atomically with it.
type BorrowReceipt struct {
	bun.BaseModel `bun:"table:borrow_receipts,alias:br"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ReaderID    int       `bun:",nullzero" json:"reader_id"`
	LibrarianID int       `bun:",nullzero" json:"librarian_id"`
	BorrowDate  string    `bun:",nullzero" json:"borrow_date"` // YYYY-MM-DD

	// Relations
	Reader    *Reader       `bun:"rel:belongs-to,join:reader_id=id" json:"reader,omitempty"`
	Librarian *User         `bun:"rel:belongs-to,join:librarian_id=id" json:"librarian,omitempty"`
	Items     []*BorrowItem `bun:"rel:has-many,join:id=receipt_id" json:"items,omitempty"`
}
