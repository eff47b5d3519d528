package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Copy statuses. AVAILABLE is the only loanable state; an open borrow item
// exists for a copy exactly when its status is BORROWED.
const (
	CopyStatusAvailable = "AVAILABLE"
	CopyStatusBorrowed  = "BORROWED"
	CopyStatusLost      = "LOST"
	CopyStatusDamaged   = "DAMAGED"
)

type BookCopy struct {
	bun.BaseModel `bun:"table:book_copies,alias:bc"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TitleID   int       `bun:",nullzero" json:"title_id"`
	Barcode   string    `bun:",nullzero" json:"barcode"`
	Status    string    `bun:",nullzero" json:"status"`

	// Relations
	Title *BookTitle `bun:"rel:belongs-to,join:title_id=id" json:"title,omitempty"`
}
