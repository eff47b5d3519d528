package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Reader struct {
	bun.BaseModel `bun:"table:readers,alias:r"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Code      string    `bun:",nullzero" json:"code"`
	Name      string    `bun:",nullzero" json:"name"`
	DOB       *string   `bun:"dob" json:"dob,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Barcode   string    `bun:",nullzero" json:"barcode"`
}
