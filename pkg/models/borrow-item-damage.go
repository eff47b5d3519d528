package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BorrowItemDamage is a charge line attached to a returned borrow item. The
// fee may differ from the damage type's default; staff can adjust it per
// incident.
type BorrowItemDamage struct {
	bun.BaseModel `bun:"table:borrow_item_damages,alias:bid"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	BorrowItemID int       `bun:",nullzero" json:"borrow_item_id"`
	DamageTypeID int       `bun:",nullzero" json:"damage_type_id"`
	Fee          int64     `json:"fee"`

	// Relations
	DamageType *DamageType `bun:"rel:belongs-to,join:damage_type_id=id" json:"damage_type,omitempty"`
}
