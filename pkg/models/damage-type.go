package models

import (
	"time"

	"github.com/uptrace/bun"
)

type DamageType struct {
	bun.BaseModel `bun:"table:damage_types,alias:dt"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `bun:",nullzero" json:"name"`
	DefaultFee int64     `json:"default_fee"`
}
