package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookTitle struct {
	bun.BaseModel `bun:"table:book_titles,alias:bt"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Code        string    `bun:",nullzero" json:"code"`
	Title       string    `bun:",nullzero" json:"title"`
	Author      string    `bun:",nullzero" json:"author"`
	PublishYear *int      `json:"publish_year,omitempty"`
	CoverPrice  int64     `json:"cover_price"`
	PublisherID *int      `json:"publisher_id,omitempty"`
	Description *string   `json:"description,omitempty"`

	// Relations
	Publisher *Publisher `bun:"rel:belongs-to,join:publisher_id=id" json:"publisher,omitempty"`
}
