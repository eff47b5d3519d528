package books

type ListTitlesQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"200" validate:"min=1,max=500"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"q" json:"q,omitempty" validate:"omitempty,max=100"`
}

type CreateTitlePayload struct {
	Code        string  `json:"code" mod:"trim" validate:"required,min=1,max=50"`
	Title       string  `json:"title" mod:"trim" validate:"required,min=1,max=500"`
	Author      string  `json:"author" mod:"trim" validate:"required,min=1,max=300"`
	PublishYear *int    `json:"publish_year" validate:"omitempty,min=0,max=3000"`
	CoverPrice  int64   `json:"cover_price" validate:"min=0"`
	PublisherID *int    `json:"publisher_id" validate:"omitempty,min=1"`
	Description *string `json:"description" mod:"trim" validate:"omitempty,max=5000"`
}

type UpdateTitlePayload struct {
	Code        string  `json:"code" mod:"trim" validate:"required,min=1,max=50"`
	Title       string  `json:"title" mod:"trim" validate:"required,min=1,max=500"`
	Author      string  `json:"author" mod:"trim" validate:"required,min=1,max=300"`
	PublishYear *int    `json:"publish_year" validate:"omitempty,min=0,max=3000"`
	CoverPrice  int64   `json:"cover_price" validate:"min=0"`
	PublisherID *int    `json:"publisher_id" validate:"omitempty,min=1"`
	Description *string `json:"description" mod:"trim" validate:"omitempty,max=5000"`
}

type ListCopiesQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"200" validate:"min=1,max=500"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"q" json:"q,omitempty" validate:"omitempty,max=100"`
}

type CreateCopyPayload struct {
	TitleID int     `json:"title_id" validate:"required,min=1"`
	Barcode *string `json:"barcode" mod:"trim" validate:"omitempty,min=1,max=100"`
}

type UpdateCopyPayload struct {
	TitleID int    `json:"title_id" validate:"required,min=1"`
	Barcode string `json:"barcode" mod:"trim" validate:"required,min=1,max=100"`
	Status  string `json:"status" validate:"required,oneof=AVAILABLE BORROWED LOST DAMAGED"`
}
