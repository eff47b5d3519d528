package readers

import "github.com/shelftrack/shelftrack/pkg/models"

type ListReadersQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"200" validate:"min=1,max=500"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"q" json:"q,omitempty" validate:"omitempty,max=100"`
}

type CreateReaderPayload struct {
	Code    string  `json:"code" mod:"trim" validate:"required,min=1,max=50"`
	Name    string  `json:"name" mod:"trim" validate:"required,min=1,max=300"`
	DOB     *string `json:"dob,omitempty" validate:"omitempty,date"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Barcode string  `json:"barcode" mod:"trim" validate:"required,min=1,max=100"`
}

type UpdateReaderPayload struct {
	Code    string  `json:"code" mod:"trim" validate:"required,min=1,max=50"`
	Name    string  `json:"name" mod:"trim" validate:"required,min=1,max=300"`
	DOB     *string `json:"dob,omitempty" validate:"omitempty,date"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Barcode string  `json:"barcode" mod:"trim" validate:"required,min=1,max=100"`
}

// ReaderDetailResponse is the reader page payload: the reader plus their open
// loans and returned history.
type ReaderDetailResponse struct {
	Reader   *models.Reader `json:"reader"`
	Borrowed []*LoanRow     `json:"borrowed"`
	Returned []*LoanRow     `json:"returned"`
}
