package circulation

type CheckoutPayload struct {
	ReaderID     int      `json:"reader_id" validate:"required,min=1"`
	CopyBarcodes []string `json:"copy_barcodes" validate:"required,min=1,max=5,dive,required,max=100"`
	BorrowDate   *string  `json:"borrow_date" validate:"omitempty,date"`
}

type QuotePayload struct {
	ReaderID    int     `json:"reader_id" validate:"required,min=1"`
	CopyBarcode string  `json:"copy_barcode" mod:"trim" validate:"required,min=1,max=100"`
	ReturnDate  *string `json:"return_date" validate:"omitempty,date"`
}

type DamageLinePayload struct {
	DamageTypeID int   `json:"damage_type_id" validate:"required,min=1"`
	Fee          int64 `json:"fee" validate:"min=0"`
}

type ConfirmPayload struct {
	BorrowItemID    int                 `json:"borrow_item_id" validate:"required,min=1"`
	ReturnDate      *string             `json:"return_date" validate:"omitempty,date"`
	Damages         []DamageLinePayload `json:"damages" validate:"omitempty,max=50,dive"`
	LateFeeOverride *float64            `json:"late_fee_override" validate:"omitempty,min=0"`
}
