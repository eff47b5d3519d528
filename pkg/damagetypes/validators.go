package damagetypes

type ListDamageTypesQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"200" validate:"min=1,max=500"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"q" json:"q,omitempty" validate:"omitempty,max=100"`
}

type CreateDamageTypePayload struct {
	Name       string `json:"name" mod:"trim" validate:"required,min=1,max=200"`
	DefaultFee int64  `json:"default_fee" validate:"min=0"`
}

type UpdateDamageTypePayload struct {
	Name       string `json:"name" mod:"trim" validate:"required,min=1,max=200"`
	DefaultFee int64  `json:"default_fee" validate:"min=0"`
}
