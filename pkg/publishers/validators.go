package publishers

type ListPublishersQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"200" validate:"min=1,max=500"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"q" json:"q,omitempty" validate:"omitempty,max=100"`
}

type CreatePublisherPayload struct {
	Name string `json:"name" mod:"trim" validate:"required,min=1,max=300"`
}

type UpdatePublisherPayload struct {
	Name string `json:"name" mod:"trim" validate:"required,min=1,max=300"`
}
