package stats

type DateRangeQuery struct {
	From string `query:"from" json:"from" validate:"required,date"`
	To   string `query:"to" json:"to" validate:"required,date"`
}
