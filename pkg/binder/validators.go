package binder

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// dateValidator ensures the value is a real calendar date in YYYY-MM-DD form
// or the empty string. The reason the empty string is allowed is that this
// validator can be used to clear out values. However, this is only useful in
// that case, so if you're using this validator but want the value to be
// required, add a `ne=` to the validate tag so that the empty string is
// disallowed.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
