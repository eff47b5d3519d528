package circulation

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

const (
	// DateLayout is the canonical storage form for all loan dates.
	DateLayout = "2006-01-02"

	// LoanPeriodDays is the fixed loan period applied at checkout.
	LoanPeriodDays = 120

	// MaxOpenLoans caps how many copies a reader may have out at once.
	MaxOpenLoans = 5

	// lateFeeRate is the flat penalty rate applied to a title's cover price
	// when a copy comes back after its due date.
	lateFeeRate = 0.2
)

// ParseDate parses a YYYY-MM-DD string anchored at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, errors.WithStack(err)
	}
	return t, nil
}

// FormatDate renders t as a YYYY-MM-DD string in t's own location, so a
// local timestamp near midnight doesn't roll over to the wrong day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DueDateFor returns the due date for a loan starting on borrowDate.
func DueDateFor(borrowDate string) (string, error) {
	t, err := ParseDate(borrowDate)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, LoanPeriodDays)), nil
}

// DaysLate returns how many whole calendar days returnDate falls after
// dueDate. Zero or negative means the return is on time.
func DaysLate(returnDate, dueDate string) (int, error) {
	ret, err := ParseDate(returnDate)
	if err != nil {
		return 0, err
	}
	due, err := ParseDate(dueDate)
	if err != nil {
		return 0, err
	}
	return int(ret.Sub(due).Hours() / 24), nil
}

// LateFeeFor computes the flat late penalty. Any amount of lateness charges
// 20% of the cover price; on-time returns charge nothing. Lateness is not
// scaled by how many days overdue the copy is.
func LateFeeFor(coverPrice int64, returnDate, dueDate string) (int64, error) {
	late, err := DaysLate(returnDate, dueDate)
	if err != nil {
		return 0, err
	}
	if late <= 0 {
		return 0, nil
	}
	return int64(math.Round(lateFeeRate * float64(coverPrice))), nil
}
