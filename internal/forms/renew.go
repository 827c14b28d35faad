// Package forms holds the user-input validation for the catalog's forms.
// Validators are pure: they see only the submitted values and the caller's
// notion of "today", never the database.
package forms

import (
	"errors"
	"time"
)

// RenewalDateLayout is the wire format for submitted dates.
const RenewalDateLayout = "2006-01-02"

// MaxRenewalAhead is how far into the future a loan can be renewed.
const MaxRenewalAhead = 28 * 24 * time.Hour // 4 weeks

// DefaultRenewalAhead is the proposed renewal period shown on the form.
const DefaultRenewalAhead = 21 * 24 * time.Hour // 3 weeks

// ErrUnparseableDate is returned when the submitted value is not a date at all.
var ErrUnparseableDate = errors.New("enter a valid date in YYYY-MM-DD format")

// FieldError is a single validation failure with a user-facing message.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// RenewBookForm carries one candidate renewal date through validation.
type RenewBookForm struct {
	RenewalDate time.Time
}

// ParseRenewalDate builds a form from a submitted date string.
func ParseRenewalDate(value string) (*RenewBookForm, error) {
	parsed, err := time.Parse(RenewalDateLayout, value)
	if err != nil {
		return nil, ErrUnparseableDate
	}
	return &RenewBookForm{RenewalDate: parsed}, nil
}

// Validate checks the renewal date against the calendar rules for extending a
// loan: not before today, and no more than four weeks out. Both bounds are
// inclusive. On success the date is returned to the caller unchanged.
func (f *RenewBookForm) Validate(today time.Time) []FieldError {
	day := truncateToDay(today)
	date := truncateToDay(f.RenewalDate)

	var errs []FieldError
	if date.Before(day) {
		errs = append(errs, FieldError{
			Field:   "renewal_date",
			Message: "Invalid date - renewal cannot be in the past",
		})
	}
	if date.After(day.Add(MaxRenewalAhead)) {
		errs = append(errs, FieldError{
			Field:   "renewal_date",
			Message: "Invalid date - renewal cannot be more than 4 weeks ahead",
		})
	}
	return errs
}

// DefaultRenewalDate proposes today plus three weeks for the renewal form.
func DefaultRenewalDate(today time.Time) time.Time {
	return truncateToDay(today).Add(DefaultRenewalAhead)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
