package form

import (
	"regexp"
	"strings"
	"time"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// DateLayout is the ISO calendar date format used by the booking form
// and the scheduling service.
const DateLayout = "2006-01-02"

// Validator applies the booking form rules to a FieldSet. "Today" for
// the date rule is evaluated in the client's local timezone.
type Validator struct {
	now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorWithClock injects the clock, for tests.
func NewValidatorWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Validate clears all invalid marks, re-applies every rule to every
// field and reports overall validity. Rules are independent: a field
// failing any rule is marked invalid the same way.
func (v *Validator) Validate(fs *FieldSet) bool {
	valid := true

	for _, f := range fs.Fields() {
		f.Invalid = false

		if f.Required && strings.TrimSpace(f.Value) == "" {
			f.Invalid = true
			valid = false
		}

		if f.Name == FieldPhone && strings.TrimSpace(f.Value) != "" && !phonePattern.MatchString(f.Value) {
			f.Invalid = true
			valid = false
		}

		if f.Name == FieldDate && f.Value != "" && v.dateInPast(f.Value) {
			f.Invalid = true
			valid = false
		}
	}

	return valid
}

// dateInPast reports whether the value parses to a calendar date
// strictly before today, at midnight granularity. Unparseable values
// count as past.
func (v *Validator) dateInPast(value string) bool {
	selected, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return true
	}

	now := v.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	return selected.Before(today)
}
