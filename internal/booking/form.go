package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/patient-portal-scheduling/internal/appointment"
)

var (
	ErrUnknownField   = errors.New("unknown booking form field")
	ErrTimeSlotLocked = errors.New("time slot cannot be selected before a date")
	ErrInvalidDate    = errors.New("date must be a calendar date (YYYY-MM-DD)")
)

// ParseDate accepts a plain calendar date or an RFC 3339 timestamp. An empty
// string yields the zero time, meaning "no date selected".
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Form is the in-progress booking form of one session. Every field change
// re-runs validation.
type Form struct {
	validator *Validator
	draft     appointment.Draft
	errors    FieldErrors
}

func NewForm(v *Validator) *Form {
	return &Form{validator: v, errors: FieldErrors{}}
}

// Set applies one field change and returns the fresh validation result.
func (f *Form) Set(field, value string) (FieldErrors, error) {
	switch field {
	case FieldPractitionerID:
		f.draft.PractitionerID = value
	case FieldServiceID:
		f.draft.ServiceID = value
	case FieldDate:
		date, err := ParseDate(value)
		if err != nil {
			return f.Errors(), err
		}
		f.draft.Date = date
		if date.IsZero() {
			f.draft.TimeSlot = ""
		}
	case FieldTimeSlot:
		if f.draft.Date.IsZero() && value != "" {
			return f.Errors(), ErrTimeSlotLocked
		}
		f.draft.TimeSlot = value
	case FieldReason:
		f.draft.Reason = value
	default:
		return f.Errors(), fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	f.errors = f.validator.Validate(f.draft)
	return f.Errors(), nil
}

// TimeSlotEnabled reports whether the slot picker may be used.
func (f *Form) TimeSlotEnabled() bool {
	return !f.draft.Date.IsZero()
}

func (f *Form) Draft() appointment.Draft {
	return f.draft
}

func (f *Form) Errors() FieldErrors {
	out := make(FieldErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Reset restores empty defaults. Untouched fields carry no errors.
func (f *Form) Reset() {
	f.draft = appointment.Draft{}
	f.errors = FieldErrors{}
}
