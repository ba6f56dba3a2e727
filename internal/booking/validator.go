package booking

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hackgods/patient-portal-scheduling/internal/appointment"
	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
)

const (
	FieldPractitionerID = "practitionerId"
	FieldServiceID      = "serviceId"
	FieldDate           = "date"
	FieldTimeSlot       = "timeSlot"
	FieldReason         = "reason"
)

// MaxReasonLength is counted in characters, not bytes.
const MaxReasonLength = 200

const (
	msgPractitionerRequired = "Please select a doctor."
	msgServiceRequired      = "Please select a service."
	msgDateRequired         = "Please select a date for your appointment."
	msgDateInPast           = "Appointment date cannot be in the past."
	msgTimeSlotRequired     = "Please select a time slot."
	msgTimeSlotNeedsDate    = "Please select a date first."
	msgTimeSlotUnavailable  = "Please select an available time slot."
	msgReasonTooLong        = "Reason must be 200 characters or less."
)

// FieldErrors maps a form field to its message. Empty means valid.
type FieldErrors map[string]string

func (f FieldErrors) Valid() bool {
	return len(f) == 0
}

// ValidationError is returned when a draft that still has field errors is
// submitted.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("booking draft invalid: %s", strings.Join(keys, ", "))
}

// Validator checks a draft field by field. It has no side effects; the
// clock is injected so the past-date rule is deterministic.
type Validator struct {
	validate *validator.Validate
	catalog  *catalog.Catalog
	now      func() time.Time
}

func NewValidator(cat *catalog.Catalog, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	if cat == nil {
		cat = catalog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v, catalog: cat, now: now}
}

func (v *Validator) Validate(d appointment.Draft) FieldErrors {
	errs := FieldErrors{}

	if err := v.validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs[fe.Field()] = tagMessage(fe)
			}
		}
	}

	switch {
	case d.Date.IsZero():
		errs[FieldDate] = msgDateRequired
	case dayOf(d.Date).Before(earliestBookable(v.now())):
		errs[FieldDate] = msgDateInPast
	}

	// The slot picker stays locked until a date is chosen.
	switch {
	case d.Date.IsZero():
		errs[FieldTimeSlot] = msgTimeSlotNeedsDate
	case strings.TrimSpace(d.TimeSlot) == "":
		errs[FieldTimeSlot] = msgTimeSlotRequired
	case !v.catalog.HasTimeSlot(d.TimeSlot):
		errs[FieldTimeSlot] = msgTimeSlotUnavailable
	}

	return errs
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case FieldPractitionerID:
		return msgPractitionerRequired
	case FieldServiceID:
		return msgServiceRequired
	case FieldReason:
		return msgReasonTooLong
	}
	return fe.Field() + " is invalid"
}

// earliestBookable is the start of yesterday: same-day bookings stay open
// for a full day of grace.
func earliestBookable(now time.Time) time.Time {
	return dayOf(now).AddDate(0, 0, -1)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
