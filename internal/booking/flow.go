package booking

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hackgods/patient-portal-scheduling/internal/appointment"
	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/metrics"
)

var (
	ErrProposalInFlight  = errors.New("a booking is already awaiting confirmation")
	ErrNoPendingProposal = errors.New("no booking is awaiting confirmation")
)

// Creator is the part of the lifecycle engine the flow commits through.
type Creator interface {
	Create(ctx context.Context, d appointment.Draft) appointment.Appointment
}

// Proposal is what the confirmation dialog shows. Labels are resolved from
// the catalog each time it is read; Draft keeps the raw ids.
type Proposal struct {
	Draft            appointment.Draft `json:"draft"`
	PractitionerName string            `json:"practitionerName"`
	ServiceName      string            `json:"serviceName"`
	Date             string            `json:"date"`
	TimeSlot         string            `json:"timeSlot"`
	Reason           string            `json:"reason,omitempty"`
}

// Flow is the two step submit: a valid draft is held until the patient
// either confirms it into an appointment or discards it.
type Flow struct {
	validator *Validator
	catalog   *catalog.Catalog
	engine    Creator
	form      *Form
	metrics   *metrics.BookingMetrics
	logger    zerolog.Logger

	held *appointment.Draft
}

func NewFlow(v *Validator, cat *catalog.Catalog, engine Creator, form *Form, m *metrics.BookingMetrics, logger zerolog.Logger) *Flow {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Flow{
		validator: v,
		catalog:   cat,
		engine:    engine,
		form:      form,
		metrics:   m,
		logger:    logger,
	}
}

// Submit proposes whatever the form currently holds.
func (f *Flow) Submit() (Proposal, error) {
	return f.Propose(f.form.Draft())
}

func (f *Flow) Propose(d appointment.Draft) (Proposal, error) {
	if f.held != nil {
		f.metrics.ObserveProposal("rejected_in_flight")
		return Proposal{}, ErrProposalInFlight
	}

	if errs := f.validator.Validate(d); !errs.Valid() {
		f.metrics.ObserveProposal("invalid")
		return Proposal{}, &ValidationError{Fields: errs}
	}

	held := d
	f.held = &held
	f.metrics.ObserveProposal("proposed")

	f.logger.Debug().
		Str("practitioner_id", d.PractitionerID).
		Str("service_id", d.ServiceID).
		Str("time_slot", d.TimeSlot).
		Msg("booking proposed")

	return f.resolve(held), nil
}

// Pending returns the held proposal, if any.
func (f *Flow) Pending() (Proposal, bool) {
	if f.held == nil {
		return Proposal{}, false
	}
	return f.resolve(*f.held), true
}

// Confirm commits the held draft, clears it and resets the form.
func (f *Flow) Confirm(ctx context.Context) (appointment.Appointment, error) {
	if f.held == nil {
		return appointment.Appointment{}, ErrNoPendingProposal
	}

	appt := f.engine.Create(ctx, *f.held)
	f.held = nil
	f.form.Reset()
	f.metrics.ObserveProposal("confirmed")

	return appt, nil
}

// Discard drops the held draft and leaves the form as the patient left it.
func (f *Flow) Discard() bool {
	if f.held == nil {
		return false
	}
	f.held = nil
	f.metrics.ObserveProposal("discarded")
	f.logger.Debug().Msg("booking proposal discarded")
	return true
}

func (f *Flow) resolve(d appointment.Draft) Proposal {
	return Proposal{
		Draft:            d,
		PractitionerName: f.catalog.PractitionerName(d.PractitionerID),
		ServiceName:      f.catalog.ServiceName(d.ServiceID),
		Date:             appointment.FormatWeekdayDate(d.Date),
		TimeSlot:         d.TimeSlot,
		Reason:           d.Reason,
	}
}
