package appointment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/metrics"
	"github.com/hackgods/patient-portal-scheduling/internal/notify"
)

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

type ack struct {
	kind        notify.Kind
	title       string
	description string
	variant     string
}

var transitionAcks = map[Event]ack{
	EventCancel: {
		kind:        notify.KindAppointmentCancelled,
		title:       "Appointment Cancelled",
		description: "Appointment ID %s has been cancelled.",
		variant:     "destructive",
	},
	EventConfirm: {
		kind:        notify.KindAppointmentConfirmed,
		title:       "Appointment Confirmed",
		description: "Appointment ID %s has been confirmed.",
		variant:     "success",
	},
	EventComplete: {
		kind:        notify.KindAppointmentCompleted,
		title:       "Appointment Completed",
		description: "Appointment ID %s has been completed.",
		variant:     "default",
	},
}

// Engine owns every mutation of a session's appointment collection.
type Engine struct {
	appointments *Collection
	catalog      *catalog.Catalog
	notifier     notify.Notifier
	metrics      *metrics.BookingMetrics
	logger       zerolog.Logger
	now          func() time.Time
	seq          int64
}

func NewEngine(appointments *Collection, cat *catalog.Catalog, notifier notify.Notifier, m *metrics.BookingMetrics, logger zerolog.Logger) *Engine {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if cat == nil {
		cat = catalog.Default()
	}

	e := &Engine{
		appointments: appointments,
		catalog:      cat,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}

	// Start numbering after the highest numeric id already present so
	// seeded records are never shadowed.
	for _, a := range appointments.items {
		if n, err := strconv.ParseInt(a.ID, 10, 64); err == nil && n > e.seq {
			e.seq = n
		}
	}

	return e
}

// Create turns an already validated draft into a Pending appointment at the
// front of the collection. It does not validate the draft.
func (e *Engine) Create(ctx context.Context, d Draft) Appointment {
	practitioner := e.catalog.PractitionerName(d.PractitionerID)
	service := e.catalog.ServiceName(d.ServiceID)

	appt := Appointment{
		ID:               e.nextID(),
		Title:            fmt.Sprintf("Appointment with %s", practitioner),
		Date:             FormatLongDate(d.Date),
		Time:             d.TimeSlot,
		Status:           InitialStatus,
		ConsultationType: service,
		PractitionerName: practitioner,
		Reason:           d.Reason,
		CreatedAt:        e.now(),
	}

	e.appointments.prepend(appt)
	e.metrics.ObserveCreated(service)

	e.logger.Info().
		Str("appointment_id", appt.ID).
		Str("practitioner_id", d.PractitionerID).
		Str("service_id", d.ServiceID).
		Str("date", appt.Date).
		Str("time", appt.Time).
		Msg("appointment requested")

	e.notifier.Notify(ctx, notify.Event{
		Kind:          notify.KindAppointmentRequested,
		AppointmentID: appt.ID,
		Title:         "Appointment Requested!",
		Description:   "Your appointment request has been submitted and is pending confirmation.",
		Variant:       "success",
		At:            appt.CreatedAt,
	})

	return appt
}

// Cancel moves a Pending or Confirmed appointment to Cancelled. Unknown ids
// and terminal appointments are left alone; the bool reports whether the
// status changed.
func (e *Engine) Cancel(ctx context.Context, id string) bool {
	if _, err := e.transition(ctx, id, EventCancel); err != nil {
		e.logger.Debug().Err(err).Str("appointment_id", id).Msg("cancel ignored")
		return false
	}
	return true
}

// Confirm is driven by the clinic side, never by the patient flow.
func (e *Engine) Confirm(ctx context.Context, id string) (Appointment, error) {
	return e.transition(ctx, id, EventConfirm)
}

// Complete is driven by the clinic side once the visit happened.
func (e *Engine) Complete(ctx context.Context, id string) (Appointment, error) {
	return e.transition(ctx, id, EventComplete)
}

func (e *Engine) transition(ctx context.Context, id string, ev Event) (Appointment, error) {
	i := e.appointments.indexOf(id)
	if i < 0 {
		e.metrics.ObserveTransition(string(ev), "noop")
		return Appointment{}, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}

	from := e.appointments.items[i].Status
	to, ok := Next(from, ev)
	if !ok {
		e.metrics.ObserveTransition(string(ev), "rejected")
		return Appointment{}, fmt.Errorf("%w: %s from %s", ErrInvalidStatusTransition, ev, from)
	}

	updated := e.appointments.setStatus(i, to)
	e.metrics.ObserveTransition(string(ev), "applied")

	e.logger.Info().
		Str("appointment_id", id).
		Str("event", string(ev)).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("appointment status changed")

	a := transitionAcks[ev]
	e.notifier.Notify(ctx, notify.Event{
		Kind:          a.kind,
		AppointmentID: id,
		Title:         a.title,
		Description:   fmt.Sprintf(a.description, id),
		Variant:       a.variant,
		At:            e.now(),
	})

	return updated, nil
}

func (e *Engine) nextID() string {
	for {
		e.seq++
		id := strconv.FormatInt(e.seq, 10)
		if e.appointments.indexOf(id) < 0 {
			return id
		}
	}
}
