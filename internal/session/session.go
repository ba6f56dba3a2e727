package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/patient-portal-scheduling/internal/appointment"
	"github.com/hackgods/patient-portal-scheduling/internal/booking"
	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/metrics"
	"github.com/hackgods/patient-portal-scheduling/internal/notify"
)

// Deps are shared by every session of a process.
type Deps struct {
	Catalog     *catalog.Catalog
	Notifier    notify.Notifier
	Metrics     *metrics.BookingMetrics
	Logger      zerolog.Logger
	Now         func() time.Time
	SeedSamples bool
}

// Session is one patient's portal session. It exclusively owns the
// appointment collection and the booking form; every intent takes the
// session lock, so intents run one at a time in arrival order.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu           sync.Mutex
	appointments *appointment.Collection
	engine       *appointment.Engine
	form         *booking.Form
	flow         *booking.Flow
	acks         *notify.Recorder
}

// FormState is a read-only view of the booking form.
type FormState struct {
	Draft           appointment.Draft   `json:"draft"`
	Errors          booking.FieldErrors `json:"errors"`
	TimeSlotEnabled bool                `json:"timeSlotEnabled"`
}

func New(id uuid.UUID, deps Deps) *Session {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	var seed []appointment.Appointment
	if deps.SeedSamples {
		seed = appointment.SampleAppointments()
	}

	acks := notify.NewRecorder()
	var notifier notify.Notifier = acks
	if deps.Notifier != nil {
		notifier = notify.Multi{acks, deps.Notifier}
	}
	notifier = notify.WithSession(notifier, id.String())

	logger := deps.Logger.With().Str("session_id", id.String()).Logger()

	coll := appointment.NewCollection(seed...)
	engine := appointment.NewEngine(coll, deps.Catalog, notifier, deps.Metrics, logger)
	validator := booking.NewValidator(deps.Catalog, now)
	form := booking.NewForm(validator)

	return &Session{
		ID:           id,
		CreatedAt:    now(),
		appointments: coll,
		engine:       engine,
		form:         form,
		flow:         booking.NewFlow(validator, deps.Catalog, engine, form, deps.Metrics, logger),
		acks:         acks,
	}
}

func (s *Session) SetField(field, value string) (FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.form.Set(field, value)
	return s.formState(), err
}

func (s *Session) Form() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formState()
}

func (s *Session) ResetForm() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Reset()
	return s.formState()
}

// Submit proposes the current form contents.
func (s *Session) Submit() (booking.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Submit()
}

// SubmitDraft proposes a draft supplied in one piece by the caller.
func (s *Session) SubmitDraft(d appointment.Draft) (booking.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Propose(d)
}

func (s *Session) Pending() (booking.Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Pending()
}

func (s *Session) ConfirmPending(ctx context.Context) (appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Confirm(ctx)
}

func (s *Session) DiscardPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Discard()
}

// Cancel is idempotent; it reports whether the status changed.
func (s *Session) Cancel(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Cancel(ctx, id)
}

func (s *Session) Confirm(ctx context.Context, id string) (appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Confirm(ctx, id)
}

func (s *Session) Complete(ctx context.Context, id string) (appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Complete(ctx, id)
}

func (s *Session) Get(id string) (appointment.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointments.Get(id)
}

func (s *Session) Snapshot() []appointment.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointments.Snapshot()
}

func (s *Session) Views() appointment.Views {
	return appointment.Partition(s.Snapshot())
}

// DrainNotifications hands pending acknowledgments to the display layer.
func (s *Session) DrainNotifications() []notify.Event {
	events := s.acks.Drain()
	if events == nil {
		events = []notify.Event{}
	}
	return events
}

func (s *Session) formState() FormState {
	return FormState{
		Draft:           s.form.Draft(),
		Errors:          s.form.Errors(),
		TimeSlotEnabled: s.form.TimeSlotEnabled(),
	}
}
