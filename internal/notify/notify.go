package notify

import (
	"context"
	"sync"
	"time"
)

type Kind string

const (
	KindAppointmentRequested Kind = "appointment.requested"
	KindAppointmentCancelled Kind = "appointment.cancelled"
	KindAppointmentConfirmed Kind = "appointment.confirmed"
	KindAppointmentCompleted Kind = "appointment.completed"
)

// Event is a user-facing acknowledgment for the toast surface. Nothing the
// surface does with it flows back into the booking core.
type Event struct {
	Kind          Kind      `json:"kind"`
	SessionID     string    `json:"session_id,omitempty"`
	AppointmentID string    `json:"appointment_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Variant       string    `json:"variant"`
	At            time.Time `json:"at"`
}

// Notifier delivers acknowledgments. Implementations must not block the
// caller for long and must swallow their own errors.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Multi fans an event out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, ev)
		}
	}
}

// WithSession stamps every event with the owning session id.
func WithSession(n Notifier, sessionID string) Notifier {
	return sessionNotifier{next: n, sessionID: sessionID}
}

type sessionNotifier struct {
	next      Notifier
	sessionID string
}

func (s sessionNotifier) Notify(ctx context.Context, ev Event) {
	ev.SessionID = s.sessionID
	s.next.Notify(ctx, ev)
}

// Recorder keeps events in memory until drained.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Drain returns the recorded events and forgets them.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}
