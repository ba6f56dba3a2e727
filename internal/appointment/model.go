package appointment

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

// Statuses lists every status an appointment can carry.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown appointment status: %q", s)
	}
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type Appointment struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Status           Status    `json:"status"`
	ConsultationType string    `json:"consultationType"`
	PractitionerName string    `json:"practitionerName"`
	Location         *string   `json:"location,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Draft is an unsaved booking request. A zero Date means no date selected.
type Draft struct {
	PractitionerID string    `json:"practitionerId" validate:"required"`
	ServiceID      string    `json:"serviceId" validate:"required"`
	Date           time.Time `json:"date"`
	TimeSlot       string    `json:"timeSlot"`
	Reason         string    `json:"reason" validate:"max=200"`
}

const (
	longDateLayout    = "January 2, 2006"
	weekdayDateLayout = "Monday, January 2, 2006"
)

// FormatLongDate renders a calendar day the way appointment cards show it.
func FormatLongDate(t time.Time) string {
	return t.Format(longDateLayout)
}

// FormatWeekdayDate is the confirmation dialog variant with the weekday.
func FormatWeekdayDate(t time.Time) string {
	return t.Format(weekdayDateLayout)
}
