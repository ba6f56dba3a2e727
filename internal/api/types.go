package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/patient-portal-scheduling/internal/appointment"
	"github.com/hackgods/patient-portal-scheduling/internal/booking"
	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
)

type FieldChangeRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type DraftRequest struct {
	PractitionerID string `json:"practitionerId"`
	ServiceID      string `json:"serviceId"`
	Date           string `json:"date"`
	TimeSlot       string `json:"timeSlot"`
	Reason         string `json:"reason"`
}

func (r DraftRequest) toDraft() (appointment.Draft, error) {
	date, err := booking.ParseDate(r.Date)
	if err != nil {
		return appointment.Draft{}, err
	}
	return appointment.Draft{
		PractitionerID: r.PractitionerID,
		ServiceID:      r.ServiceID,
		Date:           date,
		TimeSlot:       r.TimeSlot,
		Reason:         r.Reason,
	}, nil
}

type SessionResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type AppointmentResponse struct {
	appointment.Appointment
	Style appointment.StatusStyle `json:"style"`
}

type AppointmentsResponse struct {
	Upcoming []AppointmentResponse `json:"upcoming"`
	History  []AppointmentResponse `json:"history"`
}

type CancelResponse struct {
	ID        string               `json:"id"`
	Cancelled bool                 `json:"cancelled"`
	Current   *AppointmentResponse `json:"appointment,omitempty"`
}

type CatalogResponse struct {
	Practitioners []catalog.Practitioner `json:"practitioners"`
	Services      []catalog.Service      `json:"services"`
	TimeSlots     []catalog.TimeSlot     `json:"timeSlots"`
}

type ErrorResponse struct {
	Error   string              `json:"error"`
	Details string              `json:"details,omitempty"`
	Fields  booking.FieldErrors `json:"fields,omitempty"`
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{Appointment: a, Style: appointment.Presentation(a.Status)}
}

func toAppointmentResponses(as []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(as))
	for _, a := range as {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
