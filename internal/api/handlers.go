package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/patient-portal-scheduling/internal/appointment"
	"github.com/hackgods/patient-portal-scheduling/internal/booking"
	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/session"
)

const sessionKey contextKey = "session"

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// sessionMiddleware resolves {sid} and puts the session on the context.
func sessionMiddleware(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "sid"))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_session_id", "session id must be a valid UUID")
				return
			}

			sess, err := store.Get(id)
			if err != nil {
				handleSessionError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func catalogHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CatalogResponse{
			Practitioners: cat.Practitioners(),
			Services:      cat.Services(),
			TimeSlots:     cat.TimeSlots(),
		})
	}
}

func createSessionHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := store.Create()
		writeJSON(w, http.StatusCreated, SessionResponse{ID: sess.ID, CreatedAt: sess.CreatedAt})
	}
}

func deleteSessionHandler(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.Delete(sessionFrom(r.Context()).ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func listAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	views := sessionFrom(r.Context()).Views()
	writeJSON(w, http.StatusOK, AppointmentsResponse{
		Upcoming: toAppointmentResponses(views.Upcoming),
		History:  toAppointmentResponses(views.History),
	})
}

func getAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appt, ok := sessionFrom(r.Context()).Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "appointment_not_found", "no appointment with id "+id)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

// cancelAppointmentHandler always answers 200: cancelling an unknown or
// already finished appointment is a no-op, not an error.
func cancelAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	id := chi.URLParam(r, "id")

	resp := CancelResponse{ID: id, Cancelled: sess.Cancel(r.Context(), id)}
	if appt, ok := sess.Get(id); ok {
		current := toAppointmentResponse(appt)
		resp.Current = &current
	}

	writeJSON(w, http.StatusOK, resp)
}

func confirmAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	appt, err := sessionFrom(r.Context()).Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func completeAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	appt, err := sessionFrom(r.Context()).Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func getFormHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).Form())
}

func changeFieldHandler(w http.ResponseWriter, r *http.Request) {
	var req FieldChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	state, err := sessionFrom(r.Context()).SetField(req.Field, req.Value)
	if err != nil {
		handleBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func resetFormHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).ResetForm())
}

func submitFormHandler(w http.ResponseWriter, r *http.Request) {
	proposal, err := sessionFrom(r.Context()).Submit()
	if err != nil {
		handleBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

func proposeHandler(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		handleBookingError(w, err)
		return
	}

	proposal, err := sessionFrom(r.Context()).SubmitDraft(draft)
	if err != nil {
		handleBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

func getProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposal, ok := sessionFrom(r.Context()).Pending()
	if !ok {
		handleBookingError(w, booking.ErrNoPendingProposal)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func confirmProposalHandler(w http.ResponseWriter, r *http.Request) {
	appt, err := sessionFrom(r.Context()).ConfirmPending(r.Context())
	if err != nil {
		handleBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func discardProposalHandler(w http.ResponseWriter, r *http.Request) {
	if !sessionFrom(r.Context()).DiscardPending() {
		handleBookingError(w, booking.ErrNoPendingProposal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func notificationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()).DrainNotifications())
}

func handleSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation_failed",
			Fields: verr.Fields,
		})
	case errors.Is(err, booking.ErrProposalInFlight):
		writeError(w, http.StatusConflict, "proposal_in_flight", err.Error())
	case errors.Is(err, booking.ErrNoPendingProposal):
		writeError(w, http.StatusConflict, "no_pending_proposal", err.Error())
	case errors.Is(err, booking.ErrTimeSlotLocked):
		writeError(w, http.StatusConflict, "time_slot_locked", err.Error())
	case errors.Is(err, booking.ErrUnknownField):
		writeError(w, http.StatusBadRequest, "unknown_field", err.Error())
	case errors.Is(err, booking.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
