package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/metrics"
	"github.com/hackgods/patient-portal-scheduling/internal/notify"
	"github.com/hackgods/patient-portal-scheduling/internal/session"
)

var testNow = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	cat := catalog.Default()
	store := session.NewStore(session.Deps{
		Catalog:     cat,
		Metrics:     metrics.NewBookingMetrics(reg),
		Logger:      zerolog.Nop(),
		Now:         func() time.Time { return testNow },
		SeedSamples: true,
	})
	return NewRouter(RouterConfig{
		Store:          store,
		Catalog:        cat,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         zerolog.Nop(),
		Env:            "test",
		Version:        "dev",
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	return "/sessions/" + decode[SessionResponse](t, rec).ID.String()
}

func TestBookingOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	base := newSession(t, h)

	rec := do(t, h, http.MethodPatch, base+"/form", FieldChangeRequest{Field: "timeSlot", Value: "10:00 AM"})
	assert.Equal(t, http.StatusConflict, rec.Code, "slot is locked before a date is picked")

	for _, change := range []FieldChangeRequest{
		{Field: "practitionerId", Value: "dora"},
		{Field: "serviceId", Value: "general"},
		{Field: "date", Value: "2026-10-17"},
		{Field: "timeSlot", Value: "10:00 AM"},
	} {
		rec = do(t, h, http.MethodPatch, base+"/form", change)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	state := decode[session.FormState](t, rec)
	assert.Empty(t, state.Errors)
	assert.True(t, state.TimeSlotEnabled)

	rec = do(t, h, http.MethodPost, base+"/form/submit", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, base+"/form/submit", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, base+"/proposal", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Saturday, October 17, 2026")

	rec = do(t, h, http.MethodPost, base+"/proposal/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[AppointmentResponse](t, rec)
	assert.Equal(t, "Pending", string(created.Status))
	assert.Equal(t, "10:00 AM", created.Time)
	assert.True(t, created.Style.Actionable)

	rec = do(t, h, http.MethodGet, base+"/appointments", nil)
	views := decode[AppointmentsResponse](t, rec)
	require.NotEmpty(t, views.Upcoming)
	assert.Equal(t, created.ID, views.Upcoming[0].ID)
	for _, a := range views.History {
		assert.NotEqual(t, created.ID, a.ID)
	}

	rec = do(t, h, http.MethodGet, base+"/notifications", nil)
	acks := decode[[]notify.Event](t, rec)
	require.Len(t, acks, 1)
	assert.Equal(t, "Appointment Requested!", acks[0].Title)
}

func TestProposeInvalidDraft(t *testing.T) {
	h := newTestRouter(t)
	base := newSession(t, h)

	rec := do(t, h, http.MethodPost, base+"/proposal", DraftRequest{
		PractitionerID: "dora",
		Date:           "2026-10-10",
		TimeSlot:       "09:00 AM",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Equal(t, "Please select a service.", resp.Fields["serviceId"])
	assert.Equal(t, "Appointment date cannot be in the past.", resp.Fields["date"])

	rec = do(t, h, http.MethodPost, base+"/proposal", DraftRequest{Date: "soon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProposeThenDiscard(t *testing.T) {
	h := newTestRouter(t)
	base := newSession(t, h)

	before := do(t, h, http.MethodGet, base+"/appointments", nil).Body.String()

	rec := do(t, h, http.MethodPost, base+"/proposal", DraftRequest{
		PractitionerID: "suneo",
		ServiceID:      "vaccination",
		Date:           "2026-10-15",
		TimeSlot:       "03:00 PM",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodDelete, base+"/proposal", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, base+"/proposal", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, before, do(t, h, http.MethodGet, base+"/appointments", nil).Body.String())
}

func TestCancelIsIdempotentOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	base := newSession(t, h)

	rec := do(t, h, http.MethodPost, base+"/appointments/5/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[CancelResponse](t, rec)
	assert.True(t, first.Cancelled)
	assert.Equal(t, "Cancelled", string(first.Current.Status))

	rec = do(t, h, http.MethodPost, base+"/appointments/5/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[CancelResponse](t, rec)
	assert.False(t, second.Cancelled)
	assert.Equal(t, "Cancelled", string(second.Current.Status))

	rec = do(t, h, http.MethodPost, base+"/appointments/3/cancel", nil)
	assert.Equal(t, "Completed", string(decode[CancelResponse](t, rec).Current.Status))

	rec = do(t, h, http.MethodPost, base+"/appointments/999/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	missing := decode[CancelResponse](t, rec)
	assert.False(t, missing.Cancelled)
	assert.Nil(t, missing.Current)
}

func TestClinicTransitions(t *testing.T) {
	h := newTestRouter(t)
	base := newSession(t, h)

	rec := do(t, h, http.MethodPost, base+"/appointments/5/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Confirmed", string(decode[AppointmentResponse](t, rec).Status))

	rec = do(t, h, http.MethodPost, base+"/appointments/5/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/appointments/5/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/appointments/nope/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionErrors(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/sessions/not-a-uuid/appointments", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/sessions/7b0a4c59-4a63-4f43-9d0c-0f3c4a3e2f11/appointments", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	base := newSession(t, h)
	rec = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, base+"/appointments", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cat := decode[CatalogResponse](t, rec)
	assert.Len(t, cat.Practitioners, 5)
	assert.Len(t, cat.TimeSlots, 7)

	newSession(t, h)
	rec = do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portal_sessions_active 1")
}

func TestRequestIDPropagates(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodGet, "/health/live", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadiness(t *testing.T) {
	h := NewHealthHandler(nil, nil, "test", "dev")
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ReadinessResponse](t, rec)
	assert.Equal(t, "disabled", resp.Dependencies["postgres"])
	assert.Equal(t, "disabled", resp.Dependencies["redis"])

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	h = NewHealthHandler(nil, client, "test", "dev")
	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	resp = decode[ReadinessResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Dependencies["redis"])

	mr.Close()
	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", decode[ReadinessResponse](t, rec).Status)
}
