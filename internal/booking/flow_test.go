package booking

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/patient-portal-scheduling/internal/appointment"
	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/metrics"
)

type flowFixture struct {
	flow *Flow
	form *Form
	coll *appointment.Collection
}

func newFlowFixture(t *testing.T) flowFixture {
	t.Helper()
	cat := catalog.Default()
	v := newTestValidator()
	m := metrics.NewBookingMetrics(prometheus.NewRegistry())
	coll := appointment.NewCollection(appointment.SampleAppointments()...)
	engine := appointment.NewEngine(coll, cat, nil, m, zerolog.Nop())
	form := NewForm(v)
	return flowFixture{
		flow: NewFlow(v, cat, engine, form, m, zerolog.Nop()),
		form: form,
		coll: coll,
	}
}

func TestProposeThenDiscardLeavesCollectionUnchanged(t *testing.T) {
	fx := newFlowFixture(t)
	before := fx.coll.Snapshot()

	_, err := fx.flow.Propose(validDraft())
	require.NoError(t, err)
	assert.True(t, fx.flow.Discard())

	assert.Equal(t, before, fx.coll.Snapshot())
	_, held := fx.flow.Pending()
	assert.False(t, held)
	assert.False(t, fx.flow.Discard(), "nothing left to discard")
}

func TestProposeThenConfirmAppendsOnePending(t *testing.T) {
	fx := newFlowFixture(t)
	before := fx.coll.Len()

	_, err := fx.flow.Propose(validDraft())
	require.NoError(t, err)

	appt, err := fx.flow.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, before+1, fx.coll.Len())
	assert.Equal(t, appointment.StatusPending, appt.Status)
	assert.Equal(t, "10:00 AM", appt.Time)

	_, held := fx.flow.Pending()
	assert.False(t, held)

	_, err = fx.flow.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingProposal)
	assert.Equal(t, before+1, fx.coll.Len())
}

func TestBookingScenarioLandsInUpcoming(t *testing.T) {
	fx := newFlowFixture(t)

	d := appointment.Draft{
		PractitionerID: "dora",
		ServiceID:      "general",
		Date:           now.AddDate(0, 0, 1),
		TimeSlot:       "10:00 AM",
		Reason:         "",
	}
	require.True(t, newTestValidator().Validate(d).Valid())

	_, err := fx.flow.Propose(d)
	require.NoError(t, err)
	appt, err := fx.flow.Confirm(context.Background())
	require.NoError(t, err)

	views := appointment.Partition(fx.coll.Snapshot())
	assert.Equal(t, appt.ID, views.Upcoming[0].ID)
	for _, h := range views.History {
		assert.NotEqual(t, appt.ID, h.ID)
	}
}

func TestProposeRejectsInvalidDraft(t *testing.T) {
	fx := newFlowFixture(t)

	d := validDraft()
	d.ServiceID = ""
	_, err := fx.flow.Propose(d)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please select a service.", verr.Fields[FieldServiceID])

	_, held := fx.flow.Pending()
	assert.False(t, held)
}

func TestOnlyOneProposalInFlight(t *testing.T) {
	fx := newFlowFixture(t)

	_, err := fx.flow.Propose(validDraft())
	require.NoError(t, err)

	other := validDraft()
	other.TimeSlot = "04:00 PM"
	_, err = fx.flow.Propose(other)
	assert.ErrorIs(t, err, ErrProposalInFlight)

	p, held := fx.flow.Pending()
	require.True(t, held)
	assert.Equal(t, "10:00 AM", p.TimeSlot)
}

func TestConfirmResetsFormAndDiscardKeepsIt(t *testing.T) {
	fx := newFlowFixture(t)

	_, _ = fx.form.Set(FieldPractitionerID, "shizuka")
	_, _ = fx.form.Set(FieldServiceID, "dental")
	_, _ = fx.form.Set(FieldDate, "2026-10-20")
	_, _ = fx.form.Set(FieldTimeSlot, "02:00 PM")
	_, _ = fx.form.Set(FieldReason, "Cleaning")

	p, err := fx.flow.Submit()
	require.NoError(t, err)
	assert.Equal(t, "Dr. Shizuka (Dentistry)", p.PractitionerName)
	assert.Equal(t, "Dental Care", p.ServiceName)
	assert.Equal(t, "Tuesday, October 20, 2026", p.Date)
	assert.Equal(t, "Cleaning", p.Reason)

	assert.True(t, fx.flow.Discard())
	assert.Equal(t, "shizuka", fx.form.Draft().PractitionerID, "discard leaves the form alone")

	_, err = fx.flow.Submit()
	require.NoError(t, err)
	appt, err := fx.flow.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Cleaning", appt.Reason)
	assert.Equal(t, appointment.Draft{}, fx.form.Draft(), "confirm resets the form")
}

func TestPendingResolvesFallbackLabels(t *testing.T) {
	fx := newFlowFixture(t)

	d := validDraft()
	d.PractitionerID = "house"
	_, err := fx.flow.Propose(d)
	require.NoError(t, err)

	p, held := fx.flow.Pending()
	require.True(t, held)
	assert.Equal(t, "Doctor", p.PractitionerName)
	assert.Equal(t, "house", p.Draft.PractitionerID, "raw ids are kept")
}
