package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormRevalidatesOnEveryChange(t *testing.T) {
	f := NewForm(newTestValidator())
	assert.Empty(t, f.Errors(), "untouched form shows no errors")

	errs, err := f.Set(FieldPractitionerID, "dora")
	require.NoError(t, err)
	assert.NotContains(t, errs, FieldPractitionerID)
	assert.Contains(t, errs, FieldServiceID)

	_, err = f.Set(FieldServiceID, "dental")
	require.NoError(t, err)
	_, err = f.Set(FieldDate, "2026-10-17")
	require.NoError(t, err)
	errs, err = f.Set(FieldTimeSlot, "09:00 AM")
	require.NoError(t, err)

	assert.True(t, errs.Valid(), "unexpected errors: %v", errs)
	assert.Equal(t, "09:00 AM", f.Draft().TimeSlot)
}

func TestFormLocksTimeSlotUntilDate(t *testing.T) {
	f := NewForm(newTestValidator())
	assert.False(t, f.TimeSlotEnabled())

	_, err := f.Set(FieldTimeSlot, "09:00 AM")
	assert.ErrorIs(t, err, ErrTimeSlotLocked)
	assert.Empty(t, f.Draft().TimeSlot)

	_, err = f.Set(FieldDate, "2026-10-20")
	require.NoError(t, err)
	assert.True(t, f.TimeSlotEnabled())

	_, err = f.Set(FieldTimeSlot, "09:00 AM")
	require.NoError(t, err)

	_, err = f.Set(FieldDate, "")
	require.NoError(t, err)
	assert.Empty(t, f.Draft().TimeSlot, "clearing the date clears the slot")
	assert.False(t, f.TimeSlotEnabled())
}

func TestFormRejectsBadInput(t *testing.T) {
	f := NewForm(newTestValidator())

	_, err := f.Set("doctor", "dora")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = f.Set(FieldDate, "next tuesday")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.True(t, f.Draft().Date.IsZero())
}

func TestFormReset(t *testing.T) {
	f := NewForm(newTestValidator())
	_, _ = f.Set(FieldReason, "headache")
	require.NotEmpty(t, f.Errors())

	f.Reset()
	assert.Empty(t, f.Errors())
	assert.Empty(t, f.Draft().Reason)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-10-17")
	require.NoError(t, err)
	assert.Equal(t, 17, d.Day())

	d, err = ParseDate("2026-10-17T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, d.Hour())

	d, err = ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}
