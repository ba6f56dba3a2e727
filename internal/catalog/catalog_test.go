package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLookups(t *testing.T) {
	c := Default()

	p, ok := c.Practitioner("dora")
	require.True(t, ok)
	assert.Equal(t, "Dr. Dora (General Practice)", p.Name)

	s, ok := c.Service("general")
	require.True(t, ok)
	assert.Equal(t, "General Checkup", s.Name)

	_, ok = c.Practitioner("unknown")
	assert.False(t, ok)
	_, ok = c.Service("")
	assert.False(t, ok)
}

func TestFallbackNames(t *testing.T) {
	c := Default()

	assert.Equal(t, "Dr. Gian (Orthopedics)", c.PractitionerName("gian"))
	assert.Equal(t, FallbackPractitionerName, c.PractitionerName("house"))
	assert.Equal(t, "Vaccination", c.ServiceName("vaccination"))
	assert.Equal(t, FallbackServiceName, c.ServiceName("surgery"))
}

func TestTimeSlotsOrderedAndCopied(t *testing.T) {
	c := Default()

	slots := c.TimeSlots()
	require.Len(t, slots, 7)
	assert.Equal(t, TimeSlot("09:00 AM"), slots[0])
	assert.Equal(t, TimeSlot("04:00 PM"), slots[6])

	slots[0] = "mutated"
	assert.Equal(t, TimeSlot("09:00 AM"), c.TimeSlots()[0])

	assert.True(t, c.HasTimeSlot("10:00 AM"))
	assert.False(t, c.HasTimeSlot("10:30 AM"))
}

func TestNewCopiesInput(t *testing.T) {
	ps := []Practitioner{{ID: "a", Name: "Dr. A"}}
	c := New(ps, nil, nil)
	ps[0].Name = "changed"

	assert.Equal(t, "Dr. A", c.PractitionerName("a"))
	assert.False(t, c.Empty())
	assert.True(t, New(nil, nil, nil).Empty())
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Default().Check())
	assert.NoError(t, New(nil, nil, nil).Check())

	partial := New(
		[]Practitioner{{ID: "dora", Name: "Dr. Dora"}},
		[]Service{{ID: "general", Name: "General Checkup"}},
		nil,
	)
	err := partial.Check()
	require.ErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "time slots")
	assert.NotContains(t, err.Error(), "services")

	err = New(nil, nil, []TimeSlot{"09:00 AM"}).Check()
	require.ErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "practitioners, services")
}
