package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncomplete is returned by Check when some, but not all, of the lists
// are empty.
var ErrIncomplete = errors.New("catalog is incomplete")

const (
	FallbackPractitionerName = "Doctor"
	FallbackServiceName      = "Consultation"
)

type Practitioner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Service struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TimeSlot is the label of a bookable start time, e.g. "10:00 AM".
type TimeSlot string

// Catalog holds the static reference data offered to the booking form.
// It is never modified after New returns.
type Catalog struct {
	practitioners []Practitioner
	services      []Service
	slots         []TimeSlot

	practitionerIdx map[string]int
	serviceIdx      map[string]int
	slotIdx         map[TimeSlot]struct{}
}

func New(practitioners []Practitioner, services []Service, slots []TimeSlot) *Catalog {
	c := &Catalog{
		practitioners:   append([]Practitioner(nil), practitioners...),
		services:        append([]Service(nil), services...),
		slots:           append([]TimeSlot(nil), slots...),
		practitionerIdx: make(map[string]int, len(practitioners)),
		serviceIdx:      make(map[string]int, len(services)),
		slotIdx:         make(map[TimeSlot]struct{}, len(slots)),
	}

	for i, p := range c.practitioners {
		c.practitionerIdx[p.ID] = i
	}
	for i, s := range c.services {
		c.serviceIdx[s.ID] = i
	}
	for _, s := range c.slots {
		c.slotIdx[s] = struct{}{}
	}

	return c
}

// Default returns the portal's built-in catalog.
func Default() *Catalog {
	return New(
		[]Practitioner{
			{ID: "dora", Name: "Dr. Dora (General Practice)"},
			{ID: "nobita", Name: "Dr. Nobita (Pediatrics)"},
			{ID: "shizuka", Name: "Dr. Shizuka (Dentistry)"},
			{ID: "gian", Name: "Dr. Gian (Orthopedics)"},
			{ID: "suneo", Name: "Dr. Suneo (Dermatology)"},
		},
		[]Service{
			{ID: "general", Name: "General Checkup"},
			{ID: "dental", Name: "Dental Care"},
			{ID: "eye", Name: "Eye Examination"},
			{ID: "specialist", Name: "Specialist Consultation"},
			{ID: "vaccination", Name: "Vaccination"},
		},
		[]TimeSlot{"09:00 AM", "10:00 AM", "11:00 AM", "01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM"},
	)
}

// Practitioner looks up a practitioner by id. The bool is false when the id
// is unknown.
func (c *Catalog) Practitioner(id string) (Practitioner, bool) {
	i, ok := c.practitionerIdx[id]
	if !ok {
		return Practitioner{}, false
	}
	return c.practitioners[i], true
}

func (c *Catalog) Service(id string) (Service, bool) {
	i, ok := c.serviceIdx[id]
	if !ok {
		return Service{}, false
	}
	return c.services[i], true
}

// PractitionerName resolves a display name, falling back to a generic label.
func (c *Catalog) PractitionerName(id string) string {
	if p, ok := c.Practitioner(id); ok {
		return p.Name
	}
	return FallbackPractitionerName
}

func (c *Catalog) ServiceName(id string) string {
	if s, ok := c.Service(id); ok {
		return s.Name
	}
	return FallbackServiceName
}

func (c *Catalog) HasTimeSlot(label string) bool {
	_, ok := c.slotIdx[TimeSlot(label)]
	return ok
}

func (c *Catalog) Practitioners() []Practitioner {
	return append([]Practitioner(nil), c.practitioners...)
}

func (c *Catalog) Services() []Service {
	return append([]Service(nil), c.services...)
}

// TimeSlots returns the slots in display order.
func (c *Catalog) TimeSlots() []TimeSlot {
	return append([]TimeSlot(nil), c.slots...)
}

func (c *Catalog) Empty() bool {
	return len(c.practitioners) == 0 && len(c.services) == 0 && len(c.slots) == 0
}

// Check reports a catalog that cannot take a booking: every draft needs a
// practitioner, a service and a time slot to pick from. A fully empty
// catalog is not an error; callers fall back to Default for it.
func (c *Catalog) Check() error {
	if c.Empty() {
		return nil
	}

	var missing []string
	if len(c.practitioners) == 0 {
		missing = append(missing, "practitioners")
	}
	if len(c.services) == 0 {
		missing = append(missing, "services")
	}
	if len(c.slots) == 0 {
		missing = append(missing, "time slots")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: no %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
