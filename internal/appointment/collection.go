package appointment

// Collection is the ordered appointment list of one session, most recently
// created first. Readers only ever see copies; the Engine is the only writer.
type Collection struct {
	items []Appointment
}

func NewCollection(seed ...Appointment) *Collection {
	return &Collection{items: append([]Appointment(nil), seed...)}
}

func (c *Collection) Snapshot() []Appointment {
	return append([]Appointment(nil), c.items...)
}

func (c *Collection) Get(id string) (Appointment, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return Appointment{}, false
	}
	return c.items[i], true
}

func (c *Collection) Len() int {
	return len(c.items)
}

func (c *Collection) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) prepend(a Appointment) {
	c.items = append([]Appointment{a}, c.items...)
}

func (c *Collection) setStatus(i int, s Status) Appointment {
	c.items[i].Status = s
	return c.items[i]
}
