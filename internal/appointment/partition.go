package appointment

// Views are the two tabs of the appointments page.
type Views struct {
	Upcoming []Appointment `json:"upcoming"`
	History  []Appointment `json:"history"`
}

// IsUpcoming reports whether an appointment with status s is still ahead of
// the patient. Everything else belongs to history.
func IsUpcoming(s Status) bool {
	return s == StatusPending || s == StatusConfirmed
}

// Partition splits appointments by status, keeping the input order inside
// each view. Every appointment lands in exactly one view.
func Partition(appointments []Appointment) Views {
	v := Views{
		Upcoming: []Appointment{},
		History:  []Appointment{},
	}
	for _, a := range appointments {
		if IsUpcoming(a.Status) {
			v.Upcoming = append(v.Upcoming, a)
		} else {
			v.History = append(v.History, a)
		}
	}
	return v
}
