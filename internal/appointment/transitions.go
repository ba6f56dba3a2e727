package appointment

type Event string

const (
	EventConfirm  Event = "confirm"
	EventCancel   Event = "cancel"
	EventComplete Event = "complete"
)

// InitialStatus is the status of every newly created appointment.
const InitialStatus = StatusPending

// transitions is the full state machine. Terminal states have no entries.
var transitions = map[Status]map[Event]Status{
	StatusPending: {
		EventConfirm: StatusConfirmed,
		EventCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		EventCancel:   StatusCancelled,
		EventComplete: StatusCompleted,
	},
	StatusCancelled: {},
	StatusCompleted: {},
}

// Next returns the status reached by applying ev to from.
func Next(from Status, ev Event) (Status, bool) {
	to, ok := transitions[from][ev]
	return to, ok
}

func CanTransition(from Status, ev Event) bool {
	_, ok := Next(from, ev)
	return ok
}
