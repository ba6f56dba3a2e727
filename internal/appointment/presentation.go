package appointment

// StatusStyle is what the display layer needs to render a status badge.
type StatusStyle struct {
	Label      string `json:"label"`
	Tone       string `json:"tone"`
	BadgeClass string `json:"badgeClass"`
	// Actionable is true when the card may offer cancel or reschedule.
	Actionable bool `json:"actionable"`
}

var statusStyles = map[Status]StatusStyle{
	StatusConfirmed: {
		Label:      "Confirmed",
		Tone:       "success",
		BadgeClass: "bg-green-100 text-green-700 border-green-300",
		Actionable: true,
	},
	StatusPending: {
		Label:      "Pending",
		Tone:       "warning",
		BadgeClass: "bg-yellow-100 text-yellow-700 border-yellow-300",
		Actionable: true,
	},
	StatusCancelled: {
		Label:      "Cancelled",
		Tone:       "danger",
		BadgeClass: "bg-red-100 text-red-600 border-red-300",
	},
	StatusCompleted: {
		Label:      "Completed",
		Tone:       "info",
		BadgeClass: "bg-blue-100 text-blue-700 border-blue-300",
	},
}

var unknownStyle = StatusStyle{
	Tone:       "neutral",
	BadgeClass: "bg-gray-100 text-gray-700 border-gray-300",
}

func Presentation(s Status) StatusStyle {
	if style, ok := statusStyles[s]; ok {
		return style
	}
	style := unknownStyle
	style.Label = string(s)
	return style
}
