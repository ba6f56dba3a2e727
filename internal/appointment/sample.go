package appointment

import "time"

// SampleAppointments returns the records a new demo session starts with,
// newest first.
func SampleAppointments() []Appointment {
	online := "Online"
	clinic := "Clinic Room 3"
	vision := "Vision Center"
	seeded := time.Date(2024, time.October, 1, 9, 0, 0, 0, time.UTC)

	return []Appointment{
		{ID: "1", Title: "Follow-up with Dr. Dora", Date: "November 5, 2024", Time: "10:00 AM - 10:30 AM", Status: StatusConfirmed, ConsultationType: "General Checkup", PractitionerName: "Dr. Dora", Location: &online, CreatedAt: seeded},
		{ID: "2", Title: "Dental Cleaning", Date: "November 10, 2024", Time: "02:00 PM - 02:45 PM", Status: StatusConfirmed, ConsultationType: "Dental", PractitionerName: "Dr. Shizuka", Location: &clinic, CreatedAt: seeded},
		{ID: "3", Title: "Eye Exam", Date: "October 15, 2024", Time: "09:00 AM - 09:30 AM", Status: StatusCompleted, ConsultationType: "Eye Care", PractitionerName: "Dr. Nobita", Location: &vision, CreatedAt: seeded},
		{ID: "4", Title: "Annual Physical", Date: "September 20, 2024", Time: "11:00 AM - 11:45 AM", Status: StatusCompleted, ConsultationType: "General Checkup", PractitionerName: "Dr. Dora", CreatedAt: seeded},
		{ID: "5", Title: "Specialist Consultation Request", Date: "November 8, 2024", Time: "Pending", Status: StatusPending, ConsultationType: "Cardiology", PractitionerName: "Dr. Dekisugi", CreatedAt: seeded},
	}
}
