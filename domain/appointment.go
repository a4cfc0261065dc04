package domain

// Appointment statuses.
const (
	AppointmentScheduled = "Scheduled"
	AppointmentConfirmed = "Confirmed"
	AppointmentCancelled = "Cancelled"
	AppointmentCompleted = "Completed"
)

// AppointmentStatuses lists every accepted value for appointments.status.
var AppointmentStatuses = []string{
	AppointmentScheduled,
	AppointmentConfirmed,
	AppointmentCancelled,
	AppointmentCompleted,
}

type Appointment struct {
	ID                  int64   `db:"id" json:"id"`
	PatientID           int64   `db:"patient_id" json:"patient_id"`
	DoctorID            int64   `db:"doctor_id" json:"doctor_id"`
	AppointmentDatetime string  `db:"appointment_datetime" json:"appointment_datetime"`
	Status              string  `db:"status" json:"status"`
	Notes               *string `db:"notes" json:"notes,omitempty"`
	CreatedAt           string  `db:"created_at" json:"created_at"`
	UpdatedAt           string  `db:"updated_at" json:"updated_at"`
}
