package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusDone      AppointmentStatus = "done"
)

// Appointment is a booked slot between a patient and a doctor. Date and Time
// are kept as the strings the client picked from the doctor's slots.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index" json:"patientId"`
	DoctorID  string            `gorm:"size:36;index" json:"doctorId"`
	Date      string            `gorm:"size:20" json:"date"`
	Time      string            `gorm:"size:20" json:"time"`
	Status    AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`

	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}

// IsValid reports whether s is a known appointment status.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDone:
		return true
	}
	return false
}
