package models

// Prescription is written by a doctor for a patient.
type Prescription struct {
	BaseModel
	PatientID string   `gorm:"size:36;index" json:"patientId"`
	DoctorID  string   `gorm:"size:36;index" json:"doctorId"`
	Medicines []string `gorm:"serializer:json;type:text" json:"medicines"`
	Date      string   `gorm:"size:20" json:"date"`
	Notes     string   `gorm:"type:text" json:"notes"`

	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
