package models

// Doctor is the public profile listed on the doctor selection screen. Its ID
// is the doctor's user ID.
type Doctor struct {
	BaseModel
	Name           string   `gorm:"size:200" json:"name"`
	Specialty      string   `gorm:"size:100" json:"specialty"`
	AvailableSlots []string `gorm:"serializer:json;type:text" json:"availableSlots"`
	Reviews        []string `gorm:"serializer:json;type:text" json:"reviews"`
}
