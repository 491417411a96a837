package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// User is the account document read by role resolution and push lookups.
type User struct {
	BaseModel
	Email         string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string  `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Name          string  `gorm:"size:200" json:"name"`
	Role          Role    `gorm:"size:20;default:'patient'" json:"role"`
	HealthHistory string  `gorm:"type:text" json:"healthHistory"`
	FCMToken      *string `gorm:"column:fcm_token;size:255" json:"-"`

	// Relations (not always preloaded)
	DoctorAppointments  []Appointment  `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment  `gorm:"foreignKey:PatientID" json:"-"`
	Prescriptions       []Prescription `gorm:"foreignKey:PatientID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          Role      `json:"role"`
	HealthHistory string    `json:"healthHistory,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		HealthHistory: u.HealthHistory,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// RoleOrDefault returns the stored role, falling back to patient.
func (u *User) RoleOrDefault() Role {
	if u.Role == "" {
		return RolePatient
	}
	return u.Role
}
