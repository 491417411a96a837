package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medihelp-server/internal/middleware"
	"medihelp-server/internal/models"
	"medihelp-server/internal/utils"
)

// PrescriptionHandler handles prescription requests.
type PrescriptionHandler struct {
	DB *gorm.DB
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(db *gorm.DB) *PrescriptionHandler {
	return &PrescriptionHandler{DB: db}
}

// CreatePrescriptionRequest represents the request body for a prescription.
type CreatePrescriptionRequest struct {
	PatientID string   `json:"patientId" binding:"required"`
	Medicines []string `json:"medicines" binding:"required,min=1"`
	Date      string   `json:"date" binding:"required"`
	Notes     string   `json:"notes"`
}

// CreatePrescription is written by the authenticated doctor.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	var req CreatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, _ := middleware.GetUserIDFromContext(c)

	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	prescription := models.Prescription{
		PatientID: req.PatientID,
		DoctorID:  doctorID,
		Medicines: req.Medicines,
		Date:      req.Date,
		Notes:     req.Notes,
	}
	if err := h.DB.Create(&prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to create prescription: "+err.Error())
		return
	}

	utils.Created(c, "Prescription created successfully", prescription)
}

// GetPrescriptions lists the caller's own prescriptions, or for doctors the
// ones they wrote, optionally narrowed with ?patientId=.
func (h *PrescriptionHandler) GetPrescriptions(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Order("date DESC")
	if role == models.RoleDoctor {
		query = query.Where("doctor_id = ?", userID)
		if patientID := c.Query("patientId"); patientID != "" {
			query = query.Where("patient_id = ?", patientID)
		}
	} else {
		query = query.Where("patient_id = ?", userID)
	}

	var prescriptions []models.Prescription
	if err := query.Find(&prescriptions).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}

	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}
