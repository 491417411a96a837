package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medihelp-server/internal/middleware"
	"medihelp-server/internal/models"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *gorm.DB) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return mock, db
}

func setupDirectoryRouter(db *gorm.DB) *gin.Engine {
	users := NewUserHandler(db)
	appointments := NewAppointmentHandler(db)
	prescriptions := NewPrescriptionHandler(db)

	r := gin.New()
	private := r.Group("", middleware.AuthMiddleware(testSecret))
	private.GET("/doctors", users.GetDoctors)
	private.GET("/patients", middleware.RoleAuthMiddleware(models.RoleDoctor), users.GetPatients)
	private.POST("/appointments", middleware.RoleAuthMiddleware(models.RolePatient), appointments.CreateAppointment)
	private.PATCH("/appointments/:id/status", middleware.RoleAuthMiddleware(models.RoleDoctor), appointments.UpdateAppointmentStatus)
	private.GET("/prescriptions", prescriptions.GetPrescriptions)
	return r
}

func TestGetDoctors(t *testing.T) {
	mock, db := setupMockDB(t)
	r := setupDirectoryRouter(db)

	rows := sqlmock.NewRows([]string{"id", "name", "specialty", "available_slots", "reviews"}).
		AddRow("d-1", "Dr. Lee", "Cardiology", `["09:00","10:00"]`, `[]`)
	mock.ExpectQuery("SELECT \\* FROM `doctors` WHERE specialty = \\? ORDER BY name").
		WithArgs("Cardiology").
		WillReturnRows(rows)

	w, resp := perform(t, r, http.MethodGet, "/doctors?specialty=Cardiology", bearer(t, "p-1", "Pat", models.RolePatient), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doctors []models.Doctor
	require.NoError(t, json.Unmarshal(resp.Data, &doctors))
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Lee", doctors[0].Name)
	assert.Equal(t, []string{"09:00", "10:00"}, doctors[0].AvailableSlots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPatients_SanitizedAndDoctorOnly(t *testing.T) {
	mock, db := setupMockDB(t)
	r := setupDirectoryRouter(db)

	w, _ := perform(t, r, http.MethodGet, "/patients", bearer(t, "p-1", "Pat", models.RolePatient), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	rows := sqlmock.NewRows([]string{"id", "email", "password", "name", "role", "fcm_token"}).
		AddRow("p-1", "pat@example.com", "hash", "Pat", "patient", "device")
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE role = \\?").
		WithArgs(models.RolePatient).
		WillReturnRows(rows)

	w, resp := perform(t, r, http.MethodGet, "/patients", bearer(t, "d-1", "Dr. Lee", models.RoleDoctor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(resp.Data), "hash")
	assert.NotContains(t, string(resp.Data), "device")
	assert.Contains(t, string(resp.Data), "pat@example.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAppointment_UnknownDoctor(t *testing.T) {
	mock, db := setupMockDB(t)
	r := setupDirectoryRouter(db)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\? AND role = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w, _ := perform(t, r, http.MethodPost, "/appointments", bearer(t, "p-1", "Pat", models.RolePatient), CreateAppointmentRequest{
		DoctorID: "d-404",
		Date:     "2026-10-20",
		Time:     "09:00",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAppointment_Validation(t *testing.T) {
	_, db := setupMockDB(t)
	r := setupDirectoryRouter(db)

	w, resp := perform(t, r, http.MethodPost, "/appointments", bearer(t, "p-1", "Pat", models.RolePatient), map[string]string{"doctorId": "d-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error, "Date")
}

func TestUpdateAppointmentStatus_OtherDoctorForbidden(t *testing.T) {
	mock, db := setupMockDB(t)
	r := setupDirectoryRouter(db)

	rows := sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "date", "time", "status"}).
		AddRow("a-1", "p-1", "d-1", "2026-10-20", "09:00", "pending")
	mock.ExpectQuery("SELECT \\* FROM `appointments` WHERE id = \\?").WillReturnRows(rows)

	w, _ := perform(t, r, http.MethodPatch, "/appointments/a-1/status", bearer(t, "d-2", "Dr. Other", models.RoleDoctor), UpdateStatusRequest{Status: models.StatusConfirmed})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = perform(t, r, http.MethodPatch, "/appointments/a-1/status", bearer(t, "d-1", "Dr. Lee", models.RoleDoctor), UpdateStatusRequest{Status: "cancelled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPrescriptions_DoctorFiltersByPatient(t *testing.T) {
	mock, db := setupMockDB(t)
	r := setupDirectoryRouter(db)

	rows := sqlmock.NewRows([]string{"id", "patient_id", "doctor_id", "medicines", "date", "notes"}).
		AddRow("rx-1", "p-5", "d-1", `["Ibuprofen"]`, "2026-10-01", "after meals")
	mock.ExpectQuery("SELECT \\* FROM `prescriptions` WHERE doctor_id = \\? AND patient_id = \\? ORDER BY date DESC").
		WithArgs("d-1", "p-5").
		WillReturnRows(rows)

	w, resp := perform(t, r, http.MethodGet, "/prescriptions?patientId=p-5", bearer(t, "d-1", "Dr. Lee", models.RoleDoctor), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Prescription
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Ibuprofen"}, got[0].Medicines)
	assert.NoError(t, mock.ExpectationsWereMet())
}
