package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"medihelp-server/internal/config"
	"medihelp-server/internal/middleware"
	"medihelp-server/internal/models"
	"medihelp-server/internal/utils"
)

// AuthHandler is the identity provider: registration, login and the current user.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Logger: logger}
}

// RegisterRequest represents the request body for patient registration.
type RegisterRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	HealthHistory string `json:"healthHistory"`
}

// DoctorRegisterRequest represents the request body for doctor registration.
type DoctorRegisterRequest struct {
	Name           string   `json:"name" binding:"required"`
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required,min=8"`
	Specialty      string   `json:"specialty" binding:"required"`
	AvailableSlots []string `json:"availableSlots"`
}

// Register handles patient registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user := models.User{
		Name:          req.Name,
		Email:         req.Email,
		Role:          models.RolePatient,
		HealthHistory: req.HealthHistory,
	}
	if !h.createUser(c, &user, req.Password, nil) {
		return
	}

	utils.Created(c, "User registered successfully", user.Sanitize())
}

// RegisterDoctor handles doctor registration. The doctor profile shares the
// user's ID.
func (h *AuthHandler) RegisterDoctor(c *gin.Context) {
	var req DoctorRegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user := models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  models.RoleDoctor,
	}
	profile := func(tx *gorm.DB) error {
		doctor := models.Doctor{
			Name:           req.Name,
			Specialty:      req.Specialty,
			AvailableSlots: req.AvailableSlots,
			Reviews:        []string{},
		}
		doctor.ID = user.ID
		return tx.Create(&doctor).Error
	}
	if !h.createUser(c, &user, req.Password, profile) {
		return
	}

	utils.Created(c, "Doctor registered successfully", user.Sanitize())
}

func (h *AuthHandler) createUser(c *gin.Context, user *models.User, password string, extra func(tx *gorm.DB) error) bool {
	var existing models.User
	if err := h.DB.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return false
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return false
	}

	if err := user.SetPassword(password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return false
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if extra != nil {
			return extra(tx)
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return false
	}

	h.Logger.Info("User registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return true
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken string               `json:"accessToken"`
	User        models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	ttl := time.Duration(h.Cfg.JWTExpirationMinutes) * time.Minute
	accessToken, err := utils.GenerateAccessToken(&user, h.Cfg.JWTSecret, ttl)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token: "+err.Error())
		return
	}

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken: accessToken,
		User:        user.Sanitize(),
	})
}

// GetProfile returns the currently authenticated user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}
