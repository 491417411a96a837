package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medihelp-server/internal/models"
)

// ErrUserNotFound is returned when no user document exists for an ID.
var ErrUserNotFound = errors.New("user not found")

// UserRepository reads and writes the fields of the users collection that the
// session router and the push receiver depend on.
type UserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db *gorm.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// GetUser loads a user document by ID.
func (r *UserRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return &user, nil
}

// LookupRole returns the role stored on the user's document, patient when the
// field is empty.
func (r *UserRepository) LookupRole(ctx context.Context, userID string) (models.Role, error) {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.RoleOrDefault(), nil
}

// LookupPushToken returns the user's registered push token, empty when none
// has been written yet.
func (r *UserRepository) LookupPushToken(ctx context.Context, userID string) (string, error) {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.FCMToken == nil {
		return "", nil
	}
	return *user.FCMToken, nil
}

// UpdatePushToken overwrites the fcm_token field of the user's document.
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID, token string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("fcm_token", token)
	if res.Error != nil {
		return fmt.Errorf("failed to update push token for %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	r.logger.Debug("Push token updated", zap.String("user_id", userID))
	return nil
}
