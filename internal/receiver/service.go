package receiver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medihelp-server/internal/notifier"
)

// Service handles inbound pushes for signed-in devices.
type Service struct {
	channels ChannelRegistry
	tray     Tray
	tokens   TokenWriter
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a receiver Service.
func NewService(channels ChannelRegistry, tray Tray, tokens TokenWriter, logger *zap.Logger) *Service {
	return &Service{
		channels: channels,
		tray:     tray,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleMessage posts a local notification for msg. Pushes without a
// notification payload are ignored and return nil.
func (s *Service) HandleMessage(ctx context.Context, userID string, msg Message) (*Notification, error) {
	if msg.Notification == nil {
		s.logger.Debug("Push without notification payload ignored", zap.String("user_id", userID))
		return nil, nil
	}

	title := msg.Notification.Title
	if title == "" {
		title = DefaultTitle
	}

	n := Notification{
		ID:          uuid.New().String(),
		ChannelID:   DefaultChannel.ID,
		Title:       title,
		Body:        msg.Notification.Body,
		ChannelName: msg.Data[notifier.ChannelNameKey],
		PostedAt:    s.now().UTC(),
	}
	if err := s.Post(ctx, userID, n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Post ensures the default channel exists and posts n to the user's tray.
func (s *Service) Post(ctx context.Context, userID string, n Notification) error {
	created, err := s.channels.Ensure(ctx, DefaultChannel)
	if err != nil {
		return fmt.Errorf("failed to create notification channel: %w", err)
	}
	if created {
		s.logger.Info("Notification channel created", zap.String("channel_id", DefaultChannel.ID))
	}

	if err := s.tray.Post(ctx, userID, n); err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}

	s.logger.Info("Notification posted",
		zap.String("user_id", userID),
		zap.String("notification_id", n.ID),
		zap.String("channel_name", n.ChannelName),
	)
	return nil
}

// Notifications lists the user's unopened notifications.
func (s *Service) Notifications(ctx context.Context, userID string) ([]Notification, error) {
	return s.tray.List(ctx, userID)
}

// Open removes a notification from the tray and returns it. Its ChannelName
// is the deep link for the relaunch.
func (s *Service) Open(ctx context.Context, userID, notificationID string) (Notification, error) {
	return s.tray.Take(ctx, userID, notificationID)
}

// RotateToken writes a new push token for the signed-in user. It reports
// false without error when nobody is signed in. The write is attempted once.
func (s *Service) RotateToken(ctx context.Context, userID, token string) (bool, error) {
	if userID == "" {
		s.logger.Debug("Token rotation without signed-in user skipped")
		return false, nil
	}

	if err := s.tokens.UpdatePushToken(ctx, userID, token); err != nil {
		s.logger.Warn("Push token write failed", zap.String("user_id", userID), zap.Error(err))
		return false, err
	}
	return true, nil
}
