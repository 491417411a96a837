// Package receiver turns inbound pushes into local notifications and keeps the
// device's push token in sync with the user's document.
package receiver

import (
	"context"
	"errors"
	"time"
)

// ErrNotificationNotFound is returned when opening a notification that was
// never posted or was already opened.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationChannel is the local channel notifications are posted on.
type NotificationChannel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Importance string `json:"importance"`
}

// DefaultChannel is the single channel the app posts on.
var DefaultChannel = NotificationChannel{
	ID:         "medihelp_channel",
	Name:       "MediHelp Notifications",
	Importance: "default",
}

// DefaultTitle is used when a push carries no title.
const DefaultTitle = "MediHelp"

// Notification is a posted, user-visible notification. ChannelName is the
// deep-link call channel handed to the next launch when it is opened.
type Notification struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channelId"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ChannelName string    `json:"channelName,omitempty"`
	PostedAt    time.Time `json:"postedAt"`
}

// ChannelRegistry records notification channels. Ensure is idempotent and
// reports whether the channel was created by this call.
type ChannelRegistry interface {
	Ensure(ctx context.Context, ch NotificationChannel) (bool, error)
	Channels(ctx context.Context) ([]NotificationChannel, error)
}

// Tray holds posted notifications per user until they are opened.
type Tray interface {
	Post(ctx context.Context, userID string, n Notification) error
	List(ctx context.Context, userID string) ([]Notification, error)
	Take(ctx context.Context, userID, notificationID string) (Notification, error)
}

// TokenWriter persists a rotated push token on the user's document.
type TokenWriter interface {
	UpdatePushToken(ctx context.Context, userID, token string) error
}

// Message mirrors an inbound push as delivered by the gateway.
type Message struct {
	Notification *MessageNotification `json:"notification"`
	Data         map[string]string    `json:"data"`
}

// MessageNotification is the display part of an inbound push.
type MessageNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
