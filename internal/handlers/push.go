package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medihelp-server/internal/middleware"
	"medihelp-server/internal/notifier"
	"medihelp-server/internal/receiver"
	"medihelp-server/internal/router"
	"medihelp-server/internal/session"
	"medihelp-server/internal/utils"
)

// PushHandler is the device side of push delivery: inbound messages, the
// notification tray and token rotation.
type PushHandler struct {
	Receiver *receiver.Service
	Sessions *session.Manager
	Logger   *zap.Logger
}

// NewPushHandler creates a new PushHandler.
func NewPushHandler(rcv *receiver.Service, sessions *session.Manager, logger *zap.Logger) *PushHandler {
	return &PushHandler{Receiver: rcv, Sessions: sessions, Logger: logger}
}

// PushMessageRequest carries one inbound push. ForegroundSessionID names the
// session currently on screen, if any.
type PushMessageRequest struct {
	Message             receiver.Message `json:"message"`
	ForegroundSessionID string           `json:"foregroundSessionId"`
}

// PushMessageResponse reports what the receiver did with a push.
type PushMessageResponse struct {
	Notification *receiver.Notification `json:"notification,omitempty"`
	Session      *router.Snapshot       `json:"session,omitempty"`
}

// ReceiveMessage posts a local notification for the caller and, when a
// foreground session is named and the push carries a call channel, moves that
// session onto the call screen. Only a session signed in as the caller is
// moved.
func (h *PushHandler) ReceiveMessage(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req PushMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	n, err := h.Receiver.HandleMessage(c.Request.Context(), userID, req.Message)
	if err != nil {
		h.Logger.Error("Inbound push failed", zap.String("user_id", userID), zap.Error(err))
		utils.InternalServerError(c, err.Error())
		return
	}

	resp := PushMessageResponse{Notification: n}
	channel := req.Message.Data[notifier.ChannelNameKey]
	if n != nil && channel != "" && req.ForegroundSessionID != "" {
		resp.Session = h.foregroundCall(c, userID, req.ForegroundSessionID, channel)
	}

	utils.Success(c, "Push received", resp)
}

func (h *PushHandler) foregroundCall(c *gin.Context, userID, sessionID, channel string) *router.Snapshot {
	r, err := h.Sessions.Get(sessionID)
	if err != nil {
		return nil
	}

	ctx := c.Request.Context()
	current, err := r.Snapshot(ctx)
	if err != nil {
		return nil
	}
	if current.UserID != userID {
		h.Logger.Warn("Foreground session belongs to another user",
			zap.String("user_id", userID),
			zap.String("session_id", sessionID),
		)
		return nil
	}

	snap, err := r.Dispatch(ctx, router.Event{Type: router.EventIncomingCall, Channel: channel})
	if err != nil {
		h.Logger.Warn("Foreground call transition failed", zap.Error(err))
		return nil
	}
	return &snap
}

// ListNotifications returns the caller's unopened notifications.
func (h *PushHandler) ListNotifications(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	ns, err := h.Receiver.Notifications(c.Request.Context(), userID)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.Success(c, "Notifications fetched successfully", ns)
}

// OpenNotification is the tap on a notification: it is removed from the tray
// and the app is relaunched with its call channel as the deep link.
func (h *PushHandler) OpenNotification(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	n, err := h.Receiver.Open(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, receiver.ErrNotificationNotFound) {
			utils.NotFound(c, "Notification not found")
			return
		}
		utils.InternalServerError(c, err.Error())
		return
	}

	id, r := h.Sessions.Launch(n.ChannelName)
	snap, err := r.Snapshot(c.Request.Context())
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.Created(c, "Session launched from notification", SessionResponse{SessionID: id, Snapshot: snap})
}

// TokenRequest carries a rotated registration token.
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// TokenResponse reports whether the token was written.
type TokenResponse struct {
	Updated bool `json:"updated"`
}

// RotateToken stores a rotated device token on the signed-in user's record.
// The write is best effort: failures are logged and reported, not retried.
func (h *PushHandler) RotateToken(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req TokenRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, err := h.Receiver.RotateToken(c.Request.Context(), userID, req.Token)
	if err != nil {
		utils.Accepted(c, "Token write failed", TokenResponse{Updated: false})
		return
	}
	utils.Accepted(c, "Token rotation processed", TokenResponse{Updated: updated})
}
