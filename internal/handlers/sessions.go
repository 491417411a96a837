package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medihelp-server/internal/middleware"
	"medihelp-server/internal/router"
	"medihelp-server/internal/session"
	"medihelp-server/internal/utils"
)

// SessionHandler exposes the session routers to clients.
type SessionHandler struct {
	Sessions *session.Manager
	Logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Manager, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{Sessions: sessions, Logger: logger}
}

// LaunchRequest is the body of a session launch. ChannelName is set when the
// app is opened from a call notification.
type LaunchRequest struct {
	ChannelName string `json:"channelName"`
}

// SessionResponse wraps a snapshot with its session ID.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	router.Snapshot
}

// EventRequest is one UI action.
type EventRequest struct {
	Type    string `json:"type" binding:"required"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Channel string `json:"channel"`
}

// Launch starts a session.
func (h *SessionHandler) Launch(c *gin.Context) {
	var req LaunchRequest
	// An empty body is a plain launch.
	if c.Request.ContentLength > 0 {
		if !utils.BindAndValidate(c, &req) {
			return
		}
	}

	id, r := h.Sessions.Launch(req.ChannelName)
	snap, err := r.Snapshot(c.Request.Context())
	if err != nil {
		utils.InternalServerError(c, "Failed to read session: "+err.Error())
		return
	}
	utils.Created(c, "Session launched", SessionResponse{SessionID: id, Snapshot: snap})
}

// Get returns the current state of a session.
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	r, ok := h.lookup(c, id)
	if !ok {
		return
	}

	snap, err := r.Snapshot(c.Request.Context())
	if err != nil {
		h.routerError(c, err)
		return
	}
	utils.Success(c, "Session fetched successfully", SessionResponse{SessionID: id, Snapshot: snap})
}

// Dispatch applies one event. loginSucceeded takes the user from the bearer
// token, never from the body.
func (h *SessionHandler) Dispatch(c *gin.Context) {
	id := c.Param("id")
	r, ok := h.lookup(c, id)
	if !ok {
		return
	}

	var req EventRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	eventType, err := router.ParseEventType(req.Type)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	ev := router.Event{Type: eventType, ID: req.ID, Name: req.Name, Channel: req.Channel}
	if eventType == router.EventLoginSucceeded {
		userID, authenticated := middleware.GetUserIDFromContext(c)
		if !authenticated {
			utils.Unauthorized(c, "loginSucceeded requires a bearer token")
			return
		}
		ev.ID, ev.Name = userID, middleware.GetUserNameFromContext(c)
	}

	snap, err := r.Dispatch(c.Request.Context(), ev)
	if err != nil {
		h.routerError(c, err)
		return
	}
	utils.Success(c, "Event applied", SessionResponse{SessionID: id, Snapshot: snap})
}

// End stops a session.
func (h *SessionHandler) End(c *gin.Context) {
	if err := h.Sessions.End(c.Param("id")); err != nil {
		utils.NotFound(c, "Session not found")
		return
	}
	utils.Success(c, "Session ended", nil)
}

func (h *SessionHandler) lookup(c *gin.Context, id string) (*router.Router, bool) {
	r, err := h.Sessions.Get(id)
	if err != nil {
		utils.NotFound(c, "Session not found")
		return nil, false
	}
	return r, true
}

func (h *SessionHandler) routerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, router.ErrUnknownEvent):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, router.ErrEventNotAllowed), errors.Is(err, router.ErrMissingIdentifier):
		utils.Conflict(c, err.Error())
	case errors.Is(err, router.ErrClosed):
		utils.NotFound(c, "Session not found")
	default:
		h.Logger.Error("Session request failed", zap.Error(err))
		utils.InternalServerError(c, err.Error())
	}
}
