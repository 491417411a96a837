package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"medihelp-server/internal/models"
	"medihelp-server/internal/notifier"
	"medihelp-server/internal/utils"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDirectory struct {
	mu     sync.Mutex
	roles  map[string]models.Role
	tokens map[string]string
}

func (f *fakeDirectory) LookupRole(_ context.Context, userID string) (models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[userID], nil
}

func (f *fakeDirectory) LookupPushToken(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[userID], nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notifier.Invitation
}

func (f *fakeNotifier) Notify(inv notifier.Invitation) <-chan notifier.Outcome {
	f.mu.Lock()
	f.sent = append(f.sent, inv)
	f.mu.Unlock()
	out := make(chan notifier.Outcome, 1)
	out <- notifier.Outcome{Status: notifier.StatusSent}
	close(out)
	return out
}

func (f *fakeNotifier) invitations() []notifier.Invitation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifier.Invitation(nil), f.sent...)
}

type fakeTokenWriter struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (f *fakeTokenWriter) UpdatePushToken(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokens == nil {
		f.tokens = make(map[string]string)
	}
	f.tokens[userID] = token
	return nil
}

func bearer(t *testing.T, id, name string, role models.Role) string {
	user := &models.User{Name: name, Role: role}
	user.ID = id
	token, err := utils.GenerateAccessToken(user, testSecret, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

// apiResponse mirrors utils.ResponseData with the payload left raw.
type apiResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type screenJSON struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	ChannelName string `json:"channelName"`
}

type sessionJSON struct {
	SessionID string     `json:"sessionId"`
	Screen    screenJSON `json:"screen"`
	UserID    string     `json:"userId"`
	Pending   string     `json:"pending"`
}

func perform(t *testing.T, r http.Handler, method, path, auth string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func decodeSession(t *testing.T, resp apiResponse) sessionJSON {
	t.Helper()
	var s sessionJSON
	require.NoError(t, json.Unmarshal(resp.Data, &s))
	return s
}
