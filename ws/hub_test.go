package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

func setup(t *testing.T) (*Hub, *utils.TokenManager, *httptest.Server) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	tokens := utils.NewTokenManager("secret", 0, 0)
	h := NewHandler(hub, tokens, nil)

	r := gin.New()
	r.GET("/ws/user", h.HandleUserWebSocket)
	r.GET("/ws/submissions", h.HandleReviewWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, tokens, srv
}

func dial(t *testing.T, srv *httptest.Server, path, token string) (*websocket.Conn, *http.Response, error) {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + path + "?token=" + token
	return websocket.DefaultDialer.Dial(u, nil)
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestUserWebSocketReceivesEvents(t *testing.T) {
	hub, tokens, srv := setup(t)
	token, err := tokens.GenerateToken("user-1", models.RoleStudent, "012345678901")
	require.NoError(t, err)

	conn, _, err := dial(t, srv, "/ws/user", token)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "connected", readJSON(t, conn)["type"])
	assert.Equal(t, 1, hub.GetStats()["user_connections"])

	hub.NotifyUser("user-2", map[string]string{"type": "other"})
	hub.NotifyUser("user-1", map[string]string{"type": "submission_status_changed", "submission_id": "s1", "status": "APPROVED"})

	msg := readJSON(t, conn)
	assert.Equal(t, "submission_status_changed", msg["type"])
	assert.Equal(t, "APPROVED", msg["status"])
}

func TestReviewWebSocketRequiresTeacher(t *testing.T) {
	hub, tokens, srv := setup(t)

	studentToken, err := tokens.GenerateToken("user-1", models.RoleStudent, "012345678901")
	require.NoError(t, err)
	_, resp, err := dial(t, srv, "/ws/submissions", studentToken)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = dial(t, srv, "/ws/submissions", "garbage")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	teacherToken, err := tokens.GenerateToken("teacher-1", models.RoleTeacher, "999999999999")
	require.NoError(t, err)
	conn, _, err := dial(t, srv, "/ws/submissions", teacherToken)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "connected", readJSON(t, conn)["type"])
	hub.NotifyReviewers(map[string]string{"type": "submission_list_changed"})
	assert.Equal(t, "submission_list_changed", readJSON(t, conn)["type"])
}

func TestUnregisterCleansUp(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.GetStats()["users"])
	hub.UnregisterUser("nobody", nil)
	hub.UnregisterReviewer(nil)
	hub.SendToUser("nobody", []byte("x"))
	hub.BroadcastReviewers([]byte("x"))
}
