package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/cccd-review-backend/models"
	"github.com/vnkhanh/cccd-review-backend/utils"
)

type TokenVerifier interface {
	VerifyToken(tokenString string) (*utils.Claims, error)
}

type Handler struct {
	hub      *Hub
	tokens   TokenVerifier
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, tokens TokenVerifier, allowedOrigins []string) *Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Handler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || origins[origin]
			},
		},
	}
}

func (h *Handler) claimsFromQuery(c *gin.Context) (*utils.Claims, bool) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Thiếu token"})
		return nil, false
	}
	claims, err := h.tokens.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
		return nil, false
	}
	return claims, true
}

func connectedMessage(msg string) []byte {
	data, _ := json.Marshal(gin.H{"type": "connected", "message": msg})
	return data
}

// WebSocket riêng cho user: nhận kết quả duyệt hồ sơ của chính mình
func (h *Handler) HandleUserWebSocket(c *gin.Context) {
	claims, ok := h.claimsFromQuery(c)
	if !ok {
		return
	}
	userID := claims.UserID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}
	log.Printf("User WS connected: userID=%s\n", userID)

	client := h.hub.RegisterUser(userID, conn)
	defer h.hub.UnregisterUser(userID, conn)
	client.Send <- connectedMessage("Connected to user WebSocket")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	log.Printf("User WS disconnected: userID=%s\n", userID)
}

// WebSocket cho trang duyệt hồ sơ, chỉ giảng viên
func (h *Handler) HandleReviewWebSocket(c *gin.Context) {
	claims, ok := h.claimsFromQuery(c)
	if !ok {
		return
	}
	if claims.Role != models.RoleTeacher {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền truy cập tài nguyên này"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade thất bại:", err)
		return
	}
	log.Printf("Review WS connected: userID=%s\n", claims.UserID)

	client := h.hub.RegisterReviewer(conn)
	defer h.hub.UnregisterReviewer(conn)
	client.Send <- connectedMessage("Connected to submission review WebSocket")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	log.Printf("Review WS disconnected: userID=%s\n", claims.UserID)
}
