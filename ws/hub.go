package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub giữ các kết nối theo user (sinh viên nhận kết quả duyệt) và kết nối của
// trang duyệt hồ sơ (giảng viên nhận tín hiệu danh sách thay đổi).
type Hub struct {
	UserClients   map[string]map[*websocket.Conn]*Client
	ReviewClients map[*websocket.Conn]*Client
	Mutex         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		UserClients:   make(map[string]map[*websocket.Conn]*Client),
		ReviewClients: make(map[*websocket.Conn]*Client),
	}
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

func (h *Hub) RegisterUser(userID string, conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.UserClients[userID]; !ok {
		h.UserClients[userID] = make(map[*websocket.Conn]*Client)
	}
	client := newClient(conn)
	h.UserClients[userID][conn] = client

	go writePump(client)
	return client
}

func (h *Hub) UnregisterUser(userID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.UserClients[userID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.UserClients, userID)
		}
	}
}

func (h *Hub) RegisterReviewer(conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := newClient(conn)
	h.ReviewClients[conn] = client

	go writePump(client)
	return client
}

func (h *Hub) UnregisterReviewer(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.ReviewClients[conn]; ok {
		close(client.Send)
		delete(h.ReviewClients, conn)
	}
}

// SendToUser đẩy data tới mọi kết nối của userID; client đầy hàng đợi thì bỏ qua.
func (h *Hub) SendToUser(userID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.UserClients[userID] {
		select {
		case client.Send <- data:
		default:
		}
	}
}

func (h *Hub) BroadcastReviewers(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.ReviewClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// NotifyUser gửi payload dạng JSON cho userID.
func (h *Hub) NotifyUser(userID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	h.SendToUser(userID, data)
}

// NotifyReviewers gửi payload dạng JSON cho các trang duyệt đang mở.
func (h *Hub) NotifyReviewers(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	h.BroadcastReviewers(data)
}

func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	userConns := 0
	for _, clients := range h.UserClients {
		userConns += len(clients)
	}
	return map[string]int{
		"users":            len(h.UserClients),
		"user_connections": userConns,
		"reviewers":        len(h.ReviewClients),
	}
}

func writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
