package services

import (
	"log"
	"sync"
)

// Hub 管理所有在线连接与房间订阅关系。
// 所有共享状态由单把互斥锁保护：广播要么看到某个连接，要么看不到，
// 不存在投递到"半拆除"连接的窗口。
type Hub struct {
	mu          sync.Mutex
	clients     map[*Client]struct{}
	rooms       map[string]map[*Client]struct{} // roomID -> 订阅的连接
	clientRooms map[*Client]map[string]struct{} // 连接 -> 已订阅的 roomID
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]struct{}),
		rooms:       make(map[string]map[*Client]struct{}),
		clientRooms: make(map[*Client]map[string]struct{}),
	}
}

// Register 注册新连接
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	log.Printf("🟢 Client connected: %s (user %s)", client.ConnectionID, client.UserID)
}

// Unregister 注销连接：从所有房间移除并关闭发送通道。
// 与并发广播互斥，之后的广播不会再尝试投递到该连接。
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	for roomID := range h.clientRooms[client] {
		delete(h.rooms[roomID], client)
		if len(h.rooms[roomID]) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.clientRooms, client)
	delete(h.clients, client)
	close(client.Send)
	log.Printf("🔴 Client disconnected: %s (user %s)", client.ConnectionID, client.UserID)
}

// Join 将连接加入房间，重复加入为 no-op
func (h *Hub) Join(client *Client, roomID string) {
	if roomID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}

	if h.clientRooms[client] == nil {
		h.clientRooms[client] = make(map[string]struct{})
	}
	h.clientRooms[client][roomID] = struct{}{}
}

// Leave 将连接移出房间，重复离开为 no-op
func (h *Hub) Leave(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.clientRooms[client], roomID)
}

// InRoom 判断连接是否已订阅房间
func (h *Hub) InRoom(client *Client, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.rooms[roomID][client]
	return ok
}

// Broadcast 向房间内全部连接投递事件
func (h *Hub) Broadcast(roomID, event string, data interface{}) {
	h.broadcast(roomID, event, data, nil)
}

// BroadcastExcept 向房间内除 except 外的连接投递事件（typing 转发用）
func (h *Hub) BroadcastExcept(roomID, event string, data interface{}, except *Client) {
	h.broadcast(roomID, event, data, except)
}

func (h *Hub) broadcast(roomID, event string, data interface{}, except *Client) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.rooms[roomID] {
		if client == except {
			continue
		}
		h.trySend(client, payload)
	}
}

// SendToClient 向单个连接投递事件（发送方回执、错误上报用）
func (h *Hub) SendToClient(client *Client, event string, data interface{}) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		// 连接已拆除，静默丢弃
		return
	}
	h.trySend(client, payload)
}

// trySend 非阻塞投递；发送缓冲已满的慢连接直接跳过。调用方必须持有 h.mu。
func (h *Hub) trySend(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		log.Printf("⚠️ Send buffer full, dropping event for client %s", client.ConnectionID)
	}
}
