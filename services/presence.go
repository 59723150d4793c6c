package services

import (
	"log"
	"sync"
	"time"
)

// LastSeenStore 持久化用户最后在线时间（在线状态本身不落库）
type LastSeenStore interface {
	UpdateLastSeen(userID string, lastSeen time.Time) error
}

// PresenceService 进程内的在线状态表：用户 ID -> 当前追踪的连接。
// 状态机：Offline -> Online（个人房间首个连接加入）-> Offline（该连接断开）。
// 进程重启后从空表重建，持久化的只有用户记录上的 lastSeen。
type PresenceService struct {
	mu     sync.Mutex
	online map[string]*Client
	hub    *Hub
	users  LastSeenStore
}

func NewPresenceService(hub *Hub, users LastSeenStore) *PresenceService {
	return &PresenceService{
		online: make(map[string]*Client),
		hub:    hub,
		users:  users,
	}
}

// Connect 连接加入个人房间并标记在线。
// 同一用户的第二条连接覆盖追踪句柄（last-writer-wins），已在线时不重发上线事件。
func (p *PresenceService) Connect(client *Client) {
	p.hub.Join(client, client.UserID)

	p.mu.Lock()
	_, alreadyOnline := p.online[client.UserID]
	p.online[client.UserID] = client
	p.mu.Unlock()

	if !alreadyOnline {
		p.hub.Broadcast(client.UserID, EventUserStatus, UserStatusEvent{
			UserID:   client.UserID,
			IsOnline: true,
		})
	}
}

// Disconnect 被追踪的连接断开时转为离线：记录 lastSeen、
// 向个人房间通告下线、尽力刷写到用户记录。
// 非追踪连接（已被新连接覆盖的旧句柄）断开不影响在线状态。
func (p *PresenceService) Disconnect(client *Client) {
	p.mu.Lock()
	tracked, ok := p.online[client.UserID]
	if !ok || tracked != client {
		p.mu.Unlock()
		return
	}
	delete(p.online, client.UserID)
	p.mu.Unlock()

	lastSeen := time.Now()
	p.hub.Broadcast(client.UserID, EventUserStatus, UserStatusEvent{
		UserID:   client.UserID,
		IsOnline: false,
		LastSeen: &lastSeen,
	})

	// 在线状态是尽力而为的：落库失败只记日志，不阻塞状态切换
	if err := p.users.UpdateLastSeen(client.UserID, lastSeen); err != nil {
		log.Printf("Failed to persist last seen for user %s: %v", client.UserID, err)
	}
}

// IsOnline 当前进程内是否有该用户的活跃连接
func (p *PresenceService) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.online[userID]
	return ok
}
