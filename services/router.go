package services

import (
	"encoding/json"
	"log"
)

// HandlerFunc 统一的事件处理签名，便于逐个事件单独测试
type HandlerFunc func(client *Client, data json.RawMessage) error

// EventRouter 事件名到处理函数的显式分发表
type EventRouter struct {
	hub      *Hub
	chat     *ChatService
	presence *PresenceService
	handlers map[string]HandlerFunc
}

func NewEventRouter(hub *Hub, chat *ChatService, presence *PresenceService) *EventRouter {
	router := &EventRouter{
		hub:      hub,
		chat:     chat,
		presence: presence,
	}
	router.handlers = map[string]HandlerFunc{
		EventJoinUserRoom: router.handleJoinUserRoom,
		EventJoinRoom:     router.handleJoinRoom,
		EventLeaveRoom:    router.handleLeaveRoom,
		EventSendMessage:  router.handleSendMessage,
		EventTyping:       router.handleTyping,
	}
	return router
}

// Dispatch 分发一条入站事件；处理失败只上报给该连接自身
func (r *EventRouter) Dispatch(client *Client, envelope Envelope) {
	handler, ok := r.handlers[envelope.Event]
	if !ok {
		log.Printf("Unknown event %q from client %s", envelope.Event, client.ConnectionID)
		return
	}

	if err := handler(client, envelope.Data); err != nil {
		if IsValidationError(err) {
			r.hub.SendToClient(client, EventErrorMessage, ErrorEvent{Error: err.Error()})
			return
		}
		log.Printf("Error handling %s from client %s: %v", envelope.Event, client.ConnectionID, err)
		r.hub.SendToClient(client, EventErrorMessage, ErrorEvent{Error: "Failed to send message"})
	}
}

// HandleDisconnect 连接断开时的清理：先走下线流程，再从所有房间移除
func (r *EventRouter) HandleDisconnect(client *Client) {
	r.presence.Disconnect(client)
	r.hub.Unregister(client)
}

// handleJoinUserRoom 加入个人房间并标记在线。payload 为用户 ID 字符串。
func (r *EventRouter) handleJoinUserRoom(client *Client, data json.RawMessage) error {
	var userID string
	if err := json.Unmarshal(data, &userID); err != nil {
		return newValidationError("Invalid join_user_room payload")
	}
	if userID == "" {
		return newValidationError("User ID is required")
	}
	if userID != client.UserID {
		return newValidationError("Cannot join another user's room")
	}
	r.presence.Connect(client)
	return nil
}

// handleJoinRoom 订阅会话房间。payload 为房间 ID 字符串。
func (r *EventRouter) handleJoinRoom(client *Client, data json.RawMessage) error {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil {
		return newValidationError("Invalid join_room payload")
	}
	ref := ParseRoomRef(roomID)
	if !ref.IsReal() {
		// 占位房间不是真实会话，发消息时会解析并补订阅
		return nil
	}
	r.hub.Join(client, ref.ID())
	return nil
}

func (r *EventRouter) handleLeaveRoom(client *Client, data json.RawMessage) error {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil {
		return newValidationError("Invalid leave_room payload")
	}
	r.hub.Leave(client, roomID)
	return nil
}

func (r *EventRouter) handleSendMessage(client *Client, data json.RawMessage) error {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return newValidationError("Invalid send_message payload")
	}
	return r.chat.SendMessage(client, payload)
}

// handleTyping 转发给房间内除发送方以外的连接，不落库、不设过期
func (r *EventRouter) handleTyping(client *Client, data json.RawMessage) error {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return newValidationError("Invalid typing payload")
	}
	if payload.RoomID == "" {
		return newValidationError("Room ID is required")
	}
	r.hub.BroadcastExcept(payload.RoomID, EventTyping, payload, client)
	return nil
}
