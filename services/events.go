package services

import (
	"encoding/json"
	"time"

	"chat-server/models"
)

// 连接层事件名，与前端 socket 协议一一对应
const (
	EventJoinUserRoom = "join_user_room"
	EventJoinRoom     = "join_room"
	EventLeaveRoom    = "leave_room"
	EventSendMessage  = "send_message"
	EventTyping       = "typing"

	EventReceiveMessage = "receive_message"
	EventMessageSent    = "message_sent"
	EventUserStatus     = "user_status"
	EventErrorMessage   = "error_message"
)

// Envelope 连接上双向收发的统一封包
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func marshalEvent(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// SendMessagePayload send_message 的入参
type SendMessagePayload struct {
	SenderID   string `json:"sender"`
	ReceiverID string `json:"receiver"`
	Content    string `json:"content"`
	RoomID     string `json:"roomId,omitempty"`
}

// TypingPayload typing 信号，服务端只转发不落库
type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// MessageEvent receive_message / message_sent 的出参
type MessageEvent struct {
	Message      *models.Message      `json:"message"`
	Conversation *models.Conversation `json:"conversation"`
}

// UserStatusEvent user_status 的出参
type UserStatusEvent struct {
	UserID   string     `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// ErrorEvent error_message 的出参
type ErrorEvent struct {
	Error string `json:"error"`
}
