package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chat-server/models"
)

// ConversationStore 会话存储：按 ID 查找、按参与者对 find-or-create、更新摘要
type ConversationStore interface {
	GetByID(conversationID string) (*models.Conversation, error)
	FindOrCreate(userA, userB string) (conversation *models.Conversation, created bool, err error)
	Touch(conversationID, lastMessage string) error
}

// MessageStore 消息存储，只追加
type MessageStore interface {
	Create(message *models.Message) error
}

// UserDirectory 查询公开用户信息，用于填充会话参与者
type UserDirectory interface {
	PublicByIDs(userIDs []string) ([]models.PublicUser, error)
}

// ChatService 消息接收管线：校验 -> 解析会话 -> 持久化 -> 扇出
type ChatService struct {
	conversations ConversationStore
	messages      MessageStore
	users         UserDirectory
	hub           *Hub
	pairLocks     *PairLocker
}

func NewChatService(conversations ConversationStore, messages MessageStore, users UserDirectory, hub *Hub) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		hub:           hub,
		pairLocks:     NewPairLocker(),
	}
}

// SendMessage 处理一条 send_message 事件。
// 副作用顺序：更新/创建会话 -> 持久化消息 -> 补订阅发送方 -> 房间扇出 ->
// （新会话时）接收方个人房间扇出 -> 发送方回执。
// 持久化失败时整条管线中止，不做任何扇出。
func (s *ChatService) SendMessage(client *Client, payload SendMessagePayload) error {
	if payload.SenderID == "" || payload.ReceiverID == "" || payload.Content == "" {
		return newValidationError("All fields are required")
	}
	if payload.SenderID != client.UserID {
		return newValidationError("Sender does not match authenticated user")
	}

	roomRef := ParseRoomRef(payload.RoomID)

	// 1. 解析目标会话：优先按 hint 查找，miss 则按参与者对 find-or-create
	conversation, err := s.resolveConversation(roomRef, payload.SenderID, payload.ReceiverID)
	if err != nil {
		return err
	}

	// 2. 无条件更新会话摘要与活跃时间
	if err := s.conversations.Touch(conversation.ConversationID, payload.Content); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	conversation.LastMessage = payload.Content
	conversation.UpdatedAt = time.Now()

	// 3. 持久化消息
	message := &models.Message{
		MessageID:      uuid.New().String(),
		ConversationID: conversation.ConversationID,
		SenderID:       payload.SenderID,
		ReceiverID:     payload.ReceiverID,
		Content:        payload.Content,
	}
	if err := s.messages.Create(message); err != nil {
		return fmt.Errorf("failed to persist message: %w", err)
	}

	s.attachParticipants(conversation)

	// 4. 发送方此前可能只订阅了占位房间，补订阅真实会话房间
	if !s.hub.InRoom(client, conversation.ConversationID) {
		s.hub.Join(client, conversation.ConversationID)
	}

	event := MessageEvent{Message: message, Conversation: conversation}
	s.hub.Broadcast(conversation.ConversationID, EventReceiveMessage, event)

	// 首次联系（hint 缺失或为占位符）时额外投递到接收方的个人房间，
	// 让尚未打开该会话的接收端也能得知新会话
	if !roomRef.IsReal() {
		s.hub.Broadcast(payload.ReceiverID, EventReceiveMessage, event)
	}

	s.hub.SendToClient(client, EventMessageSent, event)
	return nil
}

// resolveConversation 解析 roomHint 或按参与者对 find-or-create。
// find-or-create 以参与者对为锁粒度串行化，决策完成即解锁，
// 不把锁跨到后续较慢的消息持久化上。
func (s *ChatService) resolveConversation(roomRef RoomRef, senderID, receiverID string) (*models.Conversation, error) {
	if roomRef.IsReal() {
		conversation, err := s.conversations.GetByID(roomRef.ID())
		switch {
		case err == nil:
			if conversation.HasParticipant(senderID) && conversation.HasParticipant(receiverID) {
				return conversation, nil
			}
			// hint 指向的不是这对用户的会话，按未命中处理
		case errors.Is(err, gorm.ErrRecordNotFound):
			// hint 未命中不是错误，回退到 find-or-create
		default:
			return nil, fmt.Errorf("failed to load conversation %s: %w", roomRef.ID(), err)
		}
	}

	unlock := s.pairLocks.Lock(models.PairKey(senderID, receiverID))
	conversation, created, err := s.conversations.FindOrCreate(senderID, receiverID)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve conversation: %w", err)
	}
	if created {
		log.Printf("Created conversation %s for pair %s", conversation.ConversationID, models.PairKey(senderID, receiverID))
	}
	return conversation, nil
}

// attachParticipants 填充双方公开信息；失败不影响消息投递
func (s *ChatService) attachParticipants(conversation *models.Conversation) {
	participants, err := s.users.PublicByIDs([]string{conversation.ParticipantA, conversation.ParticipantB})
	if err != nil {
		log.Printf("Failed to load participants for conversation %s: %v", conversation.ConversationID, err)
		return
	}
	conversation.Participants = participants
}
