package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"chat-server/models"
)

// newTestClient 构造不带底层连接的客户端，事件直接从 Send 通道断言
func newTestClient(userID, connectionID string) *Client {
	return NewClient(userID, connectionID, nil)
}

func recvEvent(t *testing.T, client *Client) Envelope {
	t.Helper()
	select {
	case raw, ok := <-client.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		return envelope
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Envelope{}
}

func expectNoEvent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case raw, ok := <-client.Send:
		if ok {
			t.Fatalf("unexpected event: %s", raw)
		}
	default:
	}
}

func drainEvents(client *Client) {
	for {
		select {
		case <-client.Send:
		default:
			return
		}
	}
}

type fakeConversationStore struct {
	mu       sync.Mutex
	byID     map[string]models.Conversation
	creates  []string // 每次实际创建的 pair key，用于检测重复创建
	findErr  error
	touchErr error
	// 模拟 check-then-create 之间的窗口，放大 find-or-create 竞态
	createDelay time.Duration
	seq         int
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{byID: make(map[string]models.Conversation)}
}

func (s *fakeConversationStore) GetByID(conversationID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conversation, ok := s.byID[conversationID]; ok {
		copied := conversation
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeConversationStore) FindOrCreate(userA, userB string) (*models.Conversation, bool, error) {
	if s.findErr != nil {
		return nil, false, s.findErr
	}
	a, b := models.SortPair(userA, userB)
	key := a + ":" + b

	s.mu.Lock()
	for _, conversation := range s.byID {
		if conversation.ParticipantA == a && conversation.ParticipantB == b {
			copied := conversation
			s.mu.Unlock()
			return &copied, false, nil
		}
	}
	s.mu.Unlock()

	// 存在性检查与创建之间的窗口：调用方的 pair lock 应当挡住并发进入
	if s.createDelay > 0 {
		time.Sleep(s.createDelay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	conversation := models.Conversation{
		ConversationID: fmt.Sprintf("%s-conv-%d", key, s.seq),
		ParticipantA:   a,
		ParticipantB:   b,
	}
	s.byID[conversation.ConversationID] = conversation
	s.creates = append(s.creates, key)
	copied := conversation
	return &copied, true, nil
}

func (s *fakeConversationStore) Touch(conversationID, lastMessage string) error {
	if s.touchErr != nil {
		return s.touchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conversation, ok := s.byID[conversationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conversation.LastMessage = lastMessage
	conversation.UpdatedAt = time.Now()
	s.byID[conversationID] = conversation
	return nil
}

func (s *fakeConversationStore) put(conversation models.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[conversation.ConversationID] = conversation
}

func (s *fakeConversationStore) createCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.creates)
}

type fakeMessageStore struct {
	mu        sync.Mutex
	messages  []models.Message
	createErr error
}

func (s *fakeMessageStore) Create(message *models.Message) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	message.CreatedAt = time.Now()
	s.messages = append(s.messages, *message)
	return nil
}

func (s *fakeMessageStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

type fakeUserDirectory struct{}

func (fakeUserDirectory) PublicByIDs(userIDs []string) ([]models.PublicUser, error) {
	users := make([]models.PublicUser, 0, len(userIDs))
	for _, id := range userIDs {
		users = append(users, models.PublicUser{ID: id, Username: "user-" + id})
	}
	return users, nil
}

type fakeLastSeenStore struct {
	mu        sync.Mutex
	updates   map[string]time.Time
	updateErr error
}

func newFakeLastSeenStore() *fakeLastSeenStore {
	return &fakeLastSeenStore{updates: make(map[string]time.Time)}
}

func (s *fakeLastSeenStore) UpdateLastSeen(userID string, lastSeen time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[userID] = lastSeen
	return nil
}

func (s *fakeLastSeenStore) lastSeenFor(userID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen, ok := s.updates[userID]
	return seen, ok
}
