package services

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"chat-server/models"
)

type chatFixture struct {
	hub           *Hub
	conversations *fakeConversationStore
	messages      *fakeMessageStore
	chat          *ChatService
}

func newChatFixture() *chatFixture {
	hub := NewHub()
	conversations := newFakeConversationStore()
	messages := &fakeMessageStore{}
	return &chatFixture{
		hub:           hub,
		conversations: conversations,
		messages:      messages,
		chat:          NewChatService(conversations, messages, fakeUserDirectory{}, hub),
	}
}

func decodeMessageEvent(t *testing.T, envelope Envelope) MessageEvent {
	t.Helper()
	var event MessageEvent
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		t.Fatalf("unmarshal message event: %v", err)
	}
	return event
}

func TestSendMessageValidation(t *testing.T) {
	fixture := newChatFixture()
	sender := newTestClient("u1", "c1")
	fixture.hub.Register(sender)

	tests := []struct {
		name    string
		payload SendMessagePayload
	}{
		{"empty sender", SendMessagePayload{ReceiverID: "u2", Content: "hi"}},
		{"empty receiver", SendMessagePayload{SenderID: "u1", Content: "hi"}},
		{"empty content", SendMessagePayload{SenderID: "u1", ReceiverID: "u2"}},
		{"sender mismatch", SendMessagePayload{SenderID: "u9", ReceiverID: "u2", Content: "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fixture.chat.SendMessage(sender, tt.payload)
			if !IsValidationError(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}

	if got := fixture.conversations.createCount(); got != 0 {
		t.Fatalf("conversations created = %d, want 0", got)
	}
	if got := fixture.messages.count(); got != 0 {
		t.Fatalf("messages created = %d, want 0", got)
	}
	expectNoEvent(t, sender)
}

func TestSendMessageFirstContact(t *testing.T) {
	fixture := newChatFixture()

	sender := newTestClient("u1", "c1")
	receiver := newTestClient("u2", "c2")
	fixture.hub.Register(sender)
	fixture.hub.Register(receiver)
	// 接收方只订阅了自己的个人房间，还没有打开任何会话
	fixture.hub.Join(receiver, "u2")

	err := fixture.chat.SendMessage(sender, SendMessagePayload{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "hi",
		RoomID:     "temp-17",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if got := fixture.conversations.createCount(); got != 1 {
		t.Fatalf("conversations created = %d, want 1", got)
	}
	if got := fixture.messages.count(); got != 1 {
		t.Fatalf("messages created = %d, want 1", got)
	}

	// 接收方通过个人房间得知新会话
	envelope := recvEvent(t, receiver)
	if envelope.Event != EventReceiveMessage {
		t.Fatalf("receiver event = %q, want %q", envelope.Event, EventReceiveMessage)
	}
	event := decodeMessageEvent(t, envelope)
	if event.Message.Content != "hi" {
		t.Fatalf("content = %q, want %q", event.Message.Content, "hi")
	}
	if event.Conversation.ConversationID == "" {
		t.Fatal("conversation id is empty")
	}
	if len(event.Conversation.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(event.Conversation.Participants))
	}

	// 发送方收到房间扇出 + message_sent 回执（带真实会话 ID，可替换占位符）
	first := recvEvent(t, sender)
	if first.Event != EventReceiveMessage {
		t.Fatalf("sender event = %q, want %q", first.Event, EventReceiveMessage)
	}
	ack := recvEvent(t, sender)
	if ack.Event != EventMessageSent {
		t.Fatalf("ack event = %q, want %q", ack.Event, EventMessageSent)
	}
	ackEvent := decodeMessageEvent(t, ack)
	if ackEvent.Conversation.ConversationID != event.Conversation.ConversationID {
		t.Fatalf("ack conversation = %q, want %q",
			ackEvent.Conversation.ConversationID, event.Conversation.ConversationID)
	}

	// 发送方已被补订阅到真实会话房间
	if !fixture.hub.InRoom(sender, event.Conversation.ConversationID) {
		t.Fatal("sender not subscribed to resolved conversation room")
	}
}

func TestSendMessageExistingRoomHint(t *testing.T) {
	fixture := newChatFixture()
	fixture.conversations.put(models.Conversation{
		ConversationID: "conv-1",
		ParticipantA:   "u1",
		ParticipantB:   "u2",
	})

	sender := newTestClient("u1", "c1")
	receiver := newTestClient("u2", "c2")
	fixture.hub.Register(sender)
	fixture.hub.Register(receiver)
	fixture.hub.Join(sender, "conv-1")
	fixture.hub.Join(receiver, "conv-1")
	fixture.hub.Join(receiver, "u2")

	err := fixture.chat.SendMessage(sender, SendMessagePayload{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "second",
		RoomID:     "conv-1",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if got := fixture.conversations.createCount(); got != 0 {
		t.Fatalf("conversations created = %d, want 0", got)
	}

	stored, err := fixture.conversations.GetByID("conv-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.LastMessage != "second" {
		t.Fatalf("lastMessage = %q, want %q", stored.LastMessage, "second")
	}
	if stored.UpdatedAt.IsZero() {
		t.Fatal("updatedAt not set")
	}

	// hint 命中已有会话：只有会话房间收到扇出，个人房间没有
	envelope := recvEvent(t, receiver)
	if envelope.Event != EventReceiveMessage {
		t.Fatalf("receiver event = %q, want %q", envelope.Event, EventReceiveMessage)
	}
	expectNoEvent(t, receiver)
}

func TestSendMessageHintMissFallsBack(t *testing.T) {
	fixture := newChatFixture()
	sender := newTestClient("u1", "c1")
	fixture.hub.Register(sender)

	err := fixture.chat.SendMessage(sender, SendMessagePayload{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "hi",
		RoomID:     "no-such-conversation",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got := fixture.conversations.createCount(); got != 1 {
		t.Fatalf("conversations created = %d, want 1", got)
	}
}

func TestSendMessageHintForeignConversation(t *testing.T) {
	fixture := newChatFixture()
	// hint 指向别人的会话：按未命中处理，落到这对用户自己的会话
	fixture.conversations.put(models.Conversation{
		ConversationID: "conv-other",
		ParticipantA:   "u8",
		ParticipantB:   "u9",
	})

	sender := newTestClient("u1", "c1")
	fixture.hub.Register(sender)

	err := fixture.chat.SendMessage(sender, SendMessagePayload{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "hi",
		RoomID:     "conv-other",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	ack := recvEvent(t, sender)
	if ack.Event != EventReceiveMessage {
		t.Fatalf("event = %q, want %q", ack.Event, EventReceiveMessage)
	}
	event := decodeMessageEvent(t, ack)
	if event.Conversation.ConversationID == "conv-other" {
		t.Fatal("message landed in a conversation the sender is not part of")
	}
}

func TestSendMessagePersistenceFailureNoFanout(t *testing.T) {
	fixture := newChatFixture()
	fixture.messages.createErr = errors.New("store down")

	sender := newTestClient("u1", "c1")
	receiver := newTestClient("u2", "c2")
	fixture.hub.Register(sender)
	fixture.hub.Register(receiver)
	fixture.hub.Join(receiver, "u2")

	err := fixture.chat.SendMessage(sender, SendMessagePayload{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "hi",
	})
	if err == nil {
		t.Fatal("expected error for failed persistence")
	}
	if IsValidationError(err) {
		t.Fatalf("err = %v, want non-validation error", err)
	}

	expectNoEvent(t, sender)
	expectNoEvent(t, receiver)
}

func TestSendMessageTouchFailureNoMessage(t *testing.T) {
	fixture := newChatFixture()
	fixture.conversations.touchErr = errors.New("store down")

	sender := newTestClient("u1", "c1")
	fixture.hub.Register(sender)

	err := fixture.chat.SendMessage(sender, SendMessagePayload{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "hi",
	})
	if err == nil {
		t.Fatal("expected error for failed conversation update")
	}
	if got := fixture.messages.count(); got != 0 {
		t.Fatalf("messages created = %d, want 0", got)
	}
	expectNoEvent(t, sender)
}

func TestConcurrentFirstContactSingleConversation(t *testing.T) {
	fixture := newChatFixture()
	fixture.conversations.createDelay = 2 * time.Millisecond

	clientA := newTestClient("u1", "c1")
	clientB := newTestClient("u2", "c2")
	fixture.hub.Register(clientA)
	fixture.hub.Register(clientB)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = fixture.chat.SendMessage(clientA, SendMessagePayload{
			SenderID: "u1", ReceiverID: "u2", Content: "hello from A",
		})
	}()
	go func() {
		defer wg.Done()
		errs[1] = fixture.chat.SendMessage(clientB, SendMessagePayload{
			SenderID: "u2", ReceiverID: "u1", Content: "hello from B",
		})
	}()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if got := fixture.conversations.createCount(); got != 1 {
		t.Fatalf("conversations created = %d, want exactly 1", got)
	}
	if got := fixture.messages.count(); got != 2 {
		t.Fatalf("messages created = %d, want 2", got)
	}
}
