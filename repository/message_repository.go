package repository

import (
	"gorm.io/gorm"

	"chat-server/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 持久化一条消息
func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation 按时间正序返回会话内全部消息，同一时间戳按插入序
func (r *MessageRepository) ListByConversation(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}
