package models

import "time"

// Message 消息记录，只增不改。自增 ID 用于同一时间戳下的插入序。
type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID      string    `gorm:"type:varchar(36);uniqueIndex" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);index" json:"conversationId"`
	SenderID       string    `gorm:"type:varchar(36);index" json:"sender"`
	ReceiverID     string    `gorm:"type:varchar(36)" json:"receiver"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsRead         bool      `gorm:"default:false" json:"isRead"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}
