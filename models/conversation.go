package models

import "time"

// Conversation 私聊会话。ParticipantA/ParticipantB 始终按字典序存储，
// 配合唯一索引保证同一对用户最多只有一条会话记录。
type Conversation struct {
	ConversationID string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ParticipantA   string    `gorm:"type:varchar(36);uniqueIndex:idx_participant_pair;index" json:"-"`
	ParticipantB   string    `gorm:"type:varchar(36);uniqueIndex:idx_participant_pair;index" json:"-"`
	LastMessage    string    `gorm:"type:text" json:"lastMessage"` // 最新一条消息的内容摘要
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `gorm:"index" json:"updatedAt"` // 会话列表按该字段倒序

	// 参与者公开信息，由查询侧填充，不落库
	Participants []PublicUser `gorm:"-" json:"participants"`
}

// SortPair 规范化参与者对：返回按字典序排列的 (a, b)
func SortPair(userA, userB string) (string, string) {
	if userA > userB {
		return userB, userA
	}
	return userA, userB
}

// PairKey 参与者对的规范化键，用于 find-or-create 的互斥
func PairKey(userA, userB string) string {
	a, b := SortPair(userA, userB)
	return a + ":" + b
}

// HasParticipant 判断用户是否为会话参与者
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OtherParticipant 返回会话中另一方的用户 ID
func (c *Conversation) OtherParticipant(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}
