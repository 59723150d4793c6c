package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"chat-server/models"
)

// mysql 唯一键冲突错误码
const mysqlDuplicateEntry = 1062

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetByID 按会话 ID 查询
func (r *ConversationRepository) GetByID(conversationID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Where("conversation_id = ?", conversationID).First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindOrCreate 按参与者对查找会话，不存在则创建。
// 进程内的互斥由调用方的 pair lock 保证；跨进程或漏锁的兜底是
// (participant_a, participant_b) 上的唯一索引：冲突时重新读取赢家的记录。
func (r *ConversationRepository) FindOrCreate(userA, userB string) (*models.Conversation, bool, error) {
	a, b := models.SortPair(userA, userB)

	var conversation models.Conversation
	err := r.db.Where("participant_a = ? AND participant_b = ?", a, b).First(&conversation).Error
	if err == nil {
		return &conversation, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := models.Conversation{
		ConversationID: uuid.New().String(),
		ParticipantA:   a,
		ParticipantB:   b,
	}
	if err := r.db.Create(&created).Error; err != nil {
		if isDuplicateEntry(err) {
			// 并发首次联系：另一端已经建好，复用对方的会话
			var winner models.Conversation
			if err := r.db.Where("participant_a = ? AND participant_b = ?", a, b).First(&winner).Error; err != nil {
				return nil, false, err
			}
			return &winner, false, nil
		}
		return nil, false, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &created, true, nil
}

// Touch 更新会话摘要与活跃时间（每条消息都会触发）
func (r *ConversationRepository) Touch(conversationID, lastMessage string) error {
	return r.db.Model(&models.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message": lastMessage,
			"updated_at":   time.Now(),
		}).Error
}

// ListForUser 查询用户的全部会话，按最近活跃倒序
func (r *ConversationRepository) ListForUser(userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
