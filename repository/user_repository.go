package repository

import (
	"time"

	"gorm.io/gorm"

	"chat-server/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(userID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchByPrefix 按用户名前缀搜索（大小写不敏感依赖库的默认排序规则）
func (r *UserRepository) SearchByPrefix(prefix string, limit int) ([]models.PublicUser, error) {
	var users []models.User
	err := r.db.
		Where("username LIKE ?", prefix+"%").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	result := make([]models.PublicUser, 0, len(users))
	for i := range users {
		result = append(result, users[i].Public())
	}
	return result, nil
}

// PublicByIDs 批量查询公开用户信息，用于填充会话参与者
func (r *UserRepository) PublicByIDs(userIDs []string) ([]models.PublicUser, error) {
	var users []models.User
	if err := r.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	result := make([]models.PublicUser, 0, len(users))
	for i := range users {
		result = append(result, users[i].Public())
	}
	return result, nil
}

// UpdateLastSeen 断开连接时刷新用户的最后在线时间
func (r *UserRepository) UpdateLastSeen(userID string, lastSeen time.Time) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen", lastSeen).Error
}
