package models

import (
	"time"
)

// User 用户模型，ID 为 uuid 字符串（对外只作为不透明标识使用）
type User struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username  string     `json:"username" gorm:"type:varchar(64);unique;not null"`
	Password  string     `json:"-" gorm:"not null"`
	Email     string     `json:"email,omitempty"`
	AvatarURL string     `json:"avatarUrl,omitempty"`
	LastSeen  *time.Time `json:"lastSeen,omitempty" gorm:"default:NULL"` // 断开连接时写入
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// PublicUser 对外暴露的用户信息（不含密码）
type PublicUser struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email,omitempty"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// Public 转换为公开视图
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		LastSeen: u.LastSeen,
	}
}
