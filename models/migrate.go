package models

import (
	"log"

	"chat-server/config"
)

// Migrate 自动迁移所有表结构
func Migrate() {
	err := config.DB.AutoMigrate(
		&User{},
		&Conversation{},
		&Message{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migrated")
}
