package controllers

import (
	"chat-server/config"
	"chat-server/repository"
	"chat-server/services"
)

var (
	userRepo         *repository.UserRepository
	conversationRepo *repository.ConversationRepository
	messageRepo      *repository.MessageRepository

	hub             *services.Hub
	chatService     *services.ChatService
	presenceService *services.PresenceService
	eventRouter     *services.EventRouter
)

// Setup 装配存储层与实时链路，必须在 InitDB 之后调用
func Setup() {
	userRepo = repository.NewUserRepository(config.DB)
	conversationRepo = repository.NewConversationRepository(config.DB)
	messageRepo = repository.NewMessageRepository(config.DB)

	hub = services.NewHub()
	chatService = services.NewChatService(conversationRepo, messageRepo, userRepo, hub)
	presenceService = services.NewPresenceService(hub, userRepo)
	eventRouter = services.NewEventRouter(hub, chatService, presenceService)
}
