package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-server/middlewares"
	"chat-server/utils"
)

// GetMessagesByConversationID 返回会话内全部消息，按时间正序
func GetMessagesByConversationID(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	conversationID := c.Param("conversation_id")
	conversation, err := conversationRepo.GetByID(conversationID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "Conversation not found")
		return
	}

	// 只有会话参与者能读消息
	if !conversation.HasParticipant(user.ID) {
		utils.RespondError(c, http.StatusForbidden, "You are not part of this conversation")
		return
	}

	messages, err := messageRepo.ListByConversation(conversationID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	utils.RespondSuccess(c, messages, nil)
}
