package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-server/middlewares"
	"chat-server/models"
	"chat-server/utils"
)

// GetConversations 返回当前用户的会话列表，按最近活跃倒序
func GetConversations(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}

	conversations, err := conversationRepo.ListForUser(user.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to fetch conversations")
		return
	}

	// 批量查出所有参与者，避免逐会话查询
	idSet := make(map[string]struct{}, len(conversations)*2)
	for i := range conversations {
		idSet[conversations[i].ParticipantA] = struct{}{}
		idSet[conversations[i].ParticipantB] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	byID := make(map[string]models.PublicUser, len(ids))
	if len(ids) > 0 {
		participants, err := userRepo.PublicByIDs(ids)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to fetch participants")
			return
		}
		for _, p := range participants {
			byID[p.ID] = p
		}
	}

	for i := range conversations {
		conversations[i].Participants = []models.PublicUser{
			byID[conversations[i].ParticipantA],
			byID[conversations[i].ParticipantB],
		}
	}

	utils.RespondSuccess(c, conversations, nil)
}
