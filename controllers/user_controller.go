package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chat-server/models"
	"chat-server/utils"
)

const searchResultLimit = 20

// SearchUsers 按用户名前缀搜索用户
func SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.RespondSuccess(c, []models.PublicUser{}, nil)
		return
	}

	users, err := userRepo.SearchByPrefix(query, searchResultLimit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to search users")
		return
	}
	utils.RespondSuccess(c, users, nil)
}

// GetUserPresence 读取路径的在线状态快照。
// HTTP 侧没有连接注册表，isOnline 恒为 false，真实在线状态只经实时通道下发。
func GetUserPresence(c *gin.Context) {
	userID := c.Param("user_id")

	user, err := userRepo.GetByID(userID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondSuccess(c, gin.H{
		"userId":   user.ID,
		"isOnline": false,
		"lastSeen": user.LastSeen,
	}, nil)
}
