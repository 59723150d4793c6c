package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chat-server/middlewares"
	"chat-server/models"
	"chat-server/services"
	"chat-server/utils"
)

const refreshCookieName = "refreshToken"
const refreshCookieMaxAge = 7 * 24 * 60 * 60 // 7 天

// Register 用户注册
func Register(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	// 检查用户名是否已存在
	if _, err := userRepo.GetByUsername(input.Username); err == nil {
		utils.RespondError(c, http.StatusBadRequest, "Username already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		ID:       uuid.New().String(),
		Username: input.Username,
		Password: string(hashedPassword),
	}
	if err := userRepo.Create(&user); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	accessToken, refreshToken, err := issueTokens(user.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	setRefreshCookie(c, refreshToken)

	utils.RespondSuccess(c, gin.H{
		"user":        user.Public(),
		"accessToken": accessToken,
	}, nil)
}

// Login 用户登录
func Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := userRepo.GetByUsername(input.Username)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	accessToken, refreshToken, err := issueTokens(user.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	setRefreshCookie(c, refreshToken)

	utils.RespondSuccess(c, gin.H{
		"user":        user.Public(),
		"accessToken": accessToken,
	}, nil)
}

// Logout 清除刷新令牌
func Logout(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, "/", "", false, true)
	utils.RespondSuccess(c, gin.H{"message": "Logged out successfully"}, nil)
}

// RefreshToken 用刷新令牌换新的访问令牌
func RefreshToken(c *gin.Context) {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	userID, err := services.ParseRefreshToken(cookie)
	if err != nil {
		utils.RespondError(c, http.StatusForbidden, "Invalid or expired refresh token")
		return
	}

	accessToken, err := services.GenerateAccessToken(userID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	utils.RespondSuccess(c, gin.H{"accessToken": accessToken}, nil)
}

// GetMe 返回当前登录用户
func GetMe(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "User not found")
		return
	}
	utils.RespondSuccess(c, user.Public(), nil)
}

func issueTokens(userID string) (access, refresh string, err error) {
	access, err = services.GenerateAccessToken(userID)
	if err != nil {
		return "", "", err
	}
	refresh, err = services.GenerateRefreshToken(userID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(refreshCookieName, token, refreshCookieMaxAge, "/", "", false, true)
}
