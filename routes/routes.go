package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chat-server/config"
	"chat-server/controllers"
	"chat-server/middlewares"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes() *gin.Engine {
	r := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     []string{config.GetEnv("FRONTEND_URL", "http://localhost:3000")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	r.Use(cors.New(corsConfig))

	// 健康检查
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	})

	// WebSocket 升级入口（握手阶段自行校验令牌）
	r.GET("/ws", controllers.WSController)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)
		auth.POST("/refresh", controllers.RefreshToken)
		auth.GET("/me", middlewares.TokenAuthMiddleware(), controllers.GetMe)
	}

	protected := api.Group("")
	protected.Use(middlewares.TokenAuthMiddleware())
	{
		protected.GET("/users/search", controllers.SearchUsers)
		protected.GET("/users/presence/:user_id", controllers.GetUserPresence)
		protected.GET("/conversations", controllers.GetConversations)
		protected.GET("/conversations/:conversation_id/messages", controllers.GetMessagesByConversationID)
	}

	return r
}
