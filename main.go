package main

import (
	"log"

	"chat-server/config"
	"chat-server/controllers"
	"chat-server/models"
	"chat-server/routes"
)

func main() {
	// 初始化配置与数据库
	config.LoadEnv()
	config.InitDB()
	models.Migrate()

	// 装配实时链路与存储层
	controllers.Setup()

	// 注册路由并启动服务
	r := routes.RegisterRoutes()
	addr := ":" + config.GetEnv("PORT", "5000")
	log.Printf("🚀 Server running on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
