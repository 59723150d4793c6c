package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// 全局数据库实例
var DB *gorm.DB

// LoadEnv 加载 .env 环境变量（文件不存在时沿用系统环境变量）
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}
}

// GetEnv 读取环境变量，支持默认值
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// InitDB 初始化数据库连接
func InitDB() {
	user := GetEnv("DB_USER", "root")
	password := GetEnv("DB_PASSWORD", "")
	host := GetEnv("DB_HOST", "127.0.0.1")
	port := GetEnv("DB_PORT", "3306")
	name := GetEnv("DB_NAME", "chat_server")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, name)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	DB = db
	log.Println("Database connected")
}

// JWTSecret 访问令牌密钥
func JWTSecret() []byte {
	return []byte(GetEnv("JWT_SECRET", "dev-secret"))
}

// JWTRefreshSecret 刷新令牌密钥
func JWTRefreshSecret() []byte {
	return []byte(GetEnv("JWT_REFRESH_SECRET", "dev-refresh-secret"))
}
