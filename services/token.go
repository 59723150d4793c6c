package services

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"

	"chat-server/config"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// GenerateAccessToken 签发访问令牌
func GenerateAccessToken(userID string) (string, error) {
	return generateToken(userID, accessTokenTTL, config.JWTSecret())
}

// GenerateRefreshToken 签发刷新令牌（写入 httpOnly cookie）
func GenerateRefreshToken(userID string) (string, error) {
	return generateToken(userID, refreshTokenTTL, config.JWTRefreshSecret())
}

func generateToken(userID string, ttl time.Duration, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccessToken 校验访问令牌并返回用户 ID
func ParseAccessToken(tokenString string) (string, error) {
	return parseToken(tokenString, config.JWTSecret())
}

// ParseRefreshToken 校验刷新令牌并返回用户 ID
func ParseRefreshToken(tokenString string) (string, error) {
	return parseToken(tokenString, config.JWTRefreshSecret())
}

func parseToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
