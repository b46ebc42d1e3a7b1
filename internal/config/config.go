package config

import (
	"os"
	"time"
)

// Config 应用配置，启动时一次性从环境变量读入，
// 之后显式传给各个构造函数，不在包级状态里隐式共享。
type Config struct {
	Port       string
	Production bool

	// 存储
	DatabaseURL   string
	StorageDriver string // "postgres" 或 "memory"

	// 会话
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// 外部服务
	AIBaseURL     string
	AIAPIKey      string
	AIModel       string
	ImgurClientID string

	// SPA 客户端域名，用于 CORS
	ClientOrigin string
}

// Load 加载应用配置
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		Production: getEnv("GIN_MODE", "debug") == "release",

		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable"),
		StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),

		JWTSecret:       getEnv("JWT_SECRET", "secret_key_change_me"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 15*24*time.Hour),

		AIBaseURL:     getEnv("AI_BASE_URL", "https://api.deepseek.com/v1"),
		AIAPIKey:      getEnv("AI_API_KEY", ""),
		AIModel:       getEnv("AI_MODEL", "deepseek-chat"),
		ImgurClientID: getEnv("IMGUR_CLIENT_ID", ""),

		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
	}
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
