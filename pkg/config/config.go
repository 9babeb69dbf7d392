package config

import (
	"log"
	"os"

	"CareLink/pkg/logger"
	"CareLink/pkg/notification"
	"CareLink/pkg/util"
)

// Config 全局配置
type Config struct {
	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`
	Addr     string `env:"ADDR"`
	Mode     string `env:"MODE"`

	APIPrefix string `env:"API_PREFIX"`

	Log  logger.LogConfig
	Mail notification.MailConfig

	// 缓存（患者→护理人解析结果）
	CacheType     string `env:"CACHE_TYPE"` // local | redis
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	// 告警接口限流，如 "30-M"
	AlertRateLimit string `env:"ALERT_RATE_LIMIT"`

	// 服务端告警留存天数，清理任务使用
	AlertRetentionDays int `env:"ALERT_RETENTION_DAYS"`

	// SSE 只读告警流
	SSEEnabled bool `env:"SSE_ENABLED"`
}

var GlobalConfig *Config

func Load() error {
	// 1. 根据环境加载 .env 文件
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	// 2. 加载全局配置
	GlobalConfig = &Config{
		DBDriver:  util.GetEnv("DB_DRIVER"),
		DSN:       util.GetEnv("DSN"),
		Addr:      util.GetEnvDefault("ADDR", ":5001"),
		Mode:      util.GetEnv("MODE"),
		APIPrefix: util.GetEnvDefault("API_PREFIX", "/"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Mail: notification.MailConfig{
			Host:     util.GetEnv("MAIL_HOST"),
			Username: util.GetEnv("MAIL_USERNAME"),
			Password: util.GetEnv("MAIL_PASSWORD"),
			Port:     util.GetIntEnv("MAIL_PORT"),
			From:     util.GetEnv("MAIL_FROM"),
		},
		CacheType:          util.GetEnvDefault("CACHE_TYPE", "local"),
		RedisAddr:          util.GetEnv("REDIS_ADDR"),
		RedisPassword:      util.GetEnv("REDIS_PASSWORD"),
		RedisDB:            int(util.GetIntEnv("REDIS_DB")),
		AlertRateLimit:     util.GetEnvDefault("ALERT_RATE_LIMIT", "30-M"),
		AlertRetentionDays: int(util.GetIntEnv("ALERT_RETENTION_DAYS")),
		SSEEnabled:         util.GetBoolEnv("SSE_ENABLED"),
	}
	return nil
}
