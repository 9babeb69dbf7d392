package realtime

import (
	"fmt"
	"time"

	"CareLink/pkg/util"
)

// Config 实时通道配置
type Config struct {
	// 最大连接数
	MaxConnections int64
	// 心跳间隔
	HeartbeatInterval time.Duration
	// 连接超时时间
	ConnectionTimeout time.Duration
	// 发送缓冲区大小（消息条数）
	MessageBufferSize int
	// 读缓冲区大小
	ReadBufferSize int
	// 写缓冲区大小
	WriteBufferSize int
	// 最大消息大小
	MaxMessageSize int
	// 发送缓冲区满时是否丢弃
	DropOnFull bool
	// 非丢弃模式下的发送阻塞超时
	SendTimeout time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxConnections:    DefaultMaxConnections,
		HeartbeatInterval: DefaultHeartbeatInterval * time.Second,
		ConnectionTimeout: DefaultConnectionTimeout * time.Second,
		MessageBufferSize: DefaultMessageBufferSize,
		ReadBufferSize:    DefaultReadBufferSize,
		WriteBufferSize:   DefaultWriteBufferSize,
		MaxMessageSize:    DefaultMaxMessageSize,
		DropOnFull:        true,
		SendTimeout:       50 * time.Millisecond,
	}
}

// ConfigFromEnv 从环境变量加载配置，未设置的项使用默认值
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := util.GetIntEnv(EnvMaxConnections); v > 0 {
		cfg.MaxConnections = v
	}
	if v := util.GetIntEnv(EnvHeartbeatInterval); v > 0 {
		cfg.HeartbeatInterval = time.Duration(v) * time.Second
	}
	if v := util.GetIntEnv(EnvConnectionTimeout); v > 0 {
		cfg.ConnectionTimeout = time.Duration(v) * time.Second
	}
	if v := util.GetIntEnv(EnvMessageBufferSize); v > 0 {
		cfg.MessageBufferSize = int(v)
	}
	if util.GetEnv(EnvDropOnFull) != "" {
		cfg.DropOnFull = util.GetBoolEnv(EnvDropOnFull)
	}
	return cfg
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be positive")
	}
	if cfg.MessageBufferSize <= 0 {
		return fmt.Errorf("message buffer size must be positive")
	}
	if cfg.ConnectionTimeout <= cfg.HeartbeatInterval {
		return fmt.Errorf("connection timeout must exceed heartbeat interval")
	}
	return nil
}
