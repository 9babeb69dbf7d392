package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv 按环境加载 .env 文件（.env.development / .env.production），
// 找不到文件时回退到 .env
func LoadEnv(env string) error {
	candidates := []string{
		fmt.Sprintf(".env.%s", env),
		".env",
	}
	var lastErr error
	for _, f := range candidates {
		if _, err := os.Stat(f); err != nil {
			lastErr = err
			continue
		}
		return godotenv.Load(f)
	}
	return lastErr
}

// GetEnv 读取环境变量，未设置时返回空字符串
func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// GetEnvDefault 读取环境变量，未设置时返回默认值
func GetEnvDefault(key, def string) string {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	return v
}

// GetIntEnv 读取整型环境变量，解析失败返回 0
func GetIntEnv(key string) int64 {
	v := GetEnv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// GetBoolEnv 读取布尔环境变量："1"/"true"/"yes" 视为 true
func GetBoolEnv(key string) bool {
	switch strings.ToLower(GetEnv(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
