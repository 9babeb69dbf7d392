package handlers

import (
	"net/http"

	"CareLink/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// HealthCheck 健康检查接口
func (h *Handlers) HealthCheck(c *gin.Context) {
	// 检查数据库连接
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database connection failed"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database ping failed"})
		return
	}
	if h.hub.Closed() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "realtime hub closed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"connections": h.hub.GetConnectionCount(),
		"rooms":       h.hub.RoomCount(),
	})
}

// SystemStats 系统资源快照
func (h *Handlers) SystemStats(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.CollectSystemStats())
}
