package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler WebSocket接入层
type Handler struct {
	hub *Hub
}

// NewHandler 创建处理器
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes 注册实时通道相关路由
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET(RouteWebSocket, h.HandleWebSocket)
	router.GET(RouteWebSocketStats, h.GetStats)
	router.GET(RouteWebSocketHealth, h.HealthCheck)
}

// HandleWebSocket 处理WebSocket连接请求
func (h *Handler) HandleWebSocket(c *gin.Context) {
	if h.hub.Closed() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "hub is shutting down"})
		return
	}
	HandleWebSocket(h.hub, c.Writer, c.Request)
}

// GetStats 返回连接与房间统计
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connections": h.hub.GetConnectionCount(),
		"rooms":       h.hub.RoomCount(),
	})
}

// HealthCheck 实时通道健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.hub.Closed() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"connections": h.hub.GetConnectionCount(),
	})
}
