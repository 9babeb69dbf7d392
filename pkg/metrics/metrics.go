package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP请求指标
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// WebSocket连接指标
	wsConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Number of active websocket connections",
		},
	)

	wsConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_connections_total",
			Help: "Total number of websocket connections accepted",
		},
	)

	roomMembers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "room_members",
			Help: "Current member count per caregiver room",
		},
		[]string{"room"},
	)

	// 告警业务指标
	alertsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_published_total",
			Help: "Total number of alerts accepted by the relay",
		},
		[]string{"type"},
	)

	alertsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_delivered_total",
			Help: "Total number of alert events delivered to connections",
		},
		[]string{"event"},
	)

	alertsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_dropped_total",
			Help: "Total number of alert events dropped because no caregiver was connected",
		},
		[]string{"event"},
	)
)

// ConnectionOpened 记录新连接
func ConnectionOpened() {
	wsConnectionsTotal.Inc()
	wsConnectionsActive.Inc()
}

// ConnectionClosed 记录连接关闭
func ConnectionClosed() {
	wsConnectionsActive.Dec()
}

// SetRoomMembers 更新房间成员数
func SetRoomMembers(room string, n int) {
	if n <= 0 {
		roomMembers.DeleteLabelValues(room)
		return
	}
	roomMembers.WithLabelValues(room).Set(float64(n))
}

// AlertPublished 记录中继接受的一条告警
func AlertPublished(alertType string) {
	alertsPublished.WithLabelValues(alertType).Inc()
}

// AlertDelivered 记录一次事件投递，delivered为实际送达的连接数
func AlertDelivered(event string, delivered int) {
	if delivered <= 0 {
		return
	}
	alertsDelivered.WithLabelValues(event).Add(float64(delivered))
}

// AlertDropped 记录一次空房间丢弃
func AlertDropped(event string) {
	alertsDropped.WithLabelValues(event).Inc()
}

// GinMiddleware 采集HTTP请求指标的gin中间件
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露/metrics端点
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
