package realtime

import "fmt"

// 事件名常量，客户端与服务端共用
const (
	// 系统事件
	EventPing       = "ping"
	EventPong       = "pong"
	EventJoinRoom   = "join_caregiver_room"
	EventRoomJoined = "room_joined"

	// 告警事件
	EventPatientAlert   = "patient_alert"
	EventEmergencyAlert = "emergency_alert"
	EventLocationAlert  = "location_alert"

	// 默认配置值
	DefaultMaxConnections    = 10000
	DefaultHeartbeatInterval = 30
	DefaultConnectionTimeout = 60
	DefaultMessageBufferSize = 256
	DefaultReadBufferSize    = 1024
	DefaultWriteBufferSize   = 1024
	DefaultMaxMessageSize    = 4096

	// 环境变量配置键
	EnvMaxConnections    = "REALTIME_MAX_CONNECTIONS"
	EnvHeartbeatInterval = "REALTIME_HEARTBEAT_INTERVAL"
	EnvConnectionTimeout = "REALTIME_CONNECTION_TIMEOUT"
	EnvMessageBufferSize = "REALTIME_MESSAGE_BUFFER_SIZE"
	EnvDropOnFull        = "REALTIME_DROP_ON_FULL"

	// 路由路径
	RouteWebSocket       = "/ws"
	RouteWebSocketStats  = "/ws/stats"
	RouteWebSocketHealth = "/ws/health"
)

// RoomName 护理人房间命名，与面板/移动端约定一致
func RoomName(caregiverID int) string {
	return fmt.Sprintf("caregiver_%d", caregiverID)
}
