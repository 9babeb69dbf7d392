package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"CareLink/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Envelope 通道上的命名事件封包
type Envelope struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Connection 表示一个WebSocket连接
type Connection struct {
	ID       string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
	LastPing time.Time
	IsAlive  bool

	mu sync.RWMutex
	// 已加入的护理人房间，0 表示尚未加入。
	// 一个连接最多属于一个护理人房间。
	caregiverID int
}

// CaregiverID 返回已加入的护理人ID，未加入时为 0
func (c *Connection) CaregiverID() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caregiverID
}

// alive 读取存活标记。IsAlive 由 c.mu 保护：
// 心跳巡检写它的同时 Publish 可能在读
func (c *Connection) alive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.IsAlive
}

// Hub 房间注册表：维护护理人房间到活动连接的映射，
// 并把发布的告警事件扇出给房间内全部成员
type Hub struct {
	// 注册的连接
	connections map[string]*Connection
	// 房间名到成员连接的映射
	rooms map[string]map[string]*Connection
	// 注册/注销连接通道
	register   chan *Connection
	unregister chan *Connection
	// 连接计数
	connectionCount int64
	// 配置
	config *Config
	// 互斥锁：join/leave/publish 互相串行
	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub 创建新的Hub实例
func NewHub(config *Config) *Hub {
	if config == nil {
		config = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := &Hub{
		connections: make(map[string]*Connection),
		rooms:       make(map[string]map[string]*Connection),
		register:    make(chan *Connection, 256),
		unregister:  make(chan *Connection, 256),
		config:      config,
		ctx:         ctx,
		cancel:      cancel,
	}

	go hub.run()
	return hub
}

// run Hub主循环
func (h *Hub) run() {
	ticker := time.NewTicker(h.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case conn := <-h.register:
			h.registerConnection(conn)
		case conn := <-h.unregister:
			h.unregisterConnection(conn)
		case <-ticker.C:
			h.checkHeartbeats()
		}
	}
}

// registerConnection 注册连接
func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if atomic.LoadInt64(&h.connectionCount) >= h.config.MaxConnections {
		if conn.Conn != nil {
			conn.Conn.Close()
		}
		logrus.Warnf("connection limit reached: %d", h.config.MaxConnections)
		return
	}

	h.connections[conn.ID] = conn
	atomic.AddInt64(&h.connectionCount, 1)
	metrics.ConnectionOpened()

	logrus.Infof("connection registered: %s, total: %d",
		conn.ID, atomic.LoadInt64(&h.connectionCount))
}

// unregisterConnection 注销连接并清理房间成员关系
func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.connections[conn.ID]; !exists {
		return
	}
	delete(h.connections, conn.ID)
	atomic.AddInt64(&h.connectionCount, -1)
	metrics.ConnectionClosed()

	h.leaveRoomLocked(conn)

	close(conn.Send)
	logrus.Infof("connection unregistered: %s, total: %d",
		conn.ID, atomic.LoadInt64(&h.connectionCount))
}

// Register 接入一个连接
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister 移除一个连接
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// JoinRoom 把连接加入护理人房间。房间在首个成员加入时隐式创建；
// 连接换房间时先退出旧房间。
func (h *Hub) JoinRoom(conn *Connection, caregiverID int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveRoomLocked(conn)

	room := RoomName(caregiverID)
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*Connection)
	}
	h.rooms[room][conn.ID] = conn

	conn.mu.Lock()
	conn.caregiverID = caregiverID
	conn.mu.Unlock()

	metrics.SetRoomMembers(room, len(h.rooms[room]))
	logrus.Infof("connection %s joined room %s", conn.ID, room)
}

// leaveRoomLocked 把连接移出当前房间，最后一个成员离开时房间即被丢弃。
// 调用方必须持有 h.mu。
func (h *Hub) leaveRoomLocked(conn *Connection) {
	conn.mu.Lock()
	caregiverID := conn.caregiverID
	conn.caregiverID = 0
	conn.mu.Unlock()

	if caregiverID == 0 {
		return
	}
	room := RoomName(caregiverID)
	if members := h.rooms[room]; members != nil {
		delete(members, conn.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
			metrics.SetRoomMembers(room, 0)
			return
		}
		metrics.SetRoomMembers(room, len(members))
	}
}

// Publish 向护理人房间的所有在线成员投递一个命名事件。
// 至多一次、尽力而为：房间为空时事件直接丢弃，不排队不重试，也不报错。
// 返回实际投递的连接数。
func (h *Hub) Publish(caregiverID int, event string, data interface{}) int {
	envelope := &Envelope{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		logrus.Errorf("event marshal failed: %v", err)
		return 0
	}

	room := RoomName(caregiverID)

	// 发送期间持有读锁，保证成员退出（close(Send)）不会与投递竞争
	h.mu.RLock()
	members := h.rooms[room]
	if len(members) == 0 {
		h.mu.RUnlock()
		metrics.AlertDropped(event)
		logrus.Warnf("room %s empty, event %s dropped", room, event)
		return 0
	}

	delivered := 0
	for _, conn := range members {
		if !conn.alive() {
			continue
		}
		if h.trySend(conn, payload) {
			delivered++
		}
	}
	h.mu.RUnlock()

	metrics.AlertDelivered(event, delivered)
	return delivered
}

// trySend 背压策略：缓冲区满时按配置丢弃或限时等待
func (h *Hub) trySend(conn *Connection, data []byte) bool {
	if h.config.DropOnFull {
		select {
		case conn.Send <- data:
			return true
		default:
			logrus.Warnf("connection %s send buffer full, message dropped", conn.ID)
			return false
		}
	}
	timeout := h.config.SendTimeout
	if timeout <= 0 {
		timeout = 50 * time.Millisecond
	}
	select {
	case conn.Send <- data:
		return true
	case <-time.After(timeout):
		logrus.Warnf("connection %s send timeout, message dropped", conn.ID)
		return false
	}
}

// checkHeartbeats 检查心跳
func (h *Hub) checkHeartbeats() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := time.Now()
	for _, conn := range h.connections {
		conn.mu.Lock()
		expired := now.Sub(conn.LastPing) > h.config.ConnectionTimeout
		if expired {
			conn.IsAlive = false
		}
		conn.mu.Unlock()
		if expired {
			logrus.Warnf("connection %s heartbeat timeout, closing", conn.ID)
			if conn.Conn != nil {
				conn.Conn.Close()
			}
		}
	}
}

// RoomConnections 房间当前成员连接的快照
func (h *Hub) RoomConnections(caregiverID int) []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := h.rooms[RoomName(caregiverID)]
	out := make([]*Connection, 0, len(members))
	for _, conn := range members {
		out = append(out, conn)
	}
	return out
}

// RoomSize 获取房间当前成员数
func (h *Hub) RoomSize(caregiverID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[RoomName(caregiverID)])
}

// RoomCount 当前存在的房间数
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetConnectionCount 获取当前连接数
func (h *Hub) GetConnectionCount() int64 {
	return atomic.LoadInt64(&h.connectionCount)
}

// Closed 判断Hub是否已关闭
func (h *Hub) Closed() bool {
	return h.ctx.Err() != nil
}

// Close 关闭Hub及其全部连接
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	for _, conn := range h.connections {
		if conn.Conn != nil {
			conn.Conn.Close()
		}
	}
	h.mu.Unlock()

	logrus.Info("realtime hub closed")
}
