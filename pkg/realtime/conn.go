package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// newUpgrader 根据配置创建WebSocket升级器
func newUpgrader(cfg *Config) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			// 面板与移动端跨域访问，生产环境应检查Origin
			return true
		},
	}
}

// HandleWebSocket 升级HTTP连接并接入Hub。
// 连接建立后不属于任何房间，客户端必须显式发送
// join_caregiver_room 事件声明身份，重连后也要重新声明。
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request) {
	upgrader := newUpgrader(hub.config)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade failed: %v", err)
		return
	}

	connection := &Connection{
		ID:       uuid.NewString(),
		Conn:     conn,
		Send:     make(chan []byte, hub.config.MessageBufferSize),
		Hub:      hub,
		LastPing: time.Now(),
		IsAlive:  true,
	}

	hub.register <- connection

	go connection.writePump()
	go connection.readPump()
}

// readPump 读取消息的协程
func (c *Connection) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(int64(c.Hub.config.MaxMessageSize))
	c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.mu.Lock()
		c.LastPing = time.Now()
		c.mu.Unlock()
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Errorf("websocket read error: %v", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump 发送消息的协程，单写者保证连接内事件有序
func (c *Connection) writePump() {
	interval := c.Hub.config.HeartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(time.Duration(float64(interval) * 0.9))
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理收到的事件
func (c *Connection) handleMessage(message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		logrus.Errorf("event decode failed: %v", err)
		return
	}

	switch env.Event {
	case EventPing:
		c.handlePing()
	case EventJoinRoom:
		c.handleJoinRoom(env)
	default:
		logrus.Warnf("unknown event: %s", env.Event)
	}
}

// handlePing 处理ping事件
func (c *Connection) handlePing() {
	c.mu.Lock()
	c.LastPing = time.Now()
	c.mu.Unlock()

	c.sendEvent(EventPong, nil)
}

// handleJoinRoom 客户端声明护理人身份并加入对应房间
func (c *Connection) handleJoinRoom(env Envelope) {
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		logrus.Warnf("invalid join payload: %v", env.Data)
		return
	}
	caregiverID := cast.ToInt(data["caregiver_id"])
	if caregiverID <= 0 {
		logrus.Warnf("invalid caregiver_id in join payload: %v", data["caregiver_id"])
		return
	}

	c.Hub.JoinRoom(c, caregiverID)

	// 加入确认
	c.sendEvent(EventRoomJoined, map[string]interface{}{
		"room":         RoomName(caregiverID),
		"caregiver_id": caregiverID,
	})
}

// sendEvent 向当前连接发送一个命名事件
func (c *Connection) sendEvent(event string, data interface{}) {
	payload, err := json.Marshal(&Envelope{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return
	}
	select {
	case c.Send <- payload:
	default:
		logrus.Warnf("connection %s send buffer full", c.ID)
	}
}
