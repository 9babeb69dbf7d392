package client

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"CareLink/pkg/alert"
	"CareLink/pkg/realtime"

	"github.com/sirupsen/logrus"
)

// State 消费端连接状态
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	default:
		return "disconnected"
	}
}

// Notifier 把渲染好的通知送到界面层
type Notifier interface {
	Notify(n alert.Notification, a alert.Alert)
}

// NotifierFunc 函数适配器
type NotifierFunc func(n alert.Notification, a alert.Alert)

func (f NotifierFunc) Notify(n alert.Notification, a alert.Alert) { f(n, a) }

// Consumer 护理端告警消费者。
// 每次传输层（重）连接都重新声明房间成员身份；收到的告警
// 进入最新在前的历史列表，并按策略渲染成通知。
// 事件处理器只在 Start 时注册一次，重连不会造成重复投递。
type Consumer struct {
	caregiverID int
	transport   *Transport
	history     *alert.History
	notifier    Notifier
	state       atomic.Int32

	alertHandler  Handler
	joinedHandler Handler
}

// NewConsumer 创建消费者，notifier 为 nil 时只记录历史
func NewConsumer(transport *Transport, caregiverID int, notifier Notifier) *Consumer {
	return &Consumer{
		caregiverID: caregiverID,
		transport:   transport,
		history:     alert.NewHistory(alert.DefaultHistoryCap),
		notifier:    notifier,
	}
}

// State 当前连接状态
func (c *Consumer) State() State {
	return State(c.state.Load())
}

// History 本次会话收到的告警，最新在前
func (c *Consumer) History() *alert.History {
	return c.history
}

// Start 建立连接并订阅全部告警事件
func (c *Consumer) Start(ctx context.Context) {
	c.alertHandler = c.handleAlert
	c.joinedHandler = c.handleRoomJoined

	c.transport.OnConnect(c.announceMembership)
	c.transport.OnDisconnect(c.markDisconnected)
	c.transport.On(realtime.EventRoomJoined, c.joinedHandler)
	c.transport.On(realtime.EventPatientAlert, c.alertHandler)
	c.transport.On(realtime.EventEmergencyAlert, c.alertHandler)
	c.transport.On(realtime.EventLocationAlert, c.alertHandler)

	c.state.Store(int32(StateConnecting))
	c.transport.Connect(ctx)
}

// Stop 退订并关闭传输层
func (c *Consumer) Stop() {
	c.transport.Off(realtime.EventRoomJoined, c.joinedHandler)
	c.transport.Off(realtime.EventPatientAlert, c.alertHandler)
	c.transport.Off(realtime.EventEmergencyAlert, c.alertHandler)
	c.transport.Off(realtime.EventLocationAlert, c.alertHandler)
	c.transport.Close()
	c.state.Store(int32(StateDisconnected))
}

// markDisconnected 连接丢失后状态回到 disconnected，重连成功前一直保持
func (c *Consumer) markDisconnected() {
	c.state.Store(int32(StateDisconnected))
}

// announceMembership 每次连接建立后重新加入护理人房间
func (c *Consumer) announceMembership() {
	c.state.Store(int32(StateConnecting))
	c.transport.Emit(realtime.EventJoinRoom, map[string]interface{}{
		"caregiver_id": c.caregiverID,
	})
}

func (c *Consumer) handleRoomJoined(data json.RawMessage) {
	c.state.Store(int32(StateJoined))
	logrus.Infof("joined caregiver room %d", c.caregiverID)
}

// handleAlert 三类告警事件处理相同：入历史、渲染通知。
// 未知kind也正常流转，策略层有兜底图标与颜色。
func (c *Consumer) handleAlert(data json.RawMessage) {
	var a alert.Alert
	if err := json.Unmarshal(data, &a); err != nil {
		logrus.Errorf("alert decode failed: %v", err)
		return
	}

	c.history.Add(a)

	if c.notifier != nil {
		c.notifier.Notify(alert.Render(a), a)
	}
}
