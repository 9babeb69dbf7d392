package client

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"CareLink/pkg/realtime"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Handler 命名事件回调，data为事件的原始JSON负载
type Handler func(data json.RawMessage)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Transport 自动重连的事件通道客户端。
// 连接断开后按指数退避重连；每次（重）连接成功都会触发
// OnConnect 钩子，订阅者必须在钩子里重新声明房间成员身份。
// 同一事件的处理器按订阅顺序执行，全部投递串行在单个分发协程上。
type Transport struct {
	url    string
	dialer *websocket.Dialer

	mu           sync.Mutex
	writeMu      sync.Mutex
	handlers     map[string][]Handler
	onConnect    []func()
	onDisconnect []func()
	conn      *websocket.Conn
	started   bool
	closed    bool

	dispatch chan dispatchItem
	cancel   context.CancelFunc
	done     chan struct{}
}

type dispatchItem struct {
	fn func()
}

// NewTransport 创建事件通道客户端，url形如 ws://host:5001/api/ws
func NewTransport(url string) *Transport {
	return &Transport{
		url:      url,
		dialer:   websocket.DefaultDialer,
		handlers: make(map[string][]Handler),
		dispatch: make(chan dispatchItem, 256),
		done:     make(chan struct{}),
	}
}

// OnConnect 注册连接建立钩子，每次重连成功都会再次触发
func (t *Transport) OnConnect(hook func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onConnect = append(t.onConnect, hook)
}

// OnDisconnect 注册连接断开钩子，每次连接丢失都会触发，
// 与 OnConnect 同在分发协程上串行执行
func (t *Transport) OnDisconnect(hook func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDisconnect = append(t.onDisconnect, hook)
}

// On 订阅命名事件
func (t *Transport) On(event string, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = append(t.handlers[event], h)
}

// Off 退订命名事件，按函数代码指针匹配。
// 同一方法绑定到不同接收者的 method value 共享代码指针，
// 因此一个 Transport 只能服务单个订阅者（Consumer 即是这样持有它的），
// 不要在多个订阅者之间共享 Transport。
func (t *Transport) Off(event string, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	target := reflect.ValueOf(h).Pointer()
	kept := t.handlers[event][:0]
	for _, existing := range t.handlers[event] {
		if reflect.ValueOf(existing).Pointer() != target {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		delete(t.handlers, event)
		return
	}
	t.handlers[event] = kept
}

// Connect 启动连接与重连循环。重复调用是幂等的。
func (t *Transport) Connect(ctx context.Context) {
	t.mu.Lock()
	if t.started || t.closed {
		t.mu.Unlock()
		return
	}
	t.started = true
	ctx, t.cancel = context.WithCancel(ctx)
	t.mu.Unlock()

	go t.dispatchLoop(ctx)
	go t.connectLoop(ctx)
}

// Emit 发送命名事件，即发即弃：连接断开时静默丢弃
func (t *Transport) Emit(event string, payload interface{}) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		logrus.Debugf("emit %s dropped, not connected", event)
		return
	}

	data, err := json.Marshal(&realtime.Envelope{
		Event:     event,
		Data:      payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		logrus.Errorf("emit %s marshal failed: %v", event, err)
		return
	}
	t.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	t.writeMu.Unlock()
	if err != nil {
		logrus.Warnf("emit %s write failed: %v", event, err)
	}
}

// Close 关闭客户端，重复调用安全
func (t *Transport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	cancel := t.cancel
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
}

// connectLoop 连接并在断开后按退避重连
func (t *Transport) connectLoop(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := t.dialer.DialContext(ctx, t.url, nil)
		if err != nil {
			logrus.Warnf("dial %s failed: %v, retrying in %s", t.url, err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = initialBackoff

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			conn.Close()
			return
		}
		t.conn = conn
		hooks := append([]func(){}, t.onConnect...)
		t.mu.Unlock()

		// 连接钩子与事件处理共用分发协程，保证先声明房间再收事件
		for _, hook := range hooks {
			t.enqueue(ctx, hook)
		}

		t.readLoop(ctx, conn)

		t.mu.Lock()
		if t.conn == conn {
			t.conn = nil
		}
		disconnectHooks := append([]func(){}, t.onDisconnect...)
		t.mu.Unlock()
		conn.Close()

		// 断开钩子先于下一次连接的钩子执行
		for _, hook := range disconnectHooks {
			t.enqueue(ctx, hook)
		}
	}
}

// readLoop 读取事件直至连接断开
func (t *Transport) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logrus.Warnf("connection lost: %v", err)
			}
			return
		}

		var env struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &env); err != nil {
			logrus.Errorf("event decode failed: %v", err)
			continue
		}

		t.mu.Lock()
		handlers := append([]Handler{}, t.handlers[env.Event]...)
		t.mu.Unlock()

		for _, h := range handlers {
			h := h
			data := env.Data
			t.enqueue(ctx, func() { h(data) })
		}
	}
}

func (t *Transport) enqueue(ctx context.Context, fn func()) {
	select {
	case t.dispatch <- dispatchItem{fn: fn}:
	case <-ctx.Done():
	}
}

// dispatchLoop 单协程串行执行全部回调
func (t *Transport) dispatchLoop(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-t.dispatch:
			item.fn()
		}
	}
}
