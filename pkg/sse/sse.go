package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// client 一个SSE订阅者。caregiverID为0时接收全部告警
type client struct {
	id          string
	caregiverID int
	ch          chan string
	done        chan struct{}
}

// Feed 只读的告警事件流，供轻量面板组件订阅。
// 与WebSocket通道互不影响，仅做镜像转发。
type Feed struct {
	mu       sync.RWMutex
	clients  map[string]*client
	interval time.Duration
	retryMs  int
}

// NewFeed 创建告警事件流，interval为保活ping间隔
func NewFeed(interval time.Duration) *Feed {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Feed{
		clients:  make(map[string]*client),
		interval: interval,
		retryMs:  5000,
	}
}

func (f *Feed) addClient(caregiverID int) *client {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &client{
		id:          uuid.NewString(),
		caregiverID: caregiverID,
		ch:          make(chan string, 64),
		done:        make(chan struct{}),
	}
	f.clients[c.id] = c
	return c
}

func (f *Feed) removeClient(id string) {
	f.mu.Lock()
	if c, ok := f.clients[id]; ok {
		close(c.done)
		delete(f.clients, id)
	}
	f.mu.Unlock()
}

// ClientCount 当前订阅者数量
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Publish 把一条告警事件镜像给匹配的订阅者，缓冲满则丢弃
func (f *Feed) Publish(caregiverID int, event string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload)

	f.mu.RLock()
	for _, c := range f.clients {
		if c.caregiverID != 0 && c.caregiverID != caregiverID {
			continue
		}
		select {
		case c.ch <- msg:
		default:
		}
	}
	f.mu.RUnlock()
}

// Serve 处理 GET /events 订阅，?caregiver_id= 可选过滤
func (f *Feed) Serve(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	fmt.Fprintf(c.Writer, "retry: %d\n\n", f.retryMs)
	flusher.Flush()

	sub := f.addClient(cast.ToInt(c.Query("caregiver_id")))
	defer f.removeClient(sub.id)

	ping := time.NewTicker(f.interval)
	defer ping.Stop()

	for {
		select {
		case <-sub.done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			fmt.Fprintf(c.Writer, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		case msg := <-sub.ch:
			c.Writer.WriteString(msg)
			flusher.Flush()
		}
	}
}
