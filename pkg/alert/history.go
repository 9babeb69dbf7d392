package alert

import "sync"

// DefaultHistoryCap 界面侧保留的告警条数上限
const DefaultHistoryCap = 200

// History 会话级告警历史，新告警排在最前。
// 只允许追加：已送达的告警没有更新或删除操作。
type History struct {
	mu     sync.RWMutex
	cap    int
	alerts []Alert
}

// NewHistory 创建历史记录，cap <= 0 时使用默认上限
func NewHistory(cap int) *History {
	if cap <= 0 {
		cap = DefaultHistoryCap
	}
	return &History{cap: cap}
}

// Add 头部插入，超过上限时丢弃最旧的一条
func (h *History) Add(a Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.alerts = append([]Alert{a}, h.alerts...)
	if len(h.alerts) > h.cap {
		h.alerts = h.alerts[:h.cap]
	}
}

// All 返回当前历史快照（最新在前）
func (h *History) All() []Alert {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Alert, len(h.alerts))
	copy(out, h.alerts)
	return out
}

// Len 当前条数
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.alerts)
}

// Latest 最新一条，不存在时返回 false
func (h *History) Latest() (Alert, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.alerts) == 0 {
		return Alert{}, false
	}
	return h.alerts[0], true
}
