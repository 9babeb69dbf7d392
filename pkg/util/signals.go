package util

import "sync"

// SignalHandler 信号回调，sender 为触发方，params 为附加参数
type SignalHandler func(sender any, params ...any)

// Signals 进程内信号分发器，用于模块间解耦（监听器模式）
type Signals struct {
	mu       sync.RWMutex
	handlers map[string][]SignalHandler
}

var (
	sigOnce sync.Once
	sig     *Signals
)

// Sig 返回全局信号分发器
func Sig() *Signals {
	sigOnce.Do(func() {
		sig = &Signals{handlers: make(map[string][]SignalHandler)}
	})
	return sig
}

// Connect 注册信号监听
func (s *Signals) Connect(name string, h SignalHandler) {
	if h == nil {
		return
	}
	s.mu.Lock()
	s.handlers[name] = append(s.handlers[name], h)
	s.mu.Unlock()
}

// Emit 同步触发信号，按注册顺序调用所有监听器
func (s *Signals) Emit(name string, sender any, params ...any) {
	s.mu.RLock()
	hs := make([]SignalHandler, len(s.handlers[name]))
	copy(hs, s.handlers[name])
	s.mu.RUnlock()

	for _, h := range hs {
		h(sender, params...)
	}
}

// Disconnect 移除某个信号的全部监听（主要用于测试）
func (s *Signals) Disconnect(name string) {
	s.mu.Lock()
	delete(s.handlers, name)
	s.mu.Unlock()
}
