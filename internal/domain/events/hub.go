package events

import (
	"sync"
)

// Handler 事件订阅回调
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Hub 进程内事件分发，订阅者按注册顺序同步调用
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

// NewHub 创建事件分发器
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe 注册订阅者，返回的函数用于取消订阅（可重复调用）
func (h *Hub) Subscribe(handler Handler) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, handler: handler})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// Publish 分发事件。回调中可以安全地订阅或取消订阅
func (h *Hub) Publish(event Event) {
	if h == nil || event == nil {
		return
	}
	h.mu.RLock()
	subs := h.subs
	h.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Len 当前订阅者数量
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
