package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/collabboard/board-api/internal/model"
)

const (
	eventTaskUpdate = "taskUpdate"
	eventLogUpdate  = "logUpdate"
)

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub fans events out to every connected subscriber, including the one whose
// action produced the event. Delivery is best-effort: a subscriber whose send
// buffer is full is dropped rather than allowed to block the broadcast. Each
// subscriber writes from a single goroutine, so events reach it in broadcast
// order.
type Hub struct {
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	closed      bool

	wg sync.WaitGroup
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:      logger,
		subscribers: make(map[*Subscriber]struct{}),
	}
}

func (h *Hub) BroadcastTask(t model.Task) {
	h.broadcast(eventTaskUpdate, t)
}

func (h *Hub) BroadcastLog(entry model.ActionLog) {
	h.broadcast(eventLogUpdate, entry)
}

func (h *Hub) broadcast(event string, data any) {
	msg, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*Subscriber
	for s := range h.subscribers {
		select {
		case s.send <- msg:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		h.logger.Warn("dropping slow subscriber")
		h.detach(s)
	}
}

func (h *Hub) attach(s *Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.subscribers[s] = struct{}{}
	return true
}

func (h *Hub) detach(s *Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[s]
	if ok {
		delete(h.subscribers, s)
	}
	h.mu.Unlock()

	if ok {
		close(s.send)
	}
}

// Count reports the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close detaches every subscriber and waits for their pumps to finish.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		h.detach(s)
	}
	h.wg.Wait()
}
