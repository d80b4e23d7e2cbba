package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const defaultBuffer = 32

var ErrNoRestaurant = errors.New("event has no restaurant")

// Subscriber receives the events of one restaurant topic.
type Subscriber struct {
	topic string
	ch    chan Event
	once  sync.Once
}

func (s *Subscriber) Events() <-chan Event { return s.ch }

func (s *Subscriber) close() { s.once.Do(func() { close(s.ch) }) }

// Hub is the in-process relay. Sends never block: a subscriber whose buffer
// is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
	log    logrus.FieldLogger

	delivered *atomic.Int64
	dropped   *atomic.Int64
	clients   *atomic.Int64
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		topics:    make(map[string]map[*Subscriber]struct{}),
		log:       log,
		delivered: atomic.NewInt64(0),
		dropped:   atomic.NewInt64(0),
		clients:   atomic.NewInt64(0),
	}
}

func (h *Hub) Subscribe(restaurantID uuid.UUID, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	sub := &Subscriber{topic: Topic(restaurantID), ch: make(chan Event, buffer)}

	h.mu.Lock()
	subs, ok := h.topics[sub.topic]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.topics[sub.topic] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	h.clients.Inc()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if subs, ok := h.topics[sub.topic]; ok {
		if _, member := subs[sub]; member {
			delete(subs, sub)
			h.clients.Dec()
		}
		if len(subs) == 0 {
			delete(h.topics, sub.topic)
		}
	}
	h.mu.Unlock()
	sub.close()
}

// Publish delivers evt to the local subscribers of its restaurant.
func (h *Hub) Publish(_ context.Context, evt Event) error {
	if evt.RestaurantID == uuid.Nil {
		return ErrNoRestaurant
	}
	h.Deliver(evt)
	return nil
}

func (h *Hub) Deliver(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.topics[Topic(evt.RestaurantID)] {
		select {
		case sub.ch <- evt:
			h.delivered.Inc()
		default:
			h.dropped.Inc()
			h.log.WithFields(logrus.Fields{"event": evt.Name, "topic": sub.topic}).Debug("subscriber buffer full, event dropped")
		}
	}
}

type HubStats struct {
	Clients   int64 `json:"clients"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
}

func (h *Hub) Stats() HubStats {
	return HubStats{Clients: h.clients.Load(), Delivered: h.delivered.Load(), Dropped: h.dropped.Load()}
}
