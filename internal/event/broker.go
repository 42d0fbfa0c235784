package event

import (
	"context"
	"sync"
	"time"
	
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/rs/zerolog/log"
)

const (
	defaultEventBufferSize = 256
	defaultRecentCapacity  = 1024
	sinkTimeout            = 5 * time.Second
)

// Broker owns room membership and fans events out to registered clients.
// Sends to clients never block: a client whose buffer is full misses the event.
type Broker struct {
	clients map[string]map[chan Event]bool
	events  chan Event
	sinks   []Sink
	mu      sync.Mutex
	
	// recently published notification ids, used to drop duplicates
	recentMu   sync.Mutex
	recent     map[int64]struct{}
	recentRing []int64
	recentNext int
}

var (
	_ EventSender = (*Broker)(nil)
	_ Publisher   = (*Broker)(nil)
)

// NewBroker creates a broker. sinks receive every published notification.
func NewBroker(sinks ...Sink) *Broker {
	return &Broker{
		clients:    make(map[string]map[chan Event]bool),
		events:     make(chan Event, defaultEventBufferSize),
		sinks:      sinks,
		recent:     make(map[int64]struct{}, defaultRecentCapacity),
		recentRing: make([]int64, 0, defaultRecentCapacity),
	}
}

// Register đăng ký client vào topic.
func (b *Broker) Register(topic string, client chan Event) {
	b.mu.Lock()
	if _, ok := b.clients[topic]; !ok {
		b.clients[topic] = make(map[chan Event]bool)
	}
	b.clients[topic][client] = true
	total := len(b.clients[topic])
	b.mu.Unlock()
	
	log.Debug().Str("topic", topic).Int("clients", total).Msg("client registered")
}

// Unregister hủy đăng ký client khỏi topic và đóng channel của client.
func (b *Broker) Unregister(topic string, client chan Event) {
	b.mu.Lock()
	remaining := 0
	if clients, ok := b.clients[topic]; ok {
		if _, registered := clients[client]; registered {
			delete(clients, client)
			close(client)
		}
		remaining = len(clients)
		if remaining == 0 {
			delete(b.clients, topic)
		}
	}
	b.mu.Unlock()
	
	log.Debug().Str("topic", topic).Int("clients", remaining).Msg("client unregistered")
}

// ClientCount returns how many clients are in topic.
func (b *Broker) ClientCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	
	return len(b.clients[topic])
}

// Broadcast queues event for delivery to every client of its topic.
func (b *Broker) Broadcast(event Event) {
	select {
	case b.events <- event:
	default:
		log.Warn().Str("topic", event.Topic).Str("type", event.Type).Msg("event queue full, dropping event")
	}
}

// PublishNotification pushes a new_notification event to the recipient's room
// and hands the notification to the sinks. An id that was already published
// recently is ignored.
func (b *Broker) PublishNotification(ctx context.Context, notification db.Notification) {
	if !b.markPublished(notification.ID) {
		log.Debug().Int64("notification_id", notification.ID).Msg("notification already published, skipping")
		return
	}
	
	b.Broadcast(Event{
		Topic: RecipientTopic(notification.RecipientID),
		Type:  EventTypeNewNotification,
		Data:  notification,
	})
	
	// Sinks outlive the caller, so they never see its context.
	for _, sink := range b.sinks {
		go func(s Sink) {
			sinkCtx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			defer cancel()
			
			if err := s.Mirror(sinkCtx, notification); err != nil {
				log.Error().Err(err).Int64("notification_id", notification.ID).Msg("failed to mirror notification")
			}
		}(sink)
	}
}

func (b *Broker) markPublished(id int64) bool {
	b.recentMu.Lock()
	defer b.recentMu.Unlock()
	
	if _, seen := b.recent[id]; seen {
		return false
	}
	
	if len(b.recentRing) < cap(b.recentRing) {
		b.recentRing = append(b.recentRing, id)
	} else {
		delete(b.recent, b.recentRing[b.recentNext])
		b.recentRing[b.recentNext] = id
		b.recentNext = (b.recentNext + 1) % len(b.recentRing)
	}
	b.recent[id] = struct{}{}
	return true
}

// Run xử lý luồng sự kiện cho tới khi ctx bị hủy.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.events:
			b.deliver(event)
		}
	}
}

func (b *Broker) deliver(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	
	// Sends happen under the lock so Unregister cannot close a channel mid-send.
	for client := range b.clients[event.Topic] {
		select {
		case client <- event:
		default:
			log.Warn().Str("topic", event.Topic).Str("type", event.Type).Msg("client buffer full, dropping event")
		}
	}
}
