package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans alert payloads out to websocket subscribers of a trip. When a
// redis client is present every broadcast is also published so subscribers
// attached to other nodes receive it too.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	// closed once the pub/sub subscription is confirmed (immediately when
	// running without redis)
	subscribed chan struct{}
}

type Client struct {
	TripID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:      redisClient,
		clients:    map[string]map[*Client]struct{}{},
		subscribed: make(chan struct{}),
	}

	if redisClient != nil {
		go h.subscribeRedis()
	} else {
		close(h.subscribed)
	}
	return h
}

func (h *Hub) Register(tripID string) *Client {
	client := &Client{
		TripID: tripID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[tripID] == nil {
		h.clients[tripID] = map[*Client]struct{}{}
	}
	h.clients[tripID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if tripClients, ok := h.clients[client.TripID]; ok {
		delete(tripClients, client)
		if len(tripClients) == 0 {
			delete(h.clients, client.TripID)
		}
	}
	close(client.Send)
}

// Broadcast sends one payload to every subscriber of the trip. With redis
// configured the payload goes through pub/sub only; the subscriber loop
// delivers it locally along with messages from other nodes, so each client
// sees it exactly once.
func (h *Hub) Broadcast(tripID string, payload []byte) {
	if h.redis == nil {
		h.deliver(tripID, payload)
		return
	}

	err := h.redis.Publish(context.Background(), redisChannel(tripID), payload).Err()
	if err != nil {
		log.Printf("redis publish error: %v", err)
	}
}

func (h *Hub) deliver(tripID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[tripID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "trips:*:alerts")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("redis subscribe error: %v", err)
	}
	close(h.subscribed)

	for msg := range pubsub.Channel() {
		h.deliver(tripIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(tripID string) string {
	return "trips:" + tripID + ":alerts"
}

func tripIDFromChannel(ch string) string {
	// trips:{trip}:alerts
	const prefix = "trips:"
	const suffix = ":alerts"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
